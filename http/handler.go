package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Service interface {
	Create(ctx context.Context, in filecrud.CreateResource) (filecrud.Resource, error)
	List(ctx context.Context) ([]filecrud.Resource, error)
	Get(ctx context.Context, id string) (filecrud.Resource, error)
	Delete(ctx context.Context, id string) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Env           filecrud.Env
	MaxUploadSize int64  // per-file limit in bytes (default: filecrud.MaxUploadSize)
	StagingDir    string // directory for staged uploads (default: <tmp>/filecrud-staging)
	CORS          CORSConfig

	// Files serves blob bytes under /files when set. Only the filesystem
	// blob store needs it; the others hand out their own URLs.
	Files http.Handler
}

// Handler provides HTTP handlers for the resource API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.Env == "" {
		cfg.Env = filecrud.EnvDevelopment
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = filecrud.MaxUploadSize
	}
	if cfg.StagingDir == "" {
		cfg.StagingDir = filepath.Join(os.TempDir(), "filecrud-staging")
	}

	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with every route mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)

	r.Route("/api/resources", func(r chi.Router) {
		r.Post("/upload", h.handleUpload)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Delete("/{id}", h.handleDelete)
	})

	if h.config.Files != nil {
		r.Handle("/files/*", http.StripPrefix("/files", h.config.Files))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "Route not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", "")
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Response{Success: true, Message: "ok"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	resources, err := h.service.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	if resources == nil {
		resources = []filecrud.Resource{}
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: resources})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resource, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: resource})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Message: "Resource deleted successfully"})
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	HandleError(w, err, !h.config.Env.IsProduction())
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	if err := WriteJSON(w, code, data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
