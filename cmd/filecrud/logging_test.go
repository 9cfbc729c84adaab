package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filecrud "github.com/Yashchauhan008/file-crud"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLogHandler(t *testing.T) {
	t.Run("production writes json with ts", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newLogHandler(&buf, true, slog.LevelInfo, false))
		logger.Debug("hidden")
		logger.Info("upload stored", "id", "abc")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "upload stored", entry["msg"])
		assert.Equal(t, "abc", entry["id"])
		assert.Contains(t, entry, "ts")
		assert.NotContains(t, entry, "time")
	})

	t.Run("development writes plain text without color", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newLogHandler(&buf, false, slog.LevelDebug, false))
		logger.Debug("listing", "count", 3)

		assert.Contains(t, buf.String(), "listing")
		assert.Contains(t, buf.String(), "count=3")
		assert.NotContains(t, buf.String(), "\x1b[")
	})
}

func TestPrintReport(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		var buf bytes.Buffer
		err := printReport(&buf, filecrud.ReconcileReport{Records: 1200, Blobs: 1200}, false)
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "Records: 1,200")
		assert.Contains(t, buf.String(), "No inconsistencies found")
	})

	t.Run("inconsistent", func(t *testing.T) {
		var buf bytes.Buffer
		report := filecrud.ReconcileReport{
			Records:         2,
			Blobs:           2,
			OrphanedBlobs:   []string{"resources/a.zip"},
			DanglingRecords: []string{"r-1"},
			Removed:         2,
		}
		assert.NoError(t, printReport(&buf, report, false))
		assert.Contains(t, buf.String(), "orphaned blob:   resources/a.zip")
		assert.Contains(t, buf.String(), "dangling record: r-1")
		assert.Contains(t, buf.String(), "Removed: 2")
		assert.NotContains(t, buf.String(), "No inconsistencies")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		report := filecrud.ReconcileReport{Records: 1, Blobs: 0, OrphanedBlobs: []string{}, DanglingRecords: []string{"r-1"}}
		assert.NoError(t, printReport(&buf, report, true))
		assert.JSONEq(t, `{"records":1,"blobs":0,"orphaned_blobs":[],"dangling_records":["r-1"],"removed":0}`, buf.String())
	})
}
