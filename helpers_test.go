package filecrud_test

import (
	"context"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	filecrud "github.com/Yashchauhan008/file-crud"
)

// memoryRepo is a ResourceRepo kept in a map, ordered the way the real
// backends order List.
type memoryRepo struct {
	mu      sync.Mutex
	seq     int
	records map[string]memoryRecord
}

type memoryRecord struct {
	seq int
	r   filecrud.Resource
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]memoryRecord)}
}

func (m *memoryRepo) Insert(_ context.Context, r filecrud.Resource) (filecrud.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = strconv.Itoa(m.seq)
	m.records[r.ID] = memoryRecord{seq: m.seq, r: r}
	return r, nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (filecrud.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return filecrud.Resource{}, filecrud.ErrNotFound
	}
	return rec.r, nil
}

func (m *memoryRepo) List(_ context.Context) ([]filecrud.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := make([]memoryRecord, 0, len(m.records))
	for _, rec := range m.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].r.UploadedAt.Equal(recs[j].r.UploadedAt) {
			return recs[i].r.UploadedAt.After(recs[j].r.UploadedAt)
		}
		return recs[i].seq > recs[j].seq
	})
	out := make([]filecrud.Resource, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.r)
	}
	return out, nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return filecrud.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// memoryBlobs is a BlobStore that reads the staged file into memory.
type memoryBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{data: make(map[string][]byte)}
}

func (m *memoryBlobs) Upload(_ context.Context, localPath, folder, _ string) (filecrud.BlobRef, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return filecrud.BlobRef{}, err
	}
	key := filecrud.NewBlobKey(folder, localPath)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = content
	return filecrud.BlobRef{ID: key, URL: "mem://" + key}, nil
}

func (m *memoryBlobs) Delete(_ context.Context, blobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[blobID]; !ok {
		return filecrud.ErrNotFound
	}
	delete(m.data, blobID)
	return nil
}

func (m *memoryBlobs) List(_ context.Context, folder string) ([]filecrud.BlobInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []filecrud.BlobInfo
	for key, content := range m.data {
		if strings.HasPrefix(key, path.Clean(folder)+"/") {
			out = append(out, filecrud.BlobInfo{ID: key, Size: int64(len(content))})
		}
	}
	return out, nil
}
