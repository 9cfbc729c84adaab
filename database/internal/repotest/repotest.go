// Package repotest holds the behaviour every filecrud.ResourceRepo backend
// must share.
package repotest

import (
	"context"
	"strings"
	"testing"
	"time"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend describes a repo under test.
type Backend struct {
	// NewRepo returns an empty, migrated repo.
	NewRepo func(t *testing.T) filecrud.ResourceRepo
	// MissingID is well formed for the backend but never assigned.
	MissingID string
	// MalformedIDs can never be parsed by the backend.
	MalformedIDs []string
	// EquivalentIDs returns other spellings of id that must address the
	// same record, such as braced or urn:uuid: forms. May be nil.
	EquivalentIDs func(id string) []string
}

func sample(title string, at time.Time) filecrud.Resource {
	return filecrud.Resource{
		Topic:       "math",
		Title:       title,
		Description: "chapter 1",
		FileName:    title + ".pptx",
		FileURL:     "http://blobs.local/resources/" + title + ".pptx",
		BlobID:      "resources/" + title + ".pptx",
		FileType:    filecrud.MIMETypePPTX,
		Size:        2048,
		UploadedAt:  at.UTC().Truncate(time.Millisecond),
	}
}

// Run exercises b against the ResourceRepo contract.
func Run(t *testing.T, b Backend) {
	t.Run("insert then get", func(t *testing.T) {
		repo := b.NewRepo(t)
		ctx := context.Background()

		in := sample("algebra", time.Now())
		created, err := repo.Insert(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		in.ID = created.ID
		assert.Equal(t, in, created)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("ids are unique", func(t *testing.T) {
		repo := b.NewRepo(t)
		ctx := context.Background()

		a, err := repo.Insert(ctx, sample("a", time.Now()))
		require.NoError(t, err)
		c, err := repo.Insert(ctx, sample("a", time.Now()))
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, c.ID)
	})

	t.Run("get missing", func(t *testing.T) {
		repo := b.NewRepo(t)
		ctx := context.Background()

		_, err := repo.Get(ctx, b.MissingID)
		assert.ErrorIs(t, err, filecrud.ErrNotFound)

		for _, id := range b.MalformedIDs {
			_, err = repo.Get(ctx, id)
			assert.ErrorIs(t, err, filecrud.ErrNotFound, "id %q", id)
		}
	})

	t.Run("equivalent id forms", func(t *testing.T) {
		if b.EquivalentIDs == nil {
			t.Skip("backend has a single id spelling")
		}
		repo := b.NewRepo(t)
		ctx := context.Background()

		for _, id := range b.EquivalentIDs(b.MissingID) {
			_, err := repo.Get(ctx, id)
			assert.ErrorIs(t, err, filecrud.ErrNotFound, "missing id %q", id)
			assert.ErrorIs(t, repo.Delete(ctx, id), filecrud.ErrNotFound, "missing id %q", id)
		}

		created, err := repo.Insert(ctx, sample("algebra", time.Now()))
		require.NoError(t, err)

		forms := b.EquivalentIDs(created.ID)
		require.NotEmpty(t, forms)
		for _, id := range forms {
			got, err := repo.Get(ctx, id)
			require.NoError(t, err, "id %q", id)
			assert.Equal(t, created, got)
		}

		require.NoError(t, repo.Delete(ctx, forms[0]))
		_, err = repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, filecrud.ErrNotFound)
	})

	t.Run("list empty", func(t *testing.T) {
		repo := b.NewRepo(t)

		got, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("list newest first with insertion tie-break", func(t *testing.T) {
		repo := b.NewRepo(t)
		ctx := context.Background()

		base := time.Now().Add(-time.Hour)
		first, err := repo.Insert(ctx, sample("first", base))
		require.NoError(t, err)
		second, err := repo.Insert(ctx, sample("second", base.Add(time.Minute)))
		require.NoError(t, err)
		third, err := repo.Insert(ctx, sample("third", base.Add(time.Minute)))
		require.NoError(t, err)
		oldest, err := repo.Insert(ctx, sample("oldest", base.Add(-time.Minute)))
		require.NoError(t, err)

		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)

		ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
		assert.Equal(t, []string{third.ID, second.ID, first.ID, oldest.ID}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		repo := b.NewRepo(t)
		ctx := context.Background()

		keep, err := repo.Insert(ctx, sample("keep", time.Now()))
		require.NoError(t, err)
		gone, err := repo.Insert(ctx, sample("gone", time.Now()))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, gone.ID))

		_, err = repo.Get(ctx, gone.ID)
		assert.ErrorIs(t, err, filecrud.ErrNotFound)

		err = repo.Delete(ctx, gone.ID)
		assert.ErrorIs(t, err, filecrud.ErrNotFound)

		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, keep.ID, got[0].ID)
	})

	t.Run("delete missing", func(t *testing.T) {
		repo := b.NewRepo(t)
		ctx := context.Background()

		assert.ErrorIs(t, repo.Delete(ctx, b.MissingID), filecrud.ErrNotFound)
		for _, id := range b.MalformedIDs {
			assert.ErrorIs(t, repo.Delete(ctx, id), filecrud.ErrNotFound, "id %q", id)
		}
	})
}

// UUIDForms returns the braced, urn:uuid: and upper-case spellings of a
// canonical UUID.
func UUIDForms(id string) []string {
	return []string{"{" + id + "}", "urn:uuid:" + id, strings.ToUpper(id)}
}
