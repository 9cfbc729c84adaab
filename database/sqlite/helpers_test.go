package sqlite_test

import (
	"strings"
	"testing"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/database/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// setupTestRepo returns a repo over a private in-memory database.
func setupTestRepo(t *testing.T) filecrud.ResourceRepo {
	t.Helper()

	db, err := sqlite.Connect(t.Context(), ":memory:", filecrud.Tables{Resources: "resources"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(t.Context()))
	return db.GetRepo()
}
