package schema_test

import (
	"testing"

	"github.com/Yashchauhan008/file-crud/database/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	want := schema.Columns{
		"id":    {Type: "uuid"},
		"size":  {Type: "bigint"},
		"title": {Type: "text"},
	}

	t.Run("match ignores case and extra columns", func(t *testing.T) {
		got := schema.Columns{
			"id":    {Type: "UUID"},
			"size":  {Type: "BIGINT"},
			"title": {Type: "text"},
			"extra": {Type: "text", Nullable: true},
		}
		assert.NoError(t, schema.Compare("resources", want, got))
	})

	t.Run("reports every difference", func(t *testing.T) {
		got := schema.Columns{
			"id":    {Type: "text"},
			"title": {Type: "text", Nullable: true},
		}

		err := schema.Compare("resources", want, got)
		require.Error(t, err)

		var mismatch *schema.MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "resources", mismatch.Table)
		assert.Equal(t, []string{"size"}, mismatch.Missing)
		assert.Equal(t, []string{
			"id: expected uuid, got text",
			"title: expected nullable=false, got nullable=true",
		}, mismatch.Mismatch)
		assert.Contains(t, err.Error(), "missing columns: size")
	})

	t.Run("empty table", func(t *testing.T) {
		err := schema.Compare("resources", want, schema.Columns{})
		var mismatch *schema.MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, []string{"id", "size", "title"}, mismatch.Missing)
	})
}
