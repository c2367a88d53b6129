package importer_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulab/shopify-toolkit/internal/importer"
	"github.com/nebulab/shopify-toolkit/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestImportCSV(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"Product ID,Title,Price (USD)",
		"gid://shopify/Product/1,Desk Lamp,19.99",
		"gid://shopify/Product/2,Office Chair,129.00",
	}, "\n")

	result, err := importer.ImportCSV(ctx, s.DB(), "products", "products.csv", strings.NewReader(csv), discard())
	require.NoError(t, err)

	assert.Equal(t, "products", result.Table)
	assert.Equal(t, []string{"product_id", "title", "price_usd"}, result.Columns)
	assert.Equal(t, 2, result.Rows)

	var title string
	row := s.DB().QueryRow(`SELECT title FROM products WHERE product_id = ?`, "gid://shopify/Product/2")
	require.NoError(t, row.Scan(&title))
	assert.Equal(t, "Office Chair", title)

	var fileName string
	var rowCount int
	row = s.DB().QueryRow(`SELECT file_name, row_count FROM import_files WHERE table_name = ?`, "products")
	require.NoError(t, row.Scan(&fileName, &rowCount))
	assert.Equal(t, "products.csv", fileName)
	assert.Equal(t, 2, rowCount)
}

func TestImportCSVSanitizesColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{"spaces and case", "First Name,LAST NAME", []string{"first_name", "last_name"}},
		{"punctuation", "price ($),qty/box", []string{"price", "qty_box"}},
		{"leading digit", "2024 revenue", []string{"c_2024_revenue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)

			result, err := importer.ImportCSV(context.Background(), s.DB(), "t", "t.csv",
				strings.NewReader(tt.header+"\n"), discard())
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Columns)
		})
	}
}

func TestImportCSVRejectsBadInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := importer.ImportCSV(ctx, s.DB(), "t", "empty.csv", strings.NewReader(""), discard())
	assert.ErrorContains(t, err, "empty")

	_, err = importer.ImportCSV(ctx, s.DB(), "t", "dup.csv", strings.NewReader("id,ID\n1,2\n"), discard())
	assert.ErrorContains(t, err, "duplicate")

	_, err = importer.ImportCSV(ctx, s.DB(), "bad table!", "t.csv", strings.NewReader("id\n1\n"), discard())
	assert.ErrorContains(t, err, "invalid table name")
}

func TestImportCSVRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Second row has the wrong number of fields; nothing should be committed.
	bad := "id,title\n1,ok\n2\n"
	_, err := importer.ImportCSV(ctx, s.DB(), "items", "items.csv", strings.NewReader(bad), discard())
	require.Error(t, err)

	var count int
	row := s.DB().QueryRow(`SELECT COUNT(*) FROM import_files`)
	require.NoError(t, row.Scan(&count))
	assert.Zero(t, count)
}

func TestImportCSVContextCancel(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := importer.ImportCSV(ctx, s.DB(), "t", "t.csv", strings.NewReader("id\n1\n"), discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
