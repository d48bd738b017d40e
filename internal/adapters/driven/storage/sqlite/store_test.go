package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

// setupTestDir creates a temporary directory for bundle files.
func setupTestDir(t *testing.T) (string, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "internrec-test-*")
	require.NoError(t, err)

	cleanup := func() {
		assert.NoError(t, os.RemoveAll(tempDir))
	}
	return tempDir, cleanup
}

// testBundle returns a small consistent bundle with three listings.
func testBundle() *domain.Bundle {
	columns := []string{"title", "sector", "location", "stipend"}
	return &domain.Bundle{
		Vectorizer: domain.VectorizerParams{
			Vocabulary: map[string]int{"python": 0, "finance": 1, "pune": 2},
			IDF:        []float64{1.5, 1.2, 2.0},
			Lowercase:  true,
			Norm:       domain.NormL2,
		},
		Index: domain.IndexParams{
			Metric: domain.MetricCosine,
			Vectors: [][]float32{
				{1, 0, 0},
				{0, 1, 0},
				{0.5, 0.5, 0.25},
			},
		},
		Columns: columns,
		Listings: []domain.Record{
			{Columns: columns, Values: []any{"Data Intern", "IT", "Pune", int64(10000)}},
			{Columns: columns, Values: []any{"Finance Intern", "Finance", "Mumbai", int64(8000)}},
			{Columns: columns, Values: []any{"Analyst", "Finance", nil, 4.5}},
		},
	}
}

// ==================== Create and Open Tests ====================

func TestCreate_CreatesDirectoryAndSchema(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	path := filepath.Join(dir, "nested", "bundle.db")
	store, err := Create(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)

	v, err := store.version()
	require.NoError(t, err)
	assert.Equal(t, domain.BundleFormatVersion, v)
}

func TestCreate_Idempotent(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	path := filepath.Join(dir, "bundle.db")
	store, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Create(path)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpen_MissingFile(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	_, err := Open(filepath.Join(dir, "missing.db"))
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)
}

func TestOpen_NotABundle(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	path := filepath.Join(dir, "other.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE notes (body TEXT)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, domain.ErrBundleInvalid)
}

func TestOpen_WrongFormatVersion(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	path := filepath.Join(dir, "bundle.db")
	store, err := Create(path)
	require.NoError(t, err)
	_, err = store.db.Exec("INSERT INTO schema_migrations (version) VALUES (99)")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, domain.ErrBundleInvalid)
}

func TestOpen_ReadOnlyRejectsSave(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	path := filepath.Join(dir, "bundle.db")
	require.NoError(t, NewBundleStore(path).Save(context.Background(), testBundle()))

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.Save(context.Background(), testBundle()))
}

// ==================== Save and Load Tests ====================

func TestBundleStore_SaveAndLoad(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	bs := NewBundleStore(filepath.Join(dir, "bundle.db"))
	in := testBundle()
	require.NoError(t, bs.Save(ctx, in))

	assert.NotEmpty(t, in.Info.ID)
	assert.False(t, in.Info.CreatedAt.IsZero())

	out, err := bs.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, in.Info.ID, out.Info.ID)
	assert.True(t, in.Info.CreatedAt.Equal(out.Info.CreatedAt))
	assert.Equal(t, bs.Path(), out.Info.Path)
	assert.Equal(t, in.Columns, out.Columns)
	assert.Equal(t, in.Vectorizer.Vocabulary, out.Vectorizer.Vocabulary)
	assert.Equal(t, in.Vectorizer.IDF, out.Vectorizer.IDF)
	assert.True(t, out.Vectorizer.Lowercase)
	assert.False(t, out.Vectorizer.SublinearTF)
	assert.Equal(t, domain.NormL2, out.Vectorizer.Norm)
	assert.Equal(t, domain.MetricCosine, out.Index.Metric)
	assert.Equal(t, in.Index.Vectors, out.Index.Vectors)

	require.Len(t, out.Listings, 3)
	for i := range in.Listings {
		assert.Equal(t, in.Listings[i].Values, out.Listings[i].Values, "listing %d", i)
		assert.Equal(t, in.Columns, out.Listings[i].Columns)
	}
}

func TestBundleStore_SaveKeepsExistingID(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	bs := NewBundleStore(filepath.Join(dir, "bundle.db"))
	in := testBundle()
	in.Info.ID = "fixed-id"
	in.Info.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, bs.Save(ctx, in))

	out, err := bs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", out.Info.ID)
	assert.True(t, in.Info.CreatedAt.Equal(out.Info.CreatedAt))
}

func TestBundleStore_SaveReplacesContents(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	bs := NewBundleStore(filepath.Join(dir, "bundle.db"))
	require.NoError(t, bs.Save(ctx, testBundle()))

	smaller := testBundle()
	smaller.Listings = smaller.Listings[:1]
	smaller.Index.Vectors = smaller.Index.Vectors[:1]
	smaller.Index.Metric = domain.MetricEuclidean
	require.NoError(t, bs.Save(ctx, smaller))

	out, err := bs.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out.Listings, 1)
	assert.Equal(t, domain.MetricEuclidean, out.Index.Metric)
}

func TestBundleStore_SaveRejectsInvalidBundle(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	b := testBundle()
	b.Index.Vectors = b.Index.Vectors[:2]

	err := NewBundleStore(filepath.Join(dir, "bundle.db")).Save(context.Background(), b)
	assert.ErrorIs(t, err, domain.ErrBundleInvalid)
}

func TestBundleStore_LoadMissing(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	_, err := NewBundleStore(filepath.Join(dir, "missing.db")).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)
}

func TestBundleStore_LoadDetectsDimensionMismatch(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	path := filepath.Join(dir, "bundle.db")
	require.NoError(t, NewBundleStore(path).Save(ctx, testBundle()))

	store, err := Create(path)
	require.NoError(t, err)
	_, err = store.db.Exec("UPDATE listings SET embedding = ? WHERE row_index = 1",
		float32SliceToBytes([]float32{1, 2}))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = NewBundleStore(path).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrBundleInvalid)
}

func TestBundleStore_LoadDetectsTruncatedEmbedding(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	path := filepath.Join(dir, "bundle.db")
	require.NoError(t, NewBundleStore(path).Save(ctx, testBundle()))

	store, err := Create(path)
	require.NoError(t, err)
	_, err = store.db.Exec("UPDATE listings SET embedding = ? WHERE row_index = 0", []byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = NewBundleStore(path).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrBundleInvalid)
}

func TestBundleStore_LoadDetectsMissingMeta(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	path := filepath.Join(dir, "bundle.db")
	require.NoError(t, NewBundleStore(path).Save(ctx, testBundle()))

	store, err := Create(path)
	require.NoError(t, err)
	_, err = store.db.Exec("DELETE FROM bundle_meta WHERE key = 'metric'")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = NewBundleStore(path).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrBundleInvalid)
}

func TestBundleStore_LoadUnsupportedMetric(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	path := filepath.Join(dir, "bundle.db")
	require.NoError(t, NewBundleStore(path).Save(ctx, testBundle()))

	store, err := Create(path)
	require.NoError(t, err)
	_, err = store.db.Exec("UPDATE bundle_meta SET value = 'manhattan' WHERE key = 'metric'")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = NewBundleStore(path).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrUnsupportedMetric)
}

// ==================== Info Tests ====================

func TestBundleStore_Info(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()
	ctx := context.Background()

	bs := NewBundleStore(filepath.Join(dir, "bundle.db"))
	in := testBundle()
	require.NoError(t, bs.Save(ctx, in))

	info, err := bs.Info(ctx)
	require.NoError(t, err)

	assert.Equal(t, in.Info.ID, info.ID)
	assert.Equal(t, domain.BundleFormatVersion, info.FormatVersion)
	assert.Equal(t, domain.MetricCosine, info.Metric)
	assert.Equal(t, domain.NormL2, info.Norm)
	assert.Equal(t, 3, info.VocabularySize)
	assert.Equal(t, 3, info.ListingCount)
	assert.Equal(t, in.Columns, info.Columns)
	assert.Equal(t, bs.Path(), info.Path)
}

func TestBundleStore_InfoMissing(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	_, err := NewBundleStore(filepath.Join(dir, "missing.db")).Info(context.Background())
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)
}

// ==================== Helper Function Tests ====================

func TestFloat32SliceConversion(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"nil", nil},
		{"single", []float32{1.5}},
		{"mixed", []float32{0, -1.25, 3.75, 1e-6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bytesToFloat32Slice(float32SliceToBytes(tt.input))
			assert.Equal(t, tt.input, got)
		})
	}
}

func TestDecodeFields(t *testing.T) {
	values, err := decodeFields(`["a", 12, 2.5, null, true]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", int64(12), 2.5, nil, true}, values)

	_, err = decodeFields(`{"not": "array"}`)
	assert.Error(t, err)
}

func TestDataSource(t *testing.T) {
	tests := []struct {
		name string
		path string
		mode string
		want string
	}{
		{"relative", "internship_recommender.db", "ro", "file:internship_recommender.db?mode=ro&_pragma=busy_timeout(5000)"},
		{"absolute", "/var/lib/internrec/bundle.db", "rwc", "file:/var/lib/internrec/bundle.db?mode=rwc&_pragma=busy_timeout(5000)"},
		{"reserved characters", "/tmp/a?b#c%d e.db", "ro", "file:/tmp/a%3Fb%23c%25d%20e.db?mode=ro&_pragma=busy_timeout(5000)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dataSource(tt.path, tt.mode))
		})
	}
}

func TestBundleStore_PathWithReservedCharacters(t *testing.T) {
	dir, cleanup := setupTestDir(t)
	defer cleanup()

	ctx := context.Background()
	path := filepath.Join(dir, "bundle?v=2#draft.db")
	bs := NewBundleStore(path)

	require.NoError(t, bs.Save(ctx, testBundle()))

	_, err := os.Stat(path)
	require.NoError(t, err)

	out, err := bs.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out.Listings, 3)
	assert.Equal(t, path, out.Info.Path)
}
