package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/internrec/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/internrec/internal/core/domain"
)

// Meta keys stored in bundle_meta.
const (
	metaBundleID    = "bundle_id"
	metaCreatedAt   = "created_at"
	metaMetric      = "metric"
	metaNorm        = "norm"
	metaLowercase   = "lowercase"
	metaSublinearTF = "sublinear_tf"
)

// Store is a handle on one bundle file.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// dataSource builds a SQLite URI for path. The path is percent-encoded so
// names containing '?', '#' or '%' reach SQLite intact.
func dataSource(path, mode string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		OmitHost: true,
		RawQuery: "mode=" + mode + "&_pragma=busy_timeout(5000)",
	}
	return u.String()
}

// Open opens an existing bundle read-only and checks its format version.
// Returns domain.ErrBundleNotFound if the file does not exist.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBundleNotFound, path)
		}
		return nil, fmt.Errorf("checking bundle file: %w", err)
	}

	db, err := sql.Open("sqlite", dataSource(path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}

	s := &Store{db: db, path: path, readOnly: true}

	if err := s.checkVersion(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Create opens a bundle for writing, creating the file, its directory and schema as needed.
func Create(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating bundle directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dataSource(path, "rwc"))
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}

	s := &Store{db: db, path: path}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the bundle file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.version()
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) version() (int, error) {
	var v int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&v); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return v, nil
}

// checkVersion fails with ErrBundleInvalid unless the file is a bundle of the current format.
func (s *Store) checkVersion() error {
	v, err := s.version()
	if err != nil {
		return fmt.Errorf("%w: %s is not a bundle: %w", domain.ErrBundleInvalid, s.path, err)
	}
	if v != domain.BundleFormatVersion {
		return fmt.Errorf("%w: format version %d, want %d",
			domain.ErrBundleInvalid, v, domain.BundleFormatVersion)
	}
	return nil
}

// ==================== Save ====================

// Save replaces the bundle's contents. A missing ID or creation time is assigned
// and written back to bundle.Info.
func (s *Store) Save(ctx context.Context, bundle *domain.Bundle) error {
	if s.readOnly {
		return fmt.Errorf("saving bundle: %s opened read-only", s.path)
	}
	if err := bundle.Validate(); err != nil {
		return fmt.Errorf("saving bundle: %w", err)
	}
	if bundle.Info.ID == "" {
		bundle.Info.ID = uuid.New().String()
	}
	if bundle.Info.CreatedAt.IsZero() {
		bundle.Info.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"bundle_meta", "bundle_columns", "vocabulary", "listings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	meta := map[string]string{
		metaBundleID:    bundle.Info.ID,
		metaCreatedAt:   bundle.Info.CreatedAt.Format(time.RFC3339Nano),
		metaMetric:      bundle.Index.Metric.String(),
		metaNorm:        string(bundle.Vectorizer.Norm),
		metaLowercase:   strconv.FormatBool(bundle.Vectorizer.Lowercase),
		metaSublinearTF: strconv.FormatBool(bundle.Vectorizer.SublinearTF),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bundle_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("saving meta %s: %w", k, err)
		}
	}

	for pos, name := range bundle.Columns {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bundle_columns (position, name) VALUES (?, ?)", pos, name); err != nil {
			return fmt.Errorf("saving column %q: %w", name, err)
		}
	}

	vocabStmt, err := tx.PrepareContext(ctx, "INSERT INTO vocabulary (term, feature, idf) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer vocabStmt.Close()

	for term, feature := range bundle.Vectorizer.Vocabulary {
		if _, err := vocabStmt.ExecContext(ctx, term, feature, bundle.Vectorizer.IDF[feature]); err != nil {
			return fmt.Errorf("saving term %q: %w", term, err)
		}
	}

	listingStmt, err := tx.PrepareContext(ctx, "INSERT INTO listings (row_index, fields, embedding) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer listingStmt.Close()

	for i, listing := range bundle.Listings {
		fieldsJSON, err := json.Marshal(listing.Values)
		if err != nil {
			return fmt.Errorf("marshalling listing %d: %w", i, err)
		}
		if _, err := listingStmt.ExecContext(ctx, i, string(fieldsJSON),
			float32SliceToBytes(bundle.Index.Vectors[i])); err != nil {
			return fmt.Errorf("saving listing %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Load ====================

// Load reads the full bundle and validates it.
func (s *Store) Load(ctx context.Context) (*domain.Bundle, error) {
	meta, err := s.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &domain.Bundle{}
	if err := applyMeta(bundle, meta); err != nil {
		return nil, err
	}

	if bundle.Columns, err = s.loadColumns(ctx); err != nil {
		return nil, err
	}
	if err := s.loadVocabulary(ctx, &bundle.Vectorizer); err != nil {
		return nil, err
	}
	if err := s.loadListings(ctx, bundle); err != nil {
		return nil, err
	}

	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	bundle.Info = bundle.Describe()
	bundle.Info.Path = s.path
	return bundle, nil
}

// Info reads metadata, columns and counts without loading vectors.
func (s *Store) Info(ctx context.Context) (*domain.BundleInfo, error) {
	meta, err := s.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &domain.Bundle{}
	if err := applyMeta(bundle, meta); err != nil {
		return nil, err
	}

	columns, err := s.loadColumns(ctx)
	if err != nil {
		return nil, err
	}

	info := bundle.Info
	info.FormatVersion = domain.BundleFormatVersion
	info.Metric = bundle.Index.Metric
	info.Norm = bundle.Vectorizer.Norm
	info.Columns = columns
	info.Path = s.path

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vocabulary").Scan(&info.VocabularySize); err != nil {
		return nil, fmt.Errorf("counting vocabulary: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&info.ListingCount); err != nil {
		return nil, fmt.Errorf("counting listings: %w", err)
	}
	return &info, nil
}

func (s *Store) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM bundle_meta")
	if err != nil {
		return nil, fmt.Errorf("querying bundle meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning bundle meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bundle meta: %w", err)
	}
	return meta, nil
}

// applyMeta copies bundle_meta values into the bundle. Missing keys are invalid
// except the boolean flags, which default to the vectorizer defaults.
func applyMeta(bundle *domain.Bundle, meta map[string]string) error {
	defaults := domain.DefaultVectorizerParams()

	for _, key := range []string{metaBundleID, metaCreatedAt, metaMetric, metaNorm} {
		if _, ok := meta[key]; !ok {
			return fmt.Errorf("%w: missing meta %q", domain.ErrBundleInvalid, key)
		}
	}

	createdAt, err := time.Parse(time.RFC3339Nano, meta[metaCreatedAt])
	if err != nil {
		return fmt.Errorf("%w: created_at: %w", domain.ErrBundleInvalid, err)
	}

	lowercase, err := parseBoolMeta(meta, metaLowercase, defaults.Lowercase)
	if err != nil {
		return err
	}
	sublinear, err := parseBoolMeta(meta, metaSublinearTF, defaults.SublinearTF)
	if err != nil {
		return err
	}

	bundle.Info.ID = meta[metaBundleID]
	bundle.Info.CreatedAt = createdAt
	bundle.Info.FormatVersion = domain.BundleFormatVersion
	bundle.Index.Metric = domain.Metric(meta[metaMetric])
	bundle.Vectorizer.Norm = domain.Norm(meta[metaNorm])
	bundle.Vectorizer.Lowercase = lowercase
	bundle.Vectorizer.SublinearTF = sublinear
	return nil
}

func parseBoolMeta(meta map[string]string, key string, def bool) (bool, error) {
	raw, ok := meta[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", domain.ErrBundleInvalid, key, err)
	}
	return v, nil
}

func (s *Store) loadColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT position, name FROM bundle_columns ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var pos int
		var name string
		if err := rows.Scan(&pos, &name); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		if pos != len(columns) {
			return nil, fmt.Errorf("%w: column positions not contiguous at %d", domain.ErrBundleInvalid, pos)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}
	return columns, nil
}

func (s *Store) loadVocabulary(ctx context.Context, params *domain.VectorizerParams) error {
	var size int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vocabulary").Scan(&size); err != nil {
		return fmt.Errorf("counting vocabulary: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT term, feature, idf FROM vocabulary")
	if err != nil {
		return fmt.Errorf("querying vocabulary: %w", err)
	}
	defer rows.Close()

	params.Vocabulary = make(map[string]int, size)
	params.IDF = make([]float64, size)
	for rows.Next() {
		var term string
		var feature int
		var idf float64
		if err := rows.Scan(&term, &feature, &idf); err != nil {
			return fmt.Errorf("scanning vocabulary: %w", err)
		}
		if feature < 0 || feature >= size {
			return fmt.Errorf("%w: term %q has feature %d outside 0..%d",
				domain.ErrBundleInvalid, term, feature, size-1)
		}
		params.Vocabulary[term] = feature
		params.IDF[feature] = idf
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating vocabulary: %w", err)
	}
	return nil
}

func (s *Store) loadListings(ctx context.Context, bundle *domain.Bundle) error {
	rows, err := s.db.QueryContext(ctx, "SELECT row_index, fields, embedding FROM listings ORDER BY row_index")
	if err != nil {
		return fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rowIndex int
		var fieldsJSON string
		var embeddingBlob []byte
		if err := rows.Scan(&rowIndex, &fieldsJSON, &embeddingBlob); err != nil {
			return fmt.Errorf("scanning listing: %w", err)
		}
		if rowIndex != len(bundle.Listings) {
			return fmt.Errorf("%w: listing rows not contiguous at %d", domain.ErrBundleInvalid, rowIndex)
		}

		values, err := decodeFields(fieldsJSON)
		if err != nil {
			return fmt.Errorf("%w: listing %d: %w", domain.ErrBundleInvalid, rowIndex, err)
		}
		if len(embeddingBlob)%4 != 0 {
			return fmt.Errorf("%w: listing %d embedding is %d bytes",
				domain.ErrBundleInvalid, rowIndex, len(embeddingBlob))
		}

		vec := bytesToFloat32Slice(embeddingBlob)
		if vec == nil {
			vec = []float32{}
		}
		bundle.Listings = append(bundle.Listings, domain.Record{Columns: bundle.Columns, Values: values})
		bundle.Index.Vectors = append(bundle.Index.Vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating listings: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// decodeFields decodes a listing's JSON array, keeping integers as int64.
func decodeFields(data string) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	for i, v := range values {
		values[i] = normaliseNumber(v)
	}
	return values, nil
}

func normaliseNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
