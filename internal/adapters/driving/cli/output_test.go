package cli

import (
	"bytes"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

func TestWriteJSON_NilPrintsEmptyArray(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeJSON(&buf, nil))

	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteJSON_ReplacesExistingSimilarityColumn(t *testing.T) {
	record := domain.Record{
		Columns: []string{"title", "similarity", "city"},
		Values:  []any{"Intern", 0.1, "Pune"},
	}
	var buf bytes.Buffer

	require.NoError(t, writeJSON(&buf, []domain.Recommendation{domain.NewRecommendation(record, 0, 0.25)}))

	assert.Equal(t, `[{"title":"Intern","similarity":0.75,"city":"Pune"}]`+"\n", buf.String())
}

func TestWriteJSON_NonSerialisableValue(t *testing.T) {
	record := domain.Record{Columns: []string{"score"}, Values: []any{math.NaN()}}
	var buf bytes.Buffer

	err := writeJSON(&buf, []domain.Recommendation{domain.NewRecommendation(record, 0, 0)})

	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestTableRows(t *testing.T) {
	record := domain.Record{
		Columns: []string{"title", "similarity", "stipend", "remote"},
		Values:  []any{"Intern", 0.1, 1500.5, nil},
	}
	recs := []domain.Recommendation{domain.NewRecommendation(record, 3, 0.5)}

	headers, rows := tableRows(recs)

	assert.Equal(t, []string{"#", "title", "stipend", "remote", "similarity"}, headers)
	assert.Equal(t, [][]string{{"1", "Intern", "1500.5", "", "0.5000"}}, rows)
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeTable(&buf, nil))

	assert.Equal(t, "No recommendations found.\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "text", formatValue("text"))
	assert.Equal(t, "42", formatValue(int64(42)))
	assert.Equal(t, "0.25", formatValue(0.25))
	assert.Equal(t, "true", formatValue(true))
}

func TestTerminalWidth_NotATerminal(t *testing.T) {
	assert.Equal(t, 0, terminalWidth(new(bytes.Buffer)))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 0, terminalWidth(f))
}
