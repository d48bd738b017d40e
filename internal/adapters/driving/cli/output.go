package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

// writeJSON prints results as one line of JSON. An empty result prints "[]".
func writeJSON(w io.Writer, results []domain.Recommendation) error {
	if results == nil {
		results = []domain.Recommendation{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeTable renders results for a human reader, fitted to the terminal width when w is one.
func writeTable(w io.Writer, results []domain.Recommendation) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations found.")
		return err
	}

	headers, rows := tableRows(results)
	styles := newStyles(defaultTheme())

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.Header
			case col == len(headers)-1:
				return styles.Score
			default:
				return styles.Cell
			}
		})
	if width := terminalWidth(w); width > 0 {
		t = t.Width(width)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// tableRows lays out results as "#", the record columns, then similarity.
// A record column named similarity is dropped in favour of the trailing score.
func tableRows(results []domain.Recommendation) ([]string, [][]string) {
	columns := results[0].Record.Columns

	headers := make([]string, 0, len(columns)+2)
	headers = append(headers, "#")
	for _, c := range columns {
		if c != domain.SimilarityField {
			headers = append(headers, c)
		}
	}
	headers = append(headers, domain.SimilarityField)

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		row := make([]string, 0, len(headers))
		row = append(row, strconv.Itoa(i+1))
		for _, c := range columns {
			if c == domain.SimilarityField {
				continue
			}
			v, _ := r.Record.Get(c)
			row = append(row, formatValue(v))
		}
		row = append(row, strconv.FormatFloat(r.Similarity, 'f', 4, 64))
		rows = append(rows, row)
	}
	return headers, rows
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// terminalWidth returns the width of w if it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
