package domain

import "strings"

// LocationWeight is how many times the location is repeated in the query text.
// Repeating a term raises its term frequency and so biases the search towards it.
const LocationWeight = 3

// Query is what a user asks the recommender for.
type Query struct {
	// Sector is the industry or field, e.g. "fintech".
	Sector string

	// Location is the preferred city or region, e.g. "Berlin".
	Location string

	// Tech is the technology or skill list, e.g. "Python" or "Go, SQL".
	Tech string
}

// Text builds the query string fed to the vectorizer:
// "<tech> <sector> <location> <location> <location>".
func (q Query) Text() string {
	parts := make([]string, 0, 2+LocationWeight)
	parts = append(parts, q.Tech, q.Sector)
	for i := 0; i < LocationWeight; i++ {
		parts = append(parts, q.Location)
	}
	return strings.Join(parts, " ")
}

// IsEmpty reports whether all three fields are blank.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Sector) == "" &&
		strings.TrimSpace(q.Location) == "" &&
		strings.TrimSpace(q.Tech) == ""
}
