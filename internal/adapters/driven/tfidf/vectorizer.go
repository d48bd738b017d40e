// Package tfidf applies a fitted TF-IDF vectorizer to query text.
//
// Only the transform half of the vectorizer lives here: the vocabulary and
// idf weights come from the bundle. Tokenisation mirrors the defaults the
// bundle was fitted with: maximal runs of two or more Unicode letters, digits
// or underscores, optionally lowercased.
package tfidf

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// Ensure Vectorizer implements the interface.
var _ driven.Vectorizer = (*Vectorizer)(nil)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer transforms text into an idf-weighted, normalised term vector.
// It is immutable and safe for concurrent use.
type Vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	lowercase   bool
	sublinearTF bool
	norm        domain.Norm
}

// New creates a vectorizer from fitted parameters.
func New(params domain.VectorizerParams) (*Vectorizer, error) {
	if !params.Norm.IsValid() {
		return nil, fmt.Errorf("tfidf: %w: unknown norm %q", domain.ErrBundleInvalid, params.Norm)
	}
	features := len(params.IDF)
	if len(params.Vocabulary) != features {
		return nil, fmt.Errorf("tfidf: %w: %d terms, %d idf weights",
			domain.ErrBundleInvalid, len(params.Vocabulary), features)
	}
	vocab := make(map[string]int, len(params.Vocabulary))
	for term, idx := range params.Vocabulary {
		if idx < 0 || idx >= features {
			return nil, fmt.Errorf("tfidf: %w: term %q index %d out of range",
				domain.ErrBundleInvalid, term, idx)
		}
		vocab[term] = idx
	}
	return &Vectorizer{
		vocabulary:  vocab,
		idf:         append([]float64(nil), params.IDF...),
		lowercase:   params.Lowercase,
		sublinearTF: params.SublinearTF,
		norm:        params.Norm,
	}, nil
}

// Dimensions returns the vocabulary size.
func (v *Vectorizer) Dimensions() int {
	return len(v.idf)
}

// Tokenize splits text into the tokens the vocabulary was built from.
func (v *Vectorizer) Tokenize(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	return tokenPattern.FindAllString(text, -1)
}

// Transform vectorizes a single document. Out-of-vocabulary tokens are ignored;
// text with no known token yields the zero vector.
func (v *Vectorizer) Transform(text string) ([]float64, error) {
	counts := make(map[int]float64)
	for _, tok := range v.Tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	weights := make([]float64, len(v.idf))
	for idx, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		weights[idx] = tf * v.idf[idx]
	}
	normalize(weights, v.norm)
	return weights, nil
}

func normalize(w []float64, norm domain.Norm) {
	var total float64
	switch norm {
	case domain.NormL2:
		for _, x := range w {
			total += x * x
		}
		total = math.Sqrt(total)
	case domain.NormL1:
		for _, x := range w {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range w {
		w[i] /= total
	}
}
