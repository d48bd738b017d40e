package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
	"github.com/custodia-labs/internrec/internal/core/ports/driving"
	"github.com/custodia-labs/internrec/internal/logger"
)

// Ensure KeywordRecommender implements the interface.
var _ driving.RecommendService = (*KeywordRecommender)(nil)

// Listing columns read by the keyword scorer.
const (
	columnTitle    = "title"
	columnType     = "type"
	columnCities   = "cities"
	columnPostedOn = "posted_on"
	columnStipend  = "stipend"
)

// Score weights.
const (
	weightSector      = 30
	weightLocation    = 25
	weightSkill       = 10
	weightPostedWeek  = 10
	weightPostedMonth = 5
)

// postedOnLayout is DD-MM-YYYY.
const postedOnLayout = "02-01-2006"

var skillNoise = regexp.MustCompile(`[^a-z0-9+#.\s]`)

// KeywordRecommender ranks raw listings by substring matches against the query.
// It needs no fitted state, so it serves when the bundle is unavailable.
type KeywordRecommender struct {
	source    driven.ListingSource
	neighbors int
	now       func() time.Time
}

// NewKeywordRecommender creates a keyword recommender returning up to neighbors results.
func NewKeywordRecommender(source driven.ListingSource, neighbors int) *KeywordRecommender {
	return &KeywordRecommender{
		source:    source,
		neighbors: neighbors,
		now:       time.Now,
	}
}

type scoredListing struct {
	row    int
	record domain.Record
	score  float64
}

// Recommend scores every listing and returns the best, most similar first.
// Similarity is the score relative to the best score. Fewer listings than
// requested is not an error.
func (k *KeywordRecommender) Recommend(ctx context.Context, query domain.Query) ([]domain.Recommendation, error) {
	logger.Section("Keyword Recommendation")

	if k.source == nil {
		return nil, domain.ErrFallbackUnavailable
	}
	if k.neighbors <= 0 {
		return nil, fmt.Errorf("%w: neighbors must be positive, got %d", domain.ErrInvalidInput, k.neighbors)
	}

	done := logger.Stage("read listings")
	listings, err := k.source.Listings(ctx)
	done()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFallbackUnavailable, err)
	}
	logger.Debug("Scoring %d listings", len(listings))

	sector := strings.ToLower(strings.TrimSpace(query.Sector))
	location := strings.ToLower(strings.TrimSpace(query.Location))
	skills := splitSkills(query.Tech)
	unfiltered := sector == "" && location == "" && len(skills) == 0

	now := k.now()
	scored := make([]scoredListing, len(listings))
	for i, l := range listings {
		score := stipend(l) / 1000
		if !unfiltered {
			score = k.score(l, sector, location, skills, now)
		}
		scored[i] = scoredListing{row: i, record: l, score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > k.neighbors {
		scored = scored[:k.neighbors]
	}

	maxScore := 1.0
	if len(scored) > 0 && scored[0].score != 0 {
		maxScore = scored[0].score
	}

	results := make([]domain.Recommendation, 0, len(scored))
	for _, s := range scored {
		similarity := s.score / maxScore
		results = append(results, domain.Recommendation{
			Record:     s.record,
			Row:        s.row,
			Distance:   1 - similarity,
			Similarity: similarity,
		})
	}

	logger.Info("Returning %d keyword recommendations", len(results))
	return results, nil
}

func (k *KeywordRecommender) score(l domain.Record, sector, location string, skills []string, now time.Time) float64 {
	title := strings.ToLower(l.GetString(columnTitle))
	kind := strings.ToLower(l.GetString(columnType))

	var score float64
	if sector != "" && (strings.Contains(kind, sector) || strings.Contains(title, sector)) {
		score += weightSector
	}
	if location != "" && (containsCity(l.GetString(columnCities), location) || strings.Contains(title, location)) {
		score += weightLocation
	}
	for _, sk := range skills {
		if strings.Contains(title, sk) || strings.Contains(kind, sk) {
			score += weightSkill
		}
	}

	if posted, err := time.Parse(postedOnLayout, strings.TrimSpace(l.GetString(columnPostedOn))); err == nil {
		switch days := daysSince(posted, now); {
		case days <= 7:
			score += weightPostedWeek
		case days <= 30:
			score += weightPostedMonth
		}
	}
	return score
}

// splitSkills splits a comma-separated skill list and normalises each entry.
func splitSkills(tech string) []string {
	var skills []string
	for _, part := range strings.Split(tech, ",") {
		sk := skillNoise.ReplaceAllString(strings.ToLower(part), " ")
		sk = strings.Join(strings.Fields(sk), " ")
		if sk != "" {
			skills = append(skills, sk)
		}
	}
	return skills
}

func containsCity(cities, location string) bool {
	for _, c := range strings.Split(cities, ",") {
		if strings.ToLower(strings.TrimSpace(c)) == location {
			return true
		}
	}
	return false
}

// daysSince returns whole days from posted to now, rounded up, never negative.
func daysSince(posted, now time.Time) int {
	d := now.Sub(posted)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// stipend parses the listing's stipend, ignoring anything after the leading integer.
func stipend(l domain.Record) float64 {
	raw := strings.TrimSpace(l.GetString(columnStipend))
	end := 0
	for end < len(raw) && (raw[end] >= '0' && raw[end] <= '9' || end == 0 && raw[end] == '-') {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return float64(n)
}
