package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/unicode/norm"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// MatchThreshold is the similarity a candidate must exceed to be accepted
const MatchThreshold = 0.4

// CostSource provides the master cost list
type CostSource interface {
	GetProductCosts(ctx context.Context) ([]models.ProductCost, error)
}

// CostMatch is the result of matching a product name against the master list
type CostMatch struct {
	Entry models.ProductCost
	Score float64
}

// CostIndex is a master cost list with every name normalized once
type CostIndex struct {
	entries    []models.ProductCost
	normalized []string
}

// NewCostIndex builds an index over costs, keeping list order for tie breaks
func NewCostIndex(costs []models.ProductCost) *CostIndex {
	ix := &CostIndex{
		entries:    costs,
		normalized: make([]string, len(costs)),
	}
	for i, c := range costs {
		ix.normalized[i] = NormalizeProductName(c.Name)
	}
	return ix
}

// Len returns the number of indexed entries
func (ix *CostIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Match returns the entry with the strictly highest similarity to name. The first
// entry wins a tie. Nothing is returned unless the best score exceeds MatchThreshold.
func (ix *CostIndex) Match(name string) (CostMatch, bool) {
	if ix == nil {
		return CostMatch{}, false
	}

	query := NormalizeProductName(name)
	best := -1
	bestScore := -1.0
	for i := range ix.entries {
		score := Similarity(query, ix.normalized[i])
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore <= MatchThreshold {
		return CostMatch{}, false
	}
	return CostMatch{Entry: ix.entries[best], Score: bestScore}, true
}

// CostMatcher serves a cached CostIndex built from the stored master list
type CostMatcher struct {
	source     CostSource
	index      *CostIndex
	cacheMutex sync.RWMutex
	cacheTTL   time.Duration
	lastLoaded time.Time
}

// NewCostMatcher creates a matcher that caches the master list for five minutes
func NewCostMatcher(source CostSource) *CostMatcher {
	return &CostMatcher{
		source:   source,
		cacheTTL: 5 * time.Minute,
	}
}

// Index returns the cached index, reloading the master list when the cache is stale
func (m *CostMatcher) Index(ctx context.Context) (*CostIndex, error) {
	m.cacheMutex.RLock()
	if m.index != nil && time.Since(m.lastLoaded) < m.cacheTTL {
		ix := m.index
		m.cacheMutex.RUnlock()
		return ix, nil
	}
	m.cacheMutex.RUnlock()

	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	// Double-check after acquiring write lock
	if m.index != nil && time.Since(m.lastLoaded) < m.cacheTTL {
		return m.index, nil
	}

	costs, err := m.source.GetProductCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load master cost list: %w", err)
	}

	m.index = NewCostIndex(costs)
	m.lastLoaded = time.Now()
	return m.index, nil
}

// Invalidate drops the cached index so the next lookup reloads it
func (m *CostMatcher) Invalidate() {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()
	m.index = nil
	m.lastLoaded = time.Time{}
}

// Match looks name up in the current master list
func (m *CostMatcher) Match(ctx context.Context, name string) (CostMatch, bool, error) {
	ix, err := m.Index(ctx)
	if err != nil {
		return CostMatch{}, false, err
	}
	match, ok := ix.Match(name)
	return match, ok, nil
}

// CostOf returns the matched cost price for name, zero when unmatched
func (m *CostMatcher) CostOf(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	match, ok, err := m.Match(ctx, name)
	if err != nil || !ok {
		return decimal.Zero, false, err
	}
	return match.Entry.CostPrice, true, nil
}

// NormalizeProductName lower-cases, folds accents and drops everything that is not
// a letter or digit
func NormalizeProductName(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// editOptions counts a substitution as one edit, the same as an insertion or deletion
var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Similarity computes (maxLen - distance) / maxLen over two normalized names,
// measured in runes. Two empty strings are identical.
func Similarity(s1, s2 string) float64 {
	r1, r2 := []rune(s1), []rune(s2)
	maxLen := max(len(r1), len(r2))
	if maxLen == 0 {
		return 1.0
	}
	distance := levenshtein.DistanceForStrings(r1, r2, editOptions)
	return float64(maxLen-distance) / float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	return levenshtein.DistanceForStrings([]rune(s1), []rune(s2), editOptions)
}
