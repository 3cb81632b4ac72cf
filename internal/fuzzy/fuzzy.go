// Package fuzzy scores similarity between a deposit memo and candidate
// property names. It backs the review queue's "did you mean" suggestions when
// the exact deposit mapping misses: typos, abbreviations, and partial
// addresses in memos still point at the right property most of the time.
package fuzzy

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultThreshold is the minimum blended score considered a match.
const DefaultThreshold = 0.80

// abbreviations expands common address shorthand before comparison.
var abbreviations = map[string]string{
	"st":   "street",
	"str":  "street",
	"ave":  "avenue",
	"av":   "avenue",
	"blvd": "boulevard",
	"dr":   "drive",
	"rd":   "road",
	"ln":   "lane",
	"ct":   "court",
	"cir":  "circle",
	"pl":   "place",
	"apt":  "apartment",
	"bldg": "building",
	"prop": "property",
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
	digitsRe     = regexp.MustCompile(`\d+`)
	unitRe       = regexp.MustCompile(`(?:unit|apt|apartment|suite|#)\s*([0-9]+[a-z]?|[a-z][0-9]+)`)
	addressRe    = regexp.MustCompile(`(?i)(\d+\s+[a-z]+\s+(?:street|st|avenue|ave|road|rd|lane|ln|drive|dr|boulevard|blvd|court|ct|place|pl))`)
	bareUnitRe   = regexp.MustCompile(`\b(\d{1,4}[A-Za-z]?)\b`)
)

// Candidate is one scored property suggestion.
type Candidate struct {
	PropertyName string
	Score        float64
}

// Matcher scores memo-to-property similarity using several blended strategies.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a Matcher. A non-positive threshold selects
// DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// MatchProperty returns the best-matching property for a memo, or ok=false
// when no candidate clears the threshold.
func (m *Matcher) MatchProperty(memo string, properties []string) (name string, score float64, ok bool) {
	if strings.TrimSpace(memo) == "" || len(properties) == 0 {
		return "", 0, false
	}

	best := Candidate{}
	for _, p := range properties {
		s := m.score(memo, p)
		if s > best.Score {
			best = Candidate{PropertyName: p, Score: s}
		}
	}

	if best.Score < m.threshold {
		return "", 0, false
	}
	return best.PropertyName, best.Score, true
}

// FindAllMatches returns the top N candidates sorted by score descending,
// regardless of threshold. Useful for presenting options to a reviewer.
func (m *Matcher) FindAllMatches(memo string, properties []string, topN int) []Candidate {
	if strings.TrimSpace(memo) == "" || len(properties) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(properties))
	for _, p := range properties {
		candidates = append(candidates, Candidate{PropertyName: p, Score: m.score(memo, p)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

// score blends all strategies and keeps the highest.
func (m *Matcher) score(memo, property string) float64 {
	memoNorm := normalize(memo)
	propNorm := normalize(property)

	scores := []float64{
		substringScore(memoNorm, propNorm),
		similarityRatio(memoNorm, propNorm),
		wordOverlapScore(memoNorm, propNorm),
		addressScore(memo, property),
	}

	best := 0.0
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	return best
}

// normalize lowercases, expands abbreviations, strips punctuation, and
// collapses whitespace.
func normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))

	words := strings.Fields(text)
	expanded := make([]string, 0, len(words))
	for _, w := range words {
		clean := nonWordRe.ReplaceAllString(w, "")
		if full, ok := abbreviations[clean]; ok {
			clean = full
		}
		if clean != "" {
			expanded = append(expanded, clean)
		}
	}

	out := strings.Join(expanded, " ")
	out = nonWordRe.ReplaceAllString(out, "")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(out, " "))
}

// substringScore scores one string containing the other, weighted by the
// covered fraction so trivial containment does not dominate.
func substringScore(memo, property string) float64 {
	if memo == "" || property == "" {
		return 0
	}
	if strings.Contains(memo, property) {
		return 0.95 * float64(len(property)) / float64(len(memo))
	}
	if strings.Contains(property, memo) {
		return 0.90 * float64(len(memo)) / float64(len(property))
	}
	return 0
}

// similarityRatio is 2*LCS/(len(a)+len(b)), a Ratcliff/Obershelp-style
// similarity over characters.
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Longest common subsequence, single-row DP.
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// wordOverlapScore is the fraction of property words present in the memo.
func wordOverlapScore(memo, property string) float64 {
	propWords := strings.Fields(property)
	if len(propWords) == 0 {
		return 0
	}

	memoWords := make(map[string]bool)
	for _, w := range strings.Fields(memo) {
		memoWords[w] = true
	}

	overlap := 0
	for _, w := range propWords {
		if memoWords[w] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(propWords))
}

// addressScore keys on street numbers, which are highly distinctive. When at
// least half the property's numbers appear in the memo, the street-name
// overlap decides the remainder of the score.
func addressScore(memo, property string) float64 {
	propNumbers := digitsRe.FindAllString(property, -1)
	if len(propNumbers) == 0 {
		return 0
	}

	memoNumbers := make(map[string]bool)
	for _, n := range digitsRe.FindAllString(memo, -1) {
		memoNumbers[n] = true
	}

	overlap := 0
	for _, n := range propNumbers {
		if memoNumbers[n] {
			overlap++
		}
	}
	if float64(overlap)/float64(len(propNumbers)) < 0.5 {
		return 0
	}

	memoStreet := strings.TrimSpace(digitsRe.ReplaceAllString(normalize(memo), ""))
	propStreet := strings.TrimSpace(digitsRe.ReplaceAllString(normalize(property), ""))
	if memoStreet == "" || propStreet == "" {
		return 0
	}

	return 0.85 + 0.15*wordOverlapScore(memoStreet, propStreet)
}

// ExtractUnitNumber pulls a unit/apartment number out of a memo:
// "Unit 5A", "Apt 102", "#204". Falls back to the first standalone short
// number. Returns "" when nothing plausible is found.
func ExtractUnitNumber(memo string) string {
	lower := strings.ToLower(memo)
	if m := unitRe.FindStringSubmatch(lower); m != nil {
		return strings.ToUpper(m[1])
	}

	for _, n := range bareUnitRe.FindAllString(memo, -1) {
		if len(n) <= 4 {
			return n
		}
	}
	return ""
}

// ExtractAddress pulls a street address ("123 Main St") out of a memo, or ""
// when none is present.
func ExtractAddress(memo string) string {
	if m := addressRe.FindStringSubmatch(memo); m != nil {
		return m[1]
	}
	return ""
}
