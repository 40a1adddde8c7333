package yake

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.KeywordExtractor = (*Extractor)(nil)

// Extractor ranks single-word keywords.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	stopwords map[string]struct{}
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStopwords replaces the built-in English stopword list.
func WithStopwords(words []string) Option {
	return func(e *Extractor) {
		e.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			e.stopwords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
	}
}

// New creates an extractor with the built-in English stopwords.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	WithStopwords(englishStopwords)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Keyword is a ranked term.
type Keyword struct {
	Term  string
	Score float64
}

// Extract returns at most n keywords, best first.
func (e *Extractor) Extract(text string, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: keyword count %d", domain.ErrInvalidInput, n)
	}
	ranked, err := e.Rank(text)
	if err != nil {
		return nil, err
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = ranked[i].Term
	}
	return out, nil
}

// termStats accumulates the per-term statistics the score is built from.
type termStats struct {
	tf        int
	upper     int
	acronym   int
	first     int
	positions []int
	left      map[string]int
	right     map[string]int
}

func newTermStats(first int) *termStats {
	return &termStats{first: first, left: map[string]int{}, right: map[string]int{}}
}

// Rank scores every candidate term of text. Lower scores rank first.
// Text without any candidate returns domain.ErrNoKeywords.
func (e *Extractor) Rank(text string) ([]Keyword, error) {
	sents := sentences(text)

	stats := make(map[string]*termStats)
	order := 0
	for si, sent := range sents {
		for ti, tok := range sent {
			if !e.candidate(tok.lower) {
				continue
			}
			st, ok := stats[tok.lower]
			if !ok {
				st = newTermStats(order)
				stats[tok.lower] = st
			}
			order++
			st.tf++
			st.positions = append(st.positions, si)
			switch {
			case isAcronym(tok.raw):
				st.acronym++
			case ti > 0 && isCapitalised(tok.raw):
				st.upper++
			}
			if ti > 0 {
				st.left[sent[ti-1].lower]++
			}
			if ti+1 < len(sent) {
				st.right[sent[ti+1].lower]++
			}
		}
	}

	if len(stats) == 0 {
		return nil, domain.ErrNoKeywords
	}

	var maxTF int
	tfs := make([]float64, 0, len(stats))
	for _, st := range stats {
		tfs = append(tfs, float64(st.tf))
		if st.tf > maxTF {
			maxTF = st.tf
		}
	}
	mean, std := meanStd(tfs)

	keywords := make([]Keyword, 0, len(stats))
	for term, st := range stats {
		keywords = append(keywords, Keyword{
			Term:  term,
			Score: score(st, maxTF, mean, std, len(sents)),
		})
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		return stats[a.Term].first < stats[b.Term].first
	})
	return keywords, nil
}

// score combines the term features. Lower is better.
func score(st *termStats, maxTF int, mean, std float64, nSentences int) float64 {
	tf := float64(st.tf)

	casing := float64(max(st.upper, st.acronym)) / (1 + math.Log(tf))
	position := math.Log(math.Log(3 + median(st.positions)))
	frequency := tf / (mean + std)
	relatedness := 1 + (dispersion(st.left)+dispersion(st.right))*tf/float64(maxTF)
	spread := float64(distinct(st.positions)) / float64(nSentences)

	return relatedness * position / (casing + frequency/relatedness + spread/relatedness)
}

// dispersion is the ratio of distinct neighbours to neighbour occurrences.
func dispersion(neighbours map[string]int) float64 {
	total := 0
	for _, c := range neighbours {
		total += c
	}
	if total == 0 {
		return 0
	}
	return float64(len(neighbours)) / float64(total)
}

func distinct(positions []int) int {
	n := 0
	for i, p := range positions {
		if i == 0 || p != positions[i-1] {
			n++
		}
	}
	return n
}

// median of sorted sentence indices.
func median(positions []int) float64 {
	n := len(positions)
	if n%2 == 1 {
		return float64(positions[n/2])
	}
	return float64(positions[n/2-1]+positions[n/2]) / 2
}

func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
