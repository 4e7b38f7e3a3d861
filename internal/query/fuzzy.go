package query

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Fuzzy expansion limits.
const (
	MaxDistance   = 2
	MaxVariants   = 8
	MinFuzzyRunes = 3
	FuzzyPenalty  = 0.8
)

// Distance returns the optimal string alignment distance between a and b,
// counted in runes. Adjacent transpositions cost 1, so "wdiget" is one edit
// from "widget".
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)

	// Three rolling rows: i-2, i-1, i.
	prev2 := make([]int, n+1)
	prev := make([]int, n+1)
	cur := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		cur[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[n]
}

// Variants returns the vocabulary terms within MaxDistance of term, closest
// first and alphabetically within a distance, at most MaxVariants of them.
// Terms shorter than MinFuzzyRunes are not expanded.
func Variants(term string, vocab []string) []string {
	term = strings.ToLower(term)
	n := utf8.RuneCountInString(term)
	if n < MinFuzzyRunes {
		return nil
	}

	type cand struct {
		term string
		dist int
	}
	var cands []cand
	for _, v := range vocab {
		vn := utf8.RuneCountInString(v)
		if vn < n-MaxDistance || vn > n+MaxDistance {
			continue
		}
		if d := Distance(term, v); d <= MaxDistance {
			cands = append(cands, cand{v, d})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].term < cands[j].term
	})

	out := make([]string, 0, min(len(cands), MaxVariants))
	for _, c := range cands {
		if len(out) == MaxVariants {
			break
		}
		out = append(out, c.term)
	}
	return out
}

// Terms splits tokens into lowercase word runs the way the index tokenizer
// does, so "o'brien" yields "o" and "brien".
func Terms(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		out = append(out, strings.FieldsFunc(strings.ToLower(tok), func(r rune) bool {
			return !isWordRune(r)
		})...)
	}
	return out
}

// FuzzyExpr builds the fuzzy phase expression: each term long enough is
// replaced by an OR group of its vocabulary variants, and the groups are
// ANDed. ok is false when some expandable term has no variant at all, in
// which case nothing can match and the phase is skipped.
func FuzzyExpr(terms []string, vocab []string) (expr string, ok bool) {
	parts := make([]string, 0, len(terms))
	expanded := false
	for _, t := range terms {
		if utf8.RuneCountInString(t) < MinFuzzyRunes {
			parts = append(parts, quote(t))
			continue
		}
		vs := Variants(t, vocab)
		if len(vs) == 0 {
			return "", false
		}
		parts = append(parts, anyOf(vs))
		expanded = true
	}
	if !expanded {
		return "", false
	}
	return strings.Join(parts, " AND "), true
}

// vocabBounds returns the term length window the vocabulary must cover for
// terms to find their variants.
func vocabBounds(terms []string) (lo, hi int, ok bool) {
	for _, t := range terms {
		n := utf8.RuneCountInString(t)
		if n < MinFuzzyRunes {
			continue
		}
		if !ok || n-MaxDistance < lo {
			lo = n - MaxDistance
		}
		if !ok || n+MaxDistance > hi {
			hi = n + MaxDistance
		}
		ok = true
	}
	return max(lo, 1), hi, ok
}
