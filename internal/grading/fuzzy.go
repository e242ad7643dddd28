package grading

import (
	"math"
	"sort"
	"strings"
)

// MatchThreshold is the partial ratio a guess has to exceed to count as correct.
const MatchThreshold = 90

// PartialRatio scores (0-100) how well the shorter string matches its best
// aligned window in the longer one. Windows are anchored on the matching
// blocks of the two strings and each is scored with the 2*M/T sequence ratio.
// Identical strings score 100 and an empty side scores 0.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	short, long := []rune(a), []rune(b)
	if len(short) == 0 || len(long) == 0 {
		return 0
	}
	if len(short) > len(long) {
		short, long = long, short
	}

	best := 0.0
	for _, block := range newMatcher(short, long).matchingBlocks() {
		start := block.j - block.i
		if start < 0 {
			start = 0
		}
		end := min(start+len(short), len(long))
		r := newMatcher(short, long[start:end]).ratio()
		if r > 0.995 {
			return 100
		}
		best = max(best, r)
	}
	return int(math.RoundToEven(best * 100))
}

// FuzzyMatch lowercases both sides and reports whether the guess clears MatchThreshold.
func FuzzyMatch(reference, guess string) bool {
	return PartialRatio(strings.ToLower(reference), strings.ToLower(guess)) > MatchThreshold
}

type match struct {
	i, j, size int
}

// matcher finds longest common blocks between a and b, indexing b by rune.
// Runes that crowd a long b (over 1% of 200+ runes) are left out of the index.
type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int)}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	if n := len(b); n >= 200 {
		limit := n/100 + 1
		for r, idx := range m.b2j {
			if len(idx) > limit {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

func (m *matcher) longestMatch(alo, ahi, blo, bhi int) match {
	best := match{i: alo, j: blo}
	lengths := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > best.size {
				best = match{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		lengths = next
	}
	for best.i > alo && best.j > blo && m.a[best.i-1] == m.b[best.j-1] {
		best.i--
		best.j--
		best.size++
	}
	for best.i+best.size < ahi && best.j+best.size < bhi && m.a[best.i+best.size] == m.b[best.j+best.size] {
		best.size++
	}
	return best
}

// matchingBlocks returns the non-adjacent common blocks in order, closed by a
// zero-size block at (len(a), len(b)).
func (m *matcher) matchingBlocks() []match {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var blocks []match
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if x.size == 0 {
			continue
		}
		blocks = append(blocks, x)
		if s.alo < x.i && s.blo < x.j {
			queue = append(queue, span{s.alo, x.i, s.blo, x.j})
		}
		if x.i+x.size < s.ahi && x.j+x.size < s.bhi {
			queue = append(queue, span{x.i + x.size, s.ahi, x.j + x.size, s.bhi})
		}
	}
	sort.Slice(blocks, func(p, q int) bool {
		if blocks[p].i != blocks[q].i {
			return blocks[p].i < blocks[q].i
		}
		return blocks[p].j < blocks[q].j
	})

	out := make([]match, 0, len(blocks)+1)
	var cur match
	for _, b := range blocks {
		if cur.i+cur.size == b.i && cur.j+cur.size == b.j {
			cur.size += b.size
			continue
		}
		if cur.size > 0 {
			out = append(out, cur)
		}
		cur = b
	}
	if cur.size > 0 {
		out = append(out, cur)
	}
	return append(out, match{i: len(m.a), j: len(m.b)})
}

func (m *matcher) ratio() float64 {
	total := len(m.a) + len(m.b)
	if total == 0 {
		return 1
	}
	matched := 0
	for _, b := range m.matchingBlocks() {
		matched += b.size
	}
	return 2 * float64(matched) / float64(total)
}
