// Package similarity scores how much of one text is shared with another using
// Ratcliff/Obershelp pattern matching.
package similarity

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ratio returns the similarity of a and b as a percentage rounded to two
// decimals: 2*M/T*100, where M is the number of runes in matching blocks and
// T the combined rune count. Two empty strings are identical.
func Ratio(a, b string) decimal.Decimal {
	ratio, _ := RatioContext(context.Background(), a, b)
	return ratio
}

// RatioContext is Ratio with cancellation. It returns ctx.Err() once the
// context is done.
func RatioContext(ctx context.Context, a, b string) (decimal.Decimal, error) {
	// block search breaks ties by position, so the operands are put in a
	// fixed order to keep the ratio symmetric
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	ra, rb := []rune(a), []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		return hundred.Round(2), nil
	}

	matched, err := matchingRunes(ctx, ra, rb)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromInt(int64(2 * matched)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(2), nil
}

type span struct {
	alo, ahi, blo, bhi int
}

// matchingRunes finds the longest common block, then recurses into the
// unmatched regions on either side of it, summing block sizes.
func matchingRunes(ctx context.Context, a, b []rune) (int, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}

	m := newMatcher(b)
	total := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k, err := m.longestMatch(ctx, a, s)
		if err != nil {
			return 0, err
		}
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total, nil
}

type matcher struct {
	b2j  map[rune][]int
	prev []int
	cur  []int
}

func newMatcher(b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{
		b2j:  b2j,
		prev: make([]int, len(b)+1),
		cur:  make([]int, len(b)+1),
	}
}

// longestMatch returns the earliest longest block a[i:i+k] == b[j:j+k]
// inside s. prev[j+1] holds the length of the match ending at b[j] for the
// previous row of a.
func (m *matcher) longestMatch(ctx context.Context, a []rune, s span) (besti, bestj, bestk int, err error) {
	besti, bestj = s.alo, s.blo

	var prevTouched, curTouched []int
	for i := s.alo; i < s.ahi; i++ {
		if (i-s.alo)&0xff == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, 0, err
			}
		}

		for _, j := range m.b2j[a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := m.prev[j] + 1
			m.cur[j+1] = k
			curTouched = append(curTouched, j+1)
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}

		for _, idx := range prevTouched {
			m.prev[idx] = 0
		}
		m.prev, m.cur = m.cur, m.prev
		prevTouched, curTouched = curTouched, prevTouched[:0]
	}

	for _, idx := range prevTouched {
		m.prev[idx] = 0
	}
	return besti, bestj, bestk, nil
}
