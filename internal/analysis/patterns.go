package analysis

import (
	"fmt"
	"sort"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

// turnSizes are the signed angles a normalized move can carry.
var turnSizes = []int{-270, -180, -90, 90, 180, 270}

// Token encodes a turn (axis and signed angle, slice ignored) as one byte:
// axis * 6 + angle index. That gives 18 values.
func Token(axis lattice.Axis, degrees int) uint8 {
	for i, d := range turnSizes {
		if d == degrees {
			return uint8(int(axis)*len(turnSizes) + i)
		}
	}
	return 0
}

// TokenString decodes a token back to its turn, e.g. "Y-90".
func TokenString(t uint8) string {
	axis := lattice.Axis(int(t) / len(turnSizes))
	return fmt.Sprintf("%s%+d", axis, turnSizes[int(t)%len(turnSizes)])
}

// NGram represents a repeated turn sequence.
type NGram struct {
	N           int               `json:"n"`
	Sequence    []string          `json:"sequence"`
	Tokens      []uint8           `json:"-"`
	Count       int               `json:"count"`
	Occurrences []NGramOccurrence `json:"occurrences,omitempty"`
}

// NGramOccurrence represents where an n-gram was found.
type NGramOccurrence struct {
	SessionID  string `json:"session_id,omitempty"`
	StartIndex int    `json:"start_index"`
	TsMs       int64  `json:"ts_ms"`
}

// NGramReport contains the results of n-gram mining.
type NGramReport struct {
	TopNGrams map[int][]NGram `json:"top_ngrams"` // keyed by n
}

const maxOccurrences = 10

// RollingHash is a Rabin-Karp rolling hash over a fixed window of tokens.
type RollingHash struct {
	base   uint64
	hash   uint64
	pow    uint64 // base^(n-1)
	window []uint8
	n      int
}

// NewRollingHash creates a rolling hash for window size n.
func NewRollingHash(n int) *RollingHash {
	rh := &RollingHash{
		base:   31,
		n:      n,
		window: make([]uint8, 0, n),
	}

	rh.pow = 1
	for i := 0; i < n-1; i++ {
		rh.pow *= rh.base
	}

	return rh
}

// Roll pushes token, dropping the oldest once the window is full.
func (rh *RollingHash) Roll(token uint8) {
	if len(rh.window) < rh.n {
		rh.window = append(rh.window, token)
		rh.hash = rh.hash*rh.base + uint64(token)
		return
	}

	old := rh.window[0]
	rh.hash = (rh.hash-uint64(old)*rh.pow)*rh.base + uint64(token)

	copy(rh.window, rh.window[1:])
	rh.window[rh.n-1] = token
}

// Hash returns the current hash value.
func (rh *RollingHash) Hash() uint64 {
	return rh.hash
}

// Window returns a copy of the current window.
func (rh *RollingHash) Window() []uint8 {
	return append([]uint8(nil), rh.window...)
}

// Ready returns true once the window is full.
func (rh *RollingHash) Ready() bool {
	return len(rh.window) == rh.n
}

type ngramEntry struct {
	tokens      []uint8
	count       int
	first       int
	occurrences []NGramOccurrence
}

// MineNGrams finds the topK most frequent turn sequences for each n in
// [minN, maxN]. Only sequences seen at least twice are reported.
func MineNGrams(moves []storage.MoveRow, minN, maxN, topK int) *NGramReport {
	report := &NGramReport{
		TopNGrams: make(map[int][]NGram),
	}

	tokens := make([]uint8, len(moves))
	for i, m := range moves {
		r := m.Record()
		tokens[i] = Token(r.Axis(), r.Degrees())
	}

	for n := minN; n <= maxN && n <= len(moves); n++ {
		if ngrams := mineN(tokens, moves, n, topK); len(ngrams) > 0 {
			report.TopNGrams[n] = ngrams
		}
	}

	return report
}

func mineN(tokens []uint8, moves []storage.MoveRow, n, topK int) []NGram {
	counts := make(map[uint64]*ngramEntry)
	rh := NewRollingHash(n)

	for i, tok := range tokens {
		rh.Roll(tok)
		if !rh.Ready() {
			continue
		}

		start := i - n + 1
		occ := NGramOccurrence{StartIndex: moves[start].MoveIndex, TsMs: moves[start].TsMs}

		entry, ok := counts[rh.Hash()]
		if !ok {
			counts[rh.Hash()] = &ngramEntry{
				tokens:      rh.Window(),
				count:       1,
				first:       start,
				occurrences: []NGramOccurrence{occ},
			}
			continue
		}
		// collisions are dropped
		if !tokensEqual(entry.tokens, rh.Window()) {
			continue
		}
		entry.count++
		if len(entry.occurrences) < maxOccurrences {
			entry.occurrences = append(entry.occurrences, occ)
		}
	}

	entries := make([]*ngramEntry, 0, len(counts))
	for _, e := range counts {
		if e.count >= 2 {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].first < entries[j].first
	})

	if len(entries) > topK {
		entries = entries[:topK]
	}

	result := make([]NGram, len(entries))
	for i, e := range entries {
		seq := make([]string, len(e.tokens))
		for j, t := range e.tokens {
			seq[j] = TokenString(t)
		}
		result[i] = NGram{
			N:           n,
			Sequence:    seq,
			Tokens:      e.tokens,
			Count:       e.count,
			Occurrences: e.occurrences,
		}
	}

	return result
}

func tokensEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MergeNGrams aggregates per-session reports, keyed by session id, into one.
func MergeNGrams(reports map[string]*NGramReport, topK int) *NGramReport {
	merged := &NGramReport{
		TopNGrams: make(map[int][]NGram),
	}

	// Visit sessions in a fixed order so sample occurrences are stable.
	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	byN := make(map[int]map[string]*NGram)
	for _, id := range ids {
		for n, ngrams := range reports[id].TopNGrams {
			agg, ok := byN[n]
			if !ok {
				agg = make(map[string]*NGram)
				byN[n] = agg
			}
			for _, ng := range ngrams {
				key := string(ng.Tokens)
				existing, ok := agg[key]
				if !ok {
					existing = &NGram{N: ng.N, Sequence: ng.Sequence, Tokens: ng.Tokens}
					agg[key] = existing
				}
				existing.Count += ng.Count
				for _, occ := range ng.Occurrences {
					if len(existing.Occurrences) >= maxOccurrences {
						break
					}
					occ.SessionID = id
					existing.Occurrences = append(existing.Occurrences, occ)
				}
			}
		}
	}

	for n, agg := range byN {
		ngrams := make([]NGram, 0, len(agg))
		for _, ng := range agg {
			ngrams = append(ngrams, *ng)
		}
		sort.Slice(ngrams, func(i, j int) bool {
			if ngrams[i].Count != ngrams[j].Count {
				return ngrams[i].Count > ngrams[j].Count
			}
			return string(ngrams[i].Tokens) < string(ngrams[j].Tokens)
		})
		if len(ngrams) > topK {
			ngrams = ngrams[:topK]
		}
		merged.TopNGrams[n] = ngrams
	}

	return merged
}
