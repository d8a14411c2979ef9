package fuzzyindex

import (
	"sort"
	"strings"
)

// Match is one scored result from Index.Match.
type Match struct {
	ID    int
	Key   string
	Value any
	Score float64
}

// Match finds every non-tombstoned id whose key contains needle's
// scalars as an ordered, possibly-gapped subsequence, scored by total
// gap size. maxMatches truncates the result if non-zero.
func (idx *Index) Match(needle string, maxMatches int) []Match {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	working := needle
	if !idx.caseSensitive {
		working = strings.ToLower(working)
	}
	scalars := []rune(working)
	if len(scalars) == 0 {
		return nil
	}

	tables := make([][]occurrence, len(scalars))
	for i, ch := range scalars {
		table, ok := idx.charTables[ch]
		if !ok || len(table) == 0 {
			return nil
		}
		tables[i] = table
	}

	best := make(map[int]float64)

	// cursors[i] indexes the next candidate position to try in tables[i]
	// for the current id's walk.
	for _, e0 := range tables[0] {
		if idx.tombstoned[e0.id] {
			continue
		}
		cursors := make([]int, len(tables))
		for {
			gapSum := 0
			prevPos := e0.position
			ok := true
			walkCursors := make([]int, len(tables))
			copy(walkCursors, cursors)

			for t := 1; t < len(tables); t++ {
				c := advance(tables[t], walkCursors[t], e0.id, prevPos)
				if c == -1 {
					ok = false
					break
				}
				walkCursors[t] = c
				entry := tables[t][c]
				gapSum += entry.position - prevPos - 1
				prevPos = entry.position
			}

			if !ok {
				break
			}

			var score float64
			switch {
			case len(scalars) == 1:
				score = 1.0 / float64(len(idx.key(e0.id))+e0.position)
			case gapSum == 0:
				// A contiguous (whole-substring) match scores perfectly.
				score = 1.0
			default:
				score = 1.0 / float64(len(idx.key(e0.id))+gapSum)
			}
			if existing, found := best[e0.id]; !found || score > existing {
				best[e0.id] = score
			}

			// Roll forward the last cursor to search for a better walk
			// for the same id; if no table advanced, stop.
			advanced := false
			for t := len(tables) - 1; t >= 1; t-- {
				if walkCursors[t] > cursors[t] {
					cursors[t] = walkCursors[t]
					advanced = true
					break
				}
			}
			if !advanced {
				break
			}
		}
	}

	results := make([]Match, 0, len(best))
	for id, score := range best {
		results = append(results, Match{
			ID:    id,
			Key:   idx.key(id),
			Value: idx.idToValue[id],
			Score: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})

	if maxMatches > 0 && len(results) > maxMatches {
		results = results[:maxMatches]
	}
	return results
}

// advance scans table from index start for the first entry with the
// given id and a position strictly greater than afterPos, returning
// its index or -1 if none exists.
func advance(table []occurrence, start, id, afterPos int) int {
	for i := start; i < len(table); i++ {
		if table[i].id != id {
			continue
		}
		if table[i].position > afterPos {
			return i
		}
	}
	return -1
}
