// Package fuzzyindex implements FuzzyIndex: an append-only,
// case-configurable inverted character-position index supporting
// scored subsequence matching and HTML-safe highlighting.
package fuzzyindex

import (
	"sort"
	"strings"
	"sync"
)

type occurrence struct {
	id int
	// position is the byte offset of this rune within the indexed key,
	// matching idx.key's byte-length accounting.
	position int
}

// Index is a case-configurable inverted index over inserted keys.
// Mutable state is guarded by mu; mutating a returned match array while
// the caller still holds a reference from a prior call is a programming
// error.
type Index struct {
	mu sync.Mutex

	caseSensitive bool

	heap          []byte
	idToTextStart []int
	idToValue     []any
	charTables    map[rune][]occurrence
	tombstoned    map[int]bool

	bulk bool
	// touched tracks tables written to during a bulk insert, so
	// end_bulk_insert only re-sorts the ones that actually changed.
	touched map[rune]bool
}

// New constructs an empty Index. caseSensitive controls whether Insert
// and Match lowercase their working copies before indexing/matching.
func New(caseSensitive bool) *Index {
	return &Index{
		caseSensitive: caseSensitive,
		charTables:    make(map[rune][]occurrence),
		tombstoned:    make(map[int]bool),
	}
}

// BeginBulkInsert suspends per-insert table resorting until
// EndBulkInsert is called.
func (idx *Index) BeginBulkInsert() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.bulk = true
	idx.touched = make(map[rune]bool)
}

// EndBulkInsert resorts every table touched since BeginBulkInsert.
func (idx *Index) EndBulkInsert() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for ch := range idx.touched {
		idx.sortTable(ch)
	}
	idx.bulk = false
	idx.touched = nil
}

// Insert adds key with an associated value, returning the assigned id.
func (idx *Index) Insert(key string, value any) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	id := len(idx.idToTextStart)
	idx.idToTextStart = append(idx.idToTextStart, len(idx.heap))
	idx.heap = append(idx.heap, key...)
	idx.heap = append(idx.heap, 0)
	idx.idToValue = append(idx.idToValue, value)

	working := key
	if !idx.caseSensitive {
		working = strings.ToLower(working)
	}

	touchedHere := make(map[rune]bool)
	for pos, ch := range working {
		idx.charTables[ch] = append(idx.charTables[ch], occurrence{id: id, position: pos})
		touchedHere[ch] = true
	}

	if idx.bulk {
		for ch := range touchedHere {
			idx.touched[ch] = true
		}
	} else {
		for ch := range touchedHere {
			idx.sortTable(ch)
		}
	}
	return id
}

func (idx *Index) sortTable(ch rune) {
	table := idx.charTables[ch]
	sort.Slice(table, func(i, j int) bool {
		if table[i].id != table[j].id {
			return table[i].id < table[j].id
		}
		return table[i].position < table[j].position
	})
}

// key returns the original (not lowercased) text for id.
func (idx *Index) key(id int) string {
	start := idx.idToTextStart[id]
	end := start
	for end < len(idx.heap) && idx.heap[end] != 0 {
		end++
	}
	return string(idx.heap[start:end])
}

// Remove tombstones every id whose key equals key (case-insensitively
// unless the index is case-sensitive), found via Match; other keys that
// merely fuzzy-match key are left alone. Entries stay in the
// per-character tables.
func (idx *Index) Remove(key string) {
	ids := idx.matchingIDs(key)
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, id := range ids {
		idx.tombstoned[id] = true
	}
}

func (idx *Index) matchingIDs(key string) []int {
	matches := idx.Match(key, 0)
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		if m.Key == key || (!idx.caseSensitive && strings.EqualFold(m.Key, key)) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Value returns the value associated with id, if any.
func (idx *Index) Value(id int) (any, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if id < 0 || id >= len(idx.idToValue) {
		return nil, false
	}
	if idx.tombstoned[id] {
		return nil, false
	}
	return idx.idToValue[id], true
}
