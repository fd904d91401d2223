package market

import (
	"slices"
	"strings"
	"time"
)

// Watchlist is an immutable, versioned snapshot of the symbols to scan.
type Watchlist struct {
	version   uint64
	symbols   []string
	createdOn time.Time
}

// NewWatchlist initializes a watchlist snapshot from the provided symbols. Symbols are
// upper cased, deduplicated and sorted; blocked symbols are removed.
func NewWatchlist(version uint64, symbols []string, blocked []string, created time.Time) *Watchlist {
	block := make(map[string]struct{}, len(blocked))
	for _, sym := range blocked {
		block[normalizeSymbol(sym)] = struct{}{}
	}

	set := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = normalizeSymbol(sym)
		if sym == "" {
			continue
		}
		if _, ok := block[sym]; ok {
			continue
		}

		set = append(set, sym)
	}

	slices.Sort(set)
	set = slices.Compact(set)

	return &Watchlist{
		version:   version,
		symbols:   set,
		createdOn: created,
	}
}

// normalizeSymbol trims and upper cases a ticker symbol.
func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Version returns the snapshot version.
func (w *Watchlist) Version() uint64 {
	return w.version
}

// Symbols returns a copy of the snapshot's symbols.
func (w *Watchlist) Symbols() []string {
	return slices.Clone(w.symbols)
}

// Len returns the number of symbols in the snapshot.
func (w *Watchlist) Len() int {
	return len(w.symbols)
}

// Contains checks whether the symbol is part of the snapshot.
func (w *Watchlist) Contains(symbol string) bool {
	_, found := slices.BinarySearch(w.symbols, normalizeSymbol(symbol))
	return found
}

// CreatedOn returns the snapshot creation time.
func (w *Watchlist) CreatedOn() time.Time {
	return w.createdOn
}
