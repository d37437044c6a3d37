package core

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// codeCollator orders product codes the way a human reads them: case-
// insensitive and numeric-aware, so F9 sorts before F100. Collators are not
// safe for concurrent use, so each sort builds its own.
func codeCollator() *collate.Collator {
	return collate.New(language.English, collate.Numeric, collate.IgnoreCase)
}

// sortItemsByCode orders bill items ascending by code in place. Applied on
// every bill write so reads return a stable display order.
func sortItemsByCode(items []BillItem) {
	c := codeCollator()
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].Code, items[j].Code) < 0
	})
}

// sortedCodes returns the keys of a per-code map in collation order.
// Locking product rows in this deterministic order keeps concurrent bill
// transactions from deadlocking against each other.
func sortedCodes[V any](m map[string]V) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	c := codeCollator()
	sort.Slice(codes, func(i, j int) bool {
		return c.CompareString(codes[i], codes[j]) < 0
	})
	return codes
}
