// Package store holds the writers that persist run results to databases and brokers.
package store

import "DumpSpectra/internal/model"

// Counter categories as stored in the databases.
const (
	CategorySource      = "source"
	CategoryDestination = "destination"
	CategoryAddress     = "address"
	CategoryProtocol    = "protocol"
	CategoryFlag        = "flag"
	CategoryService     = "service"
	CategoryPair        = "pair"
)

// CounterRow is one counter entry flattened for a table.
// Position keeps the first-seen order within its category.
type CounterRow struct {
	Category string
	Key      string
	Count    int
	Position int
}

// PairKey renders a pair as a single key.
func PairKey(p model.Pair) string {
	return p.Source + " > " + p.Destination
}

// CounterRows flattens every counter of c, category by category.
func CounterRows(c *model.Counters) []CounterRow {
	var rows []CounterRow
	add := func(category string, entries []model.Entry) {
		for i, e := range entries {
			rows = append(rows, CounterRow{Category: category, Key: e.Key, Count: e.Count, Position: i})
		}
	}
	add(CategorySource, c.BySource.Entries())
	add(CategoryDestination, c.ByDestination.Entries())
	add(CategoryAddress, c.ByAddress.Entries())
	add(CategoryProtocol, c.ByProtocol.Entries())
	add(CategoryFlag, c.ByFlag.Entries())
	add(CategoryService, c.ByService.Entries())
	for i, p := range c.Pairs.Entries() {
		rows = append(rows, CounterRow{Category: CategoryPair, Key: PairKey(p.Pair), Count: p.Count, Position: i})
	}
	return rows
}
