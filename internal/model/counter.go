package model

// Entry is one key of a Counter with its count.
type Entry struct {
	Key   string
	Count int
}

// Counter counts string keys and remembers the order in which keys first appeared.
// The zero value is ready to use.
type Counter struct {
	index   map[string]int
	entries []Entry
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// Inc adds one to key.
func (c *Counter) Inc(key string) {
	c.Add(key, 1)
}

// Add adds n to key. Negative n is ignored so counts never decrease.
func (c *Counter) Add(key string, n int) {
	if n < 0 {
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[key]; ok {
		c.entries[i].Count += n
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry{Key: key, Count: n})
}

// Get returns the count for key and whether the key was ever seen.
func (c *Counter) Get(key string) (int, bool) {
	i, ok := c.index[key]
	if !ok {
		return 0, false
	}
	return c.entries[i].Count, true
}

// Count returns the count for key, zero when absent.
func (c *Counter) Count(key string) int {
	n, _ := c.Get(key)
	return n
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.entries)
}

// Total returns the sum of all counts.
func (c *Counter) Total() int {
	total := 0
	for _, e := range c.entries {
		total += e.Count
	}
	return total
}

// Entries returns a copy of the entries in insertion order.
func (c *Counter) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
