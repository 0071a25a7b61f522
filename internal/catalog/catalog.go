package catalog

import (
	"fmt"
	"strings"
)

// Catalog is the in-memory catalog document. Episodes are ordered newest first.
type Catalog struct {
	Episodes []Entry `json:"episodes"`
}

// Clone returns a deep copy so callers can mutate freely until a save succeeds.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return &Catalog{Episodes: []Entry{}}
	}
	out := &Catalog{Episodes: make([]Entry, len(c.Episodes))}
	for i, entry := range c.Episodes {
		out.Episodes[i] = entry.Clone()
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Episodes)
}

// Index returns the position of the entry with id, or -1.
func (c *Catalog) Index(id string) int {
	for i := range c.Episodes {
		if c.Episodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the entry with id for in-place mutation.
func (c *Catalog) Find(id string) (*Entry, bool) {
	if i := c.Index(id); i >= 0 {
		return &c.Episodes[i], true
	}
	return nil, false
}

// Prepend inserts entries at the front, keeping their relative order.
func (c *Catalog) Prepend(entries ...Entry) {
	if len(entries) == 0 {
		return
	}
	merged := make([]Entry, 0, len(entries)+len(c.Episodes))
	for _, entry := range entries {
		entry.Normalize()
		merged = append(merged, entry)
	}
	c.Episodes = append(merged, c.Episodes...)
}

// UniqueID returns base when no entry uses it, otherwise base suffixed with
// the first free counter starting at 2 ("heat-2").
func (c *Catalog) UniqueID(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "episode"
	}
	if c.Index(base) < 0 {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if c.Index(candidate) < 0 {
			return candidate
		}
	}
}

// Validate reports duplicate or empty ids.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Episodes))
	for i, entry := range c.Episodes {
		if strings.TrimSpace(entry.ID) == "" {
			return fmt.Errorf("episode %d (%q) has an empty id", i, entry.Title)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("duplicate episode id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

func (c *Catalog) normalize() {
	if c.Episodes == nil {
		c.Episodes = []Entry{}
	}
	for i := range c.Episodes {
		c.Episodes[i].Normalize()
	}
}
