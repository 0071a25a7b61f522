package studio

import (
	"strings"

	"rewatch/internal/catalog"
)

// Classifier maps free text to a studio code using Tables.
type Classifier struct {
	tables *Tables
}

// NewClassifier returns a classifier over tables, or the defaults when nil.
func NewClassifier(tables *Tables) *Classifier {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Classifier{tables: tables}
}

// Tables exposes the classifier's lookup data.
func (c *Classifier) Tables() *Tables {
	return c.tables
}

// Classify returns the code of the first keyword rule contained in the
// lowercased text, or "unknown".
func (c *Classifier) Classify(freeText string) string {
	text := strings.ToLower(freeText)
	if strings.TrimSpace(text) == "" {
		return catalog.UnknownStudio
	}
	for _, rule := range c.tables.keywords {
		if strings.Contains(text, rule.Keyword) {
			return rule.Code
		}
	}
	return catalog.UnknownStudio
}

// ClassifyAll joins several signals (production companies, distributor,
// label) and classifies the result.
func (c *Classifier) ClassifyAll(signals ...string) string {
	return c.Classify(strings.Join(signals, " | "))
}
