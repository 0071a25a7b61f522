package audit

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"rewatch/internal/catalog"
	"rewatch/internal/studio"
)

// UnknownAge is reported for entries without a usable check date.
const UnknownAge = math.MaxInt32

// Record is a read-only audit view of one entry.
type Record struct {
	ID             string
	Title          string
	Studio         string
	LastCheck      string
	DaysSinceCheck int
	IsLicensed     bool
	NativeService  catalog.Service
	HasNative      bool
}

// AgeKnown reports whether the check date was usable.
func (r Record) AgeKnown() bool {
	return r.DaysSinceCheck != UnknownAge
}

// Auditor evaluates entries against the studio tables.
type Auditor struct {
	tables *studio.Tables
}

// NewAuditor returns an auditor. A nil tables value uses the defaults.
func NewAuditor(tables *studio.Tables) *Auditor {
	if tables == nil {
		tables = studio.DefaultTables()
	}
	return &Auditor{tables: tables}
}

// IsLicensed reports whether the entry's studio has no native service.
func (a *Auditor) IsLicensed(entry catalog.Entry) bool {
	return !a.tables.IsNative(studioCode(entry))
}

// AgeDays returns whole calendar days from the entry's last check to asOf.
// Future check dates count as zero.
func (a *Auditor) AgeDays(entry catalog.Entry, asOf time.Time) int {
	checked, ok := entry.LastCheck()
	if !ok {
		return UnknownAge
	}
	today, err := catalog.ParseDate(catalog.FormatDate(asOf))
	if err != nil {
		return UnknownAge
	}
	days := int(today.Sub(checked).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Record builds the audit view of entry.
func (a *Auditor) Record(entry catalog.Entry, asOf time.Time) Record {
	code := studioCode(entry)
	rec := Record{
		ID:             entry.ID,
		Title:          entry.Title,
		Studio:         code,
		LastCheck:      entry.LastStreamingCheck,
		DaysSinceCheck: a.AgeDays(entry, asOf),
		IsLicensed:     true,
	}
	if svc, ok := a.tables.NativeService(code); ok {
		rec.IsLicensed = false
		rec.NativeService = svc
		rec.HasNative = entry.Streaming.Has(svc)
	}
	return rec
}

// Stale returns licensed entries whose age is strictly greater than
// minDays, ranked by descending age, then title.
func (a *Auditor) Stale(entries []catalog.Entry, asOf time.Time, minDays int) []Record {
	return a.collect(entries, asOf, func(r Record) bool {
		return r.IsLicensed && r.DaysSinceCheck > minDays
	})
}

// AllStale is Stale without the licensed filter.
func (a *Auditor) AllStale(entries []catalog.Entry, asOf time.Time, minDays int) []Record {
	return a.collect(entries, asOf, func(r Record) bool {
		return r.DaysSinceCheck > minDays
	})
}

// NativeStatus returns the native entries in catalog order. Entries whose
// native flag is missing have HasNative false.
func (a *Auditor) NativeStatus(entries []catalog.Entry, asOf time.Time) []Record {
	out := make([]Record, 0)
	for _, entry := range entries {
		if rec := a.Record(entry, asOf); !rec.IsLicensed {
			out = append(out, rec)
		}
	}
	return out
}

// MissingNative filters NativeStatus output to entries lacking their flag.
func MissingNative(records []Record) []Record {
	out := make([]Record, 0)
	for _, rec := range records {
		if !rec.IsLicensed && !rec.HasNative {
			out = append(out, rec)
		}
	}
	return out
}

func (a *Auditor) collect(entries []catalog.Entry, asOf time.Time, keep func(Record) bool) []Record {
	out := make([]Record, 0)
	for _, entry := range entries {
		if rec := a.Record(entry, asOf); keep(rec) {
			out = append(out, rec)
		}
	}
	slices.SortStableFunc(out, func(x, y Record) int {
		if c := cmp.Compare(y.DaysSinceCheck, x.DaysSinceCheck); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(x.Title), strings.ToLower(y.Title))
	})
	return out
}

func studioCode(entry catalog.Entry) string {
	code := strings.ToLower(strings.TrimSpace(entry.Studio))
	if code == "" {
		return catalog.UnknownStudio
	}
	return code
}
