package audit

import (
	"cmp"
	"slices"

	"rewatch/internal/catalog"
)

// Count is one labelled tally.
type Count struct {
	Key   string
	Count int
}

// Stats summarises the catalog by studio and service.
type Stats struct {
	Total         int
	NativeCount   int
	LicensedCount int
	RentBuyOnly   int
	NoData        int
	ByStudio      map[string]int
	ByService     map[catalog.Service]int
}

// Stats tallies entries. Every service appears in ByService, zero or not.
func (a *Auditor) Stats(entries []catalog.Entry) Stats {
	stats := Stats{
		Total:     len(entries),
		ByStudio:  make(map[string]int),
		ByService: make(map[catalog.Service]int, len(catalog.Services())),
	}
	for _, svc := range catalog.Services() {
		stats.ByService[svc] = 0
	}
	for _, entry := range entries {
		code := studioCode(entry)
		stats.ByStudio[code]++
		if a.tables.IsNative(code) {
			stats.NativeCount++
		} else {
			stats.LicensedCount++
		}
		subs := entry.Streaming.Subscriptions()
		for _, svc := range subs {
			stats.ByService[svc]++
		}
		switch {
		case len(subs) == 0 && len(entry.Streaming.RentBuy) > 0:
			stats.RentBuyOnly++
		case !entry.Streaming.HasAny():
			stats.NoData++
		}
	}
	return stats
}

// StudioCounts returns ByStudio ordered by descending count, then name.
func (s Stats) StudioCounts() []Count {
	out := make([]Count, 0, len(s.ByStudio))
	for key, n := range s.ByStudio {
		out = append(out, Count{Key: key, Count: n})
	}
	sortCounts(out)
	return out
}

// ServiceCounts returns ByService ordered by descending count, then name.
func (s Stats) ServiceCounts() []Count {
	out := make([]Count, 0, len(s.ByService))
	for svc, n := range s.ByService {
		out = append(out, Count{Key: string(svc), Count: n})
	}
	sortCounts(out)
	return out
}

func sortCounts(counts []Count) {
	slices.SortFunc(counts, func(x, y Count) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Key, y.Key)
	})
}
