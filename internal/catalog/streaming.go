package catalog

import (
	"slices"
	"strings"
)

// Service names a subscription flag by its JSON key.
type Service string

const (
	ServiceNetflix    Service = "netflix"
	ServiceStan       Service = "stan"
	ServicePrimeVideo Service = "primeVideo"
	ServiceDisneyPlus Service = "disneyPlus"
	ServiceBinge      Service = "binge"
	ServiceParamount  Service = "paramount"
	ServiceAppleTV    Service = "appleTv"
	ServiceHBOMax     Service = "hboMax"
)

var allServices = []Service{
	ServiceNetflix,
	ServiceStan,
	ServicePrimeVideo,
	ServiceDisneyPlus,
	ServiceBinge,
	ServiceParamount,
	ServiceAppleTV,
	ServiceHBOMax,
}

// Services returns every known subscription service in display order.
func Services() []Service {
	return slices.Clone(allServices)
}

// ParseService maps a JSON key (case-insensitive) to a Service.
func ParseService(value string) (Service, bool) {
	value = strings.TrimSpace(value)
	for _, svc := range allServices {
		if strings.EqualFold(string(svc), value) {
			return svc, true
		}
	}
	return "", false
}

// Streaming is the per-entry availability record: one independent flag per
// subscription service plus the set of rent/buy vendors.
type Streaming struct {
	Netflix    bool     `json:"netflix"`
	Stan       bool     `json:"stan"`
	PrimeVideo bool     `json:"primeVideo"`
	DisneyPlus bool     `json:"disneyPlus"`
	Binge      bool     `json:"binge"`
	Paramount  bool     `json:"paramount"`
	AppleTV    bool     `json:"appleTv"`
	HBOMax     bool     `json:"hboMax"`
	RentBuy    []string `json:"rentBuy"`
}

func (s *Streaming) flag(svc Service) *bool {
	switch svc {
	case ServiceNetflix:
		return &s.Netflix
	case ServiceStan:
		return &s.Stan
	case ServicePrimeVideo:
		return &s.PrimeVideo
	case ServiceDisneyPlus:
		return &s.DisneyPlus
	case ServiceBinge:
		return &s.Binge
	case ServiceParamount:
		return &s.Paramount
	case ServiceAppleTV:
		return &s.AppleTV
	case ServiceHBOMax:
		return &s.HBOMax
	default:
		return nil
	}
}

// Set assigns the flag for svc. Unknown services report false.
func (s *Streaming) Set(svc Service, value bool) bool {
	ptr := s.flag(svc)
	if ptr == nil {
		return false
	}
	*ptr = value
	return true
}

// Has reports whether the flag for svc is set.
func (s Streaming) Has(svc Service) bool {
	ptr := s.flag(svc)
	return ptr != nil && *ptr
}

// Subscriptions lists the services whose flag is set, in display order.
func (s Streaming) Subscriptions() []Service {
	var out []Service
	for _, svc := range allServices {
		if s.Has(svc) {
			out = append(out, svc)
		}
	}
	return out
}

// AddRentBuy merges vendor names into the rent/buy set. Names are compared
// case-sensitively; the result is sorted.
func (s *Streaming) AddRentBuy(names ...string) {
	merged := slices.Clone(s.RentBuy)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(merged, name) {
			continue
		}
		merged = append(merged, name)
	}
	slices.Sort(merged)
	s.RentBuy = merged
	if s.RentBuy == nil {
		s.RentBuy = []string{}
	}
}

// HasAny reports whether any subscription flag is set or any rent/buy vendor is recorded.
func (s Streaming) HasAny() bool {
	return len(s.Subscriptions()) > 0 || len(s.RentBuy) > 0
}

// Clone returns a deep copy.
func (s Streaming) Clone() Streaming {
	out := s
	out.RentBuy = slices.Clone(s.RentBuy)
	if out.RentBuy == nil {
		out.RentBuy = []string{}
	}
	return out
}

// Equal reports whether both records carry the same flags and vendors.
func (s Streaming) Equal(other Streaming) bool {
	for _, svc := range allServices {
		if s.Has(svc) != other.Has(svc) {
			return false
		}
	}
	return slices.Equal(normalizeVendors(s.RentBuy), normalizeVendors(other.RentBuy))
}

func normalizeVendors(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
