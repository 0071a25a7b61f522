package studio

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"rewatch/internal/catalog"
	"rewatch/internal/config"
)

// KeywordRule maps a lowercase keyword to a studio code.
type KeywordRule struct {
	Keyword string
	Code    string
}

// Tables holds the ordered keyword rules and the studio to native service map.
// A Tables value is never modified after construction.
type Tables struct {
	keywords []KeywordRule
	native   map[string]catalog.Service
}

var defaultKeywords = []KeywordRule{
	{Keyword: "pixar", Code: "pixar"},
	{Keyword: "marvel", Code: "marvel"},
	{Keyword: "lucasfilm", Code: "lucasfilm"},
	{Keyword: "searchlight", Code: "fox-searchlight"},
	{Keyword: "20th century", Code: "20th-century"},
	{Keyword: "twentieth century", Code: "20th-century"},
	{Keyword: "walt disney", Code: "disney"},
	{Keyword: "touchstone", Code: "disney"},
	{Keyword: "buena vista", Code: "disney"},
	{Keyword: "disney", Code: "disney"},
	{Keyword: "new line", Code: "new-line"},
	{Keyword: "warner", Code: "warner-bros"},
	{Keyword: "miramax", Code: "miramax"},
	{Keyword: "paramount", Code: "paramount"},
	{Keyword: "metro-goldwyn", Code: "mgm"},
	{Keyword: "mgm", Code: "mgm"},
	{Keyword: "united artists", Code: "mgm"},
	{Keyword: "amazon", Code: "amazon"},
	{Keyword: "dreamworks", Code: "dreamworks"},
	{Keyword: "focus features", Code: "universal"},
	{Keyword: "universal", Code: "universal"},
	{Keyword: "tristar", Code: "tristar"},
	{Keyword: "columbia", Code: "sony"},
	{Keyword: "sony", Code: "sony"},
	{Keyword: "lionsgate", Code: "lionsgate"},
	{Keyword: "lions gate", Code: "lionsgate"},
	{Keyword: "a24", Code: "a24"},
	{Keyword: "orion", Code: "orion"},
}

var defaultNative = map[string]catalog.Service{
	"warner-bros":     catalog.ServiceHBOMax,
	"new-line":        catalog.ServiceHBOMax,
	"disney":          catalog.ServiceDisneyPlus,
	"pixar":           catalog.ServiceDisneyPlus,
	"marvel":          catalog.ServiceDisneyPlus,
	"lucasfilm":       catalog.ServiceDisneyPlus,
	"20th-century":    catalog.ServiceDisneyPlus,
	"fox-searchlight": catalog.ServiceDisneyPlus,
	"paramount":       catalog.ServiceParamount,
	"miramax":         catalog.ServiceParamount,
	"mgm":             catalog.ServicePrimeVideo,
	"amazon":          catalog.ServicePrimeVideo,
}

// DefaultTables returns the built-in keyword priority list and native map.
func DefaultTables() *Tables {
	t, err := NewTables(defaultKeywords, defaultNative)
	if err != nil {
		panic(fmt.Sprintf("studio: invalid default tables: %v", err))
	}
	return t
}

// NewTables validates and copies the supplied rules and native map. Keywords
// and codes are lowercased; rule order is preserved.
func NewTables(rules []KeywordRule, native map[string]catalog.Service) (*Tables, error) {
	t := &Tables{
		keywords: make([]KeywordRule, 0, len(rules)),
		native:   make(map[string]catalog.Service, len(native)),
	}
	for i, rule := range rules {
		keyword := strings.ToLower(strings.TrimSpace(rule.Keyword))
		code := strings.ToLower(strings.TrimSpace(rule.Code))
		if keyword == "" || code == "" {
			return nil, fmt.Errorf("keyword rule %d: keyword and code are required", i)
		}
		t.keywords = append(t.keywords, KeywordRule{Keyword: keyword, Code: code})
	}
	for code, svc := range native {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			return nil, fmt.Errorf("native map: empty studio code")
		}
		parsed, ok := catalog.ParseService(string(svc))
		if !ok {
			return nil, fmt.Errorf("native map: studio %q maps to unknown service %q", code, svc)
		}
		t.native[code] = parsed
	}
	return t, nil
}

// FromConfig builds tables from the [studio] section. Each table that the
// section leaves empty falls back to its built-in default.
func FromConfig(cfg config.Studio) (*Tables, error) {
	rules := defaultKeywords
	if len(cfg.Keywords) > 0 {
		rules = make([]KeywordRule, 0, len(cfg.Keywords))
		for _, kw := range cfg.Keywords {
			rules = append(rules, KeywordRule{Keyword: kw.Keyword, Code: kw.Code})
		}
	}
	native := defaultNative
	if len(cfg.Native) > 0 {
		native = make(map[string]catalog.Service, len(cfg.Native))
		for code, svc := range cfg.Native {
			native[code] = catalog.Service(svc)
		}
	}
	return NewTables(rules, native)
}

// Keywords returns the rules in match order.
func (t *Tables) Keywords() []KeywordRule {
	return slices.Clone(t.keywords)
}

// NativeService returns the service that owns code's catalog.
func (t *Tables) NativeService(code string) (catalog.Service, bool) {
	svc, ok := t.native[strings.ToLower(strings.TrimSpace(code))]
	return svc, ok
}

// IsNative reports whether code is locked to a native service.
func (t *Tables) IsNative(code string) bool {
	_, ok := t.NativeService(code)
	return ok
}

// NativeCodes lists the native studio codes in sorted order.
func (t *Tables) NativeCodes() []string {
	codes := make([]string, 0, len(t.native))
	for code := range t.native {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
