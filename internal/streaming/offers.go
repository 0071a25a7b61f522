package streaming

import (
	"strings"

	"rewatch/internal/catalog"
)

// Monetization types reported by the search API.
const (
	MonetizationFlatrate = "FLATRATE"
	MonetizationRent     = "RENT"
	MonetizationBuy      = "BUY"
)

// ObjectTypeMovie is the candidate type eligible for matching.
const ObjectTypeMovie = "MOVIE"

// Offer is one availability signal on a candidate.
type Offer struct {
	MonetizationType string
	PackageID        int
	ProviderName     string
}

// Candidate is one search result node.
type Candidate struct {
	ID          string
	ObjectType  string
	Title       string
	ReleaseYear int
	Offers      []Offer
}

// subscriptionPackages maps flatrate package ids to service flags. Several
// ids share a flag where a provider runs more than one tier.
var subscriptionPackages = map[int]catalog.Service{
	8:    catalog.ServiceNetflix,
	1796: catalog.ServiceNetflix,
	21:   catalog.ServiceStan,
	1899: catalog.ServiceStan,
	9:    catalog.ServicePrimeVideo,
	119:  catalog.ServicePrimeVideo,
	337:  catalog.ServiceDisneyPlus,
	385:  catalog.ServiceBinge,
	531:  catalog.ServiceParamount,
	350:  catalog.ServiceAppleTV,
	384:  catalog.ServiceHBOMax,
}

// rentBuyVendors maps rent and buy package ids to vendor display names.
var rentBuyVendors = map[int]string{
	2:   "Apple TV",
	3:   "Google Play",
	10:  "Amazon",
	68:  "Microsoft Store",
	192: "YouTube",
}

// ClassifyOffers builds the streaming state described by offers. Unknown
// package ids and other monetization types are ignored.
func ClassifyOffers(offers []Offer) catalog.Streaming {
	state := catalog.Streaming{RentBuy: []string{}}
	for _, offer := range offers {
		switch strings.ToUpper(strings.TrimSpace(offer.MonetizationType)) {
		case MonetizationFlatrate:
			if svc, ok := subscriptionPackages[offer.PackageID]; ok {
				state.Set(svc, true)
			}
		case MonetizationRent, MonetizationBuy:
			if name, ok := rentBuyVendors[offer.PackageID]; ok {
				state.AddRentBuy(name)
			}
		}
	}
	return state
}
