package pipeline

import (
	"github.com/sells-group/carenav/internal/model"
)

// DefaultProviderLimit bounds the shortlist when no positive limit is given.
const DefaultProviderLimit = 5

// MatchProviders shortlists providers for a patient. Providers are first
// filtered by specialty; when the patient has a plan id, in-network
// providers are preferred, falling back to the specialty matches if none
// are in network. Relative order from providers is kept.
func MatchProviders(patient model.Patient, providers []model.Provider, specialties []string, limit int) model.ProviderMatch {
	if limit <= 0 {
		limit = DefaultProviderLimit
	}

	wanted := make(map[string]struct{}, len(specialties))
	for _, s := range specialties {
		wanted[s] = struct{}{}
	}

	preferred := []model.Provider{}
	for _, p := range providers {
		if _, ok := wanted[p.Specialty]; ok {
			preferred = append(preferred, p)
		}
	}

	var inNetwork []model.Provider
	if plan := model.Text(patient.InsuranceID); plan != "" {
		for _, p := range preferred {
			if p.InNetwork(plan) {
				inNetwork = append(inNetwork, p)
			}
		}
	}

	shortlist := preferred
	if len(inNetwork) > 0 {
		shortlist = inNetwork
	}
	if len(shortlist) > limit {
		shortlist = shortlist[:limit]
	}

	return model.ProviderMatch{
		InsuranceID:          patient.InsuranceID,
		SuggestedSpecialties: orEmpty(specialties),
		Providers:            shortlist,
		InNetworkOnly:        len(inNetwork) > 0,
	}
}

// orEmpty turns a nil slice into an empty one so it marshals as [].
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
