package routing

import (
	"sort"
	"strings"

	"leadgate/internal/organizations"

	"github.com/google/uuid"
)

// LongestPrefix returns the active mapping whose prefix is the longest
// literal prefix of postalCode. Ties on length keep the first mapping seen.
func LongestPrefix(mappings []ZoneMapping, postalCode string) (ZoneMapping, bool) {
	var best ZoneMapping
	found := false
	for _, m := range mappings {
		if !m.IsActive || m.Prefix == "" || !strings.HasPrefix(postalCode, m.Prefix) {
			continue
		}
		if !found || len(m.Prefix) > len(best.Prefix) {
			best = m
			found = true
		}
	}
	return best, found
}

// PreferredSite picks the active headquarters, else the first active site.
func PreferredSite(sites []organizations.Site) (organizations.Site, bool) {
	var fallback *organizations.Site
	for i := range sites {
		if !sites[i].IsActive {
			continue
		}
		if sites[i].IsHeadquarters {
			return sites[i], true
		}
		if fallback == nil {
			fallback = &sites[i]
		}
	}
	if fallback == nil {
		return organizations.Site{}, false
	}
	return *fallback, true
}

// FindOverlaps reports postal codes listed by several active territories,
// sorted by postal code.
func FindOverlaps(territories []Territory) []Overlap {
	byCode := make(map[string][]Territory)
	for _, t := range territories {
		if !t.IsActive {
			continue
		}
		seen := make(map[string]struct{}, len(t.PostalCodes))
		for _, code := range t.PostalCodes {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			byCode[code] = append(byCode[code], t)
		}
	}

	overlaps := make([]Overlap, 0)
	for code, owners := range byCode {
		if len(owners) < 2 {
			continue
		}
		o := Overlap{PostalCode: code}
		orgs := make(map[uuid.UUID]struct{})
		for _, t := range owners {
			o.TerritoryIDs = append(o.TerritoryIDs, t.ID)
			if _, ok := orgs[t.OrganizationID]; !ok {
				orgs[t.OrganizationID] = struct{}{}
				o.OrganizationIDs = append(o.OrganizationIDs, t.OrganizationID)
			}
		}
		overlaps = append(overlaps, o)
	}
	sort.Slice(overlaps, func(i, j int) bool { return overlaps[i].PostalCode < overlaps[j].PostalCode })
	return overlaps
}
