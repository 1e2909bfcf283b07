package catalog

import (
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// Convert turns a validated catalog file into domain users, ordered by
// domain name and then file order. Users whose lists are empty get them
// from their raw profile text.
func Convert(f *File) []*domain.User {
	var users []*domain.User
	for _, key := range domainKeys(f) {
		for _, raw := range f.Domains[key].Users {
			users = append(users, ConvertUser(key, raw))
		}
	}
	return users
}

// ConvertUser converts one raw user of the named domain.
func ConvertUser(domainKey string, raw RawUser) *domain.User {
	d := domain.CatalogDomain(domain.CoalesceStr(raw.Domain, domainKey))

	u := &domain.User{
		Profile: domain.UserProfile{
			ID:         strings.TrimSpace(raw.ID),
			Name:       strings.TrimSpace(raw.Name),
			Avatar:     raw.Avatar,
			Domain:     d,
			Age:        strings.TrimSpace(string(raw.Profile.Age)),
			Gender:     strings.TrimSpace(raw.Profile.Gender),
			Occupation: strings.TrimSpace(raw.Profile.Occupation),
			Location:   strings.TrimSpace(raw.Profile.Location),
			Traits:     append([]string(nil), raw.Profile.Traits...),
			RawProfile: raw.RawProfile,
		},
		GroundTruth: strings.ToUpper(strings.Trim(strings.TrimSpace(raw.GroundTruth), "[]")),
	}

	for _, h := range raw.History {
		u.History = append(u.History, domain.HistoryItem{
			Title:        h.Title,
			Year:         h.Year,
			Genre:        h.Genre,
			Rating:       h.Rating,
			Cover:        h.Cover,
			Description:  h.Description,
			Author:       h.Author,
			PublishedAt:  h.PublishedAt,
			Pages:        h.Pages,
			GlobalRating: h.GlobalRating,
			MyBehavior:   h.MyBehavior,
		})
	}
	for _, e := range raw.ExposureList {
		u.Exposure = append(u.Exposure, domain.ExposureItem{
			Title:       e.Title,
			Year:        e.Year,
			Genre:       e.Genre,
			Cover:       e.Cover,
			Author:      e.Author,
			PublishedAt: e.PublishedAt,
			Pages:       e.Pages,
			Rating:      e.Rating,
		})
	}

	if raw.RawProfile != "" && (len(u.History) == 0 || len(u.Exposure) == 0) {
		parsed := ParseRawProfile(raw.RawProfile)
		if len(u.History) == 0 {
			u.History = parsed.History
		}
		if len(u.Exposure) == 0 {
			u.Exposure = parsed.Exposure
		}
	}

	if len(raw.ModelOutputs) > 0 {
		u.ModelOutputs = make(map[string]domain.SimulationResult, len(raw.ModelOutputs))
		for k, v := range raw.ModelOutputs {
			u.ModelOutputs[k] = v
		}
	}

	return u
}
