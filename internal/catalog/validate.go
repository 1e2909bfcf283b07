package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// Validate checks a catalog file before conversion and returns every
// problem found.
func Validate(f *File) []error {
	var errs []error

	if len(f.Domains) == 0 {
		errs = append(errs, fmt.Errorf("domains: at least one domain is required"))
	}

	ids := make(map[string]string)
	for _, key := range domainKeys(f) {
		if !domain.ValidDomains[key] {
			errs = append(errs, fmt.Errorf("domains.%s: unknown domain", key))
		}
		for i, u := range f.Domains[key].Users {
			prefix := fmt.Sprintf("domains.%s.users[%d]", key, i)
			errs = append(errs, validateUser(prefix, key, &u, ids)...)
		}
	}

	return errs
}

func validateUser(prefix, domainKey string, u *RawUser, ids map[string]string) []error {
	var errs []error

	id := strings.TrimSpace(u.ID)
	if id == "" {
		errs = append(errs, fmt.Errorf("%s.id is required", prefix))
	} else if first, dup := ids[id]; dup {
		errs = append(errs, fmt.Errorf("%s.id: duplicate id %q (first used at %s)", prefix, id, first))
	} else {
		ids[id] = prefix
	}
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, fmt.Errorf("%s.name is required", prefix))
	}
	if u.Domain != "" && u.Domain != domainKey {
		errs = append(errs, fmt.Errorf("%s.domain %q does not match enclosing domain %q", prefix, u.Domain, domainKey))
	}

	for i, h := range u.History {
		if strings.TrimSpace(h.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.history[%d].title is required", prefix, i))
		}
	}
	for i, e := range u.ExposureList {
		if strings.TrimSpace(e.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.exposureList[%d].title is required", prefix, i))
		}
	}

	exposureLen := len(u.ExposureList)
	if exposureLen == 0 && u.RawProfile != "" {
		exposureLen = len(ParseRawProfile(u.RawProfile).Exposure)
	}
	if exposureLen == 0 {
		errs = append(errs, fmt.Errorf("%s.exposureList must contain at least one item", prefix))
	}

	if gt := strings.Trim(strings.TrimSpace(u.GroundTruth), "[]"); gt != "" && exposureLen > 0 {
		idx := domain.LabelIndex(gt)
		if idx < 0 || idx >= exposureLen {
			errs = append(errs, fmt.Errorf("%s.groundTruth %q is not a label of the exposure list (A-%s)", prefix, u.GroundTruth, domain.Label(exposureLen-1)))
		}
	}

	return errs
}

// domainKeys returns the domain names of f in a stable order.
func domainKeys(f *File) []string {
	keys := make([]string, 0, len(f.Domains))
	for k := range f.Domains {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
