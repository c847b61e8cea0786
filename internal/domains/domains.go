package domains

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"azdo-mcp/pkg/logging"
)

// Domain names a bundle of related tools that is enabled or disabled as a group.
type Domain string

const (
	AdvancedSecurity Domain = "advanced-security"
	Builds           Domain = "builds"
	Core             Domain = "core"
	Releases         Domain = "releases"
	Repositories     Domain = "repositories"
	Search           Domain = "search"
	TestPlans        Domain = "test-plans"
	Wiki             Domain = "wiki"
	Work             Domain = "work"
	WorkItems        Domain = "work-items"
)

// All is the sentinel that expands to every domain in the catalog.
const All = "all"

// catalog is the closed set of known domains, sorted.
var catalog = []Domain{
	AdvancedSecurity,
	Builds,
	Core,
	Releases,
	Repositories,
	Search,
	TestPlans,
	Wiki,
	Work,
	WorkItems,
}

var descriptions = map[Domain]string{
	AdvancedSecurity: "Advanced Security alerts",
	Builds:           "Build definitions and build runs",
	Core:             "Projects and teams",
	Releases:         "Classic release pipelines",
	Repositories:     "Git repositories and pull requests",
	Search:           "Code search",
	TestPlans:        "Test plans",
	Wiki:             "Project and code wikis",
	Work:             "Team iterations and boards",
	WorkItems:        "Work item tracking",
}

// Catalog returns every known domain in sorted order.
func Catalog() []Domain {
	out := make([]Domain, len(catalog))
	copy(out, catalog)
	return out
}

// Description returns a short human readable description of d.
func Description(d Domain) string {
	return descriptions[d]
}

// IsKnown reports whether name is a domain in the catalog.
func IsKnown(name string) bool {
	for _, d := range catalog {
		if string(d) == name {
			return true
		}
	}
	return false
}

// Set is a concrete set of enabled domains. It never contains the "all"
// sentinel.
type Set map[Domain]struct{}

// Has reports whether d is enabled.
func (s Set) Has(d Domain) bool {
	_, ok := s[d]
	return ok
}

// List returns the enabled domains in sorted order.
func (s Set) List() []Domain {
	out := make([]Domain, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the set as a comma separated list.
func (s Set) String() string {
	names := make([]string, 0, len(s))
	for _, d := range s.List() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

// UnknownDomainError is returned when the requested list names domains that
// are not in the catalog. The whole request is rejected.
type UnknownDomainError struct {
	Names     []string
	Available []Domain
}

func (e *UnknownDomainError) Error() string {
	available := make([]string, len(e.Available))
	for i, d := range e.Available {
		available[i] = string(d)
	}
	return fmt.Sprintf("unknown domain(s) %s; available domains: %s, or %q",
		strings.Join(quoteAll(e.Names), ", "), strings.Join(available, ", "), All)
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

// Manager turns a requested list of domain names into the set of enabled
// domains.
type Manager struct {
	enabled Set
}

// NewManager validates and normalizes the requested domains.
//
// Every entry may itself hold several names separated by commas or
// whitespace. Names are trimmed and lower-cased. "all" expands to the full
// catalog, and a request that normalizes to nothing also enables everything.
// Any name outside the catalog rejects the request with *UnknownDomainError.
func NewManager(requested ...string) (*Manager, error) {
	names := normalize(requested)

	enabled := make(Set)
	var unknown []string
	all := len(names) == 0

	for _, name := range names {
		switch {
		case name == All:
			all = true
		case IsKnown(name):
			enabled[Domain(name)] = struct{}{}
		default:
			unknown = append(unknown, name)
		}
	}

	if len(unknown) > 0 {
		return nil, &UnknownDomainError{Names: unknown, Available: Catalog()}
	}

	if all {
		enabled = make(Set, len(catalog))
		for _, d := range catalog {
			enabled[d] = struct{}{}
		}
	}

	logging.Debug("Domains", "Enabled domains: %s", enabled)
	return &Manager{enabled: enabled}, nil
}

func normalize(requested []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, entry := range requested {
		parts := strings.FieldsFunc(entry, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		for _, p := range parts {
			name := strings.ToLower(p)
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// EnabledDomains returns a copy of the enabled set.
func (m *Manager) EnabledDomains() Set {
	out := make(Set, len(m.enabled))
	for d := range m.enabled {
		out[d] = struct{}{}
	}
	return out
}
