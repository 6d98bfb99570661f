package issuer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnsupportedIssuer is matched by every UnsupportedIssuerError.
var ErrUnsupportedIssuer = errors.New("unsupported issuer")

// UnsupportedIssuerError reports that no profile recognized a document.
type UnsupportedIssuerError struct {
	Supported []string
}

func (e *UnsupportedIssuerError) Error() string {
	return "Unsupported bank or credit card issuer. Supported banks: " + strings.Join(e.Supported, ", ")
}

func (e *UnsupportedIssuerError) Is(target error) bool {
	return target == ErrUnsupportedIssuer
}

// Registry detects issuers over an ordered profile list. The first profile
// in order with any keyword in the text wins.
type Registry struct {
	profiles []*Profile
	matcher  *ahocorasick.Matcher
	owner    []int // keyword index -> profile index
}

// NewRegistry builds a registry. Profile order is detection priority.
func NewRegistry(profiles ...*Profile) *Registry {
	r := &Registry{profiles: profiles}

	seen := make(map[string]bool)
	var keywords []string
	for i, p := range profiles {
		for _, kw := range p.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			// A keyword shared by two profiles belongs to the earlier one.
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			keywords = append(keywords, kw)
			r.owner = append(r.owner, i)
		}
	}
	r.matcher = ahocorasick.NewStringMatcher(keywords)
	return r
}

// ForRegion returns the built-in registry for "in", "us" or "uk".
func ForRegion(region string) (*Registry, error) {
	switch strings.ToLower(strings.TrimSpace(region)) {
	case "", "in", "india":
		return NewRegistry(India()...), nil
	case "us", "usa":
		return NewRegistry(US()...), nil
	case "uk", "gb":
		return NewRegistry(UK()...), nil
	default:
		return nil, fmt.Errorf("unknown issuer region %q (want in, us or uk)", region)
	}
}

// Detect returns the highest-priority profile whose keywords occur in text,
// ignoring case.
func (r *Registry) Detect(text string) (*Profile, bool) {
	hits := r.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))
	best := -1
	for _, h := range hits {
		if idx := r.owner[h]; best < 0 || idx < best {
			best = idx
		}
	}
	if best < 0 {
		return nil, false
	}
	return r.profiles[best], true
}

// Lookup finds a profile by a user-supplied name such as "hdfc" or "amex".
// An exact name or keyword wins; otherwise the closest fuzzy name match.
func (r *Registry) Lookup(name string) (*Profile, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	for _, p := range r.profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	for _, p := range r.profiles {
		for _, kw := range p.Keywords {
			if strings.EqualFold(kw, name) {
				return p, true
			}
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(name, r.Names())
	if len(ranks) == 0 {
		return nil, false
	}
	sort.Stable(ranks)
	return r.profiles[ranks[0].OriginalIndex], true
}

// Profiles returns the profiles in detection order.
func (r *Registry) Profiles() []*Profile {
	return append([]*Profile(nil), r.profiles...)
}

// Names returns the profile display names in detection order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name
	}
	return names
}

// Unsupported returns the error for a document no profile recognized.
func (r *Registry) Unsupported() error {
	return &UnsupportedIssuerError{Supported: r.Supported()}
}

// Supported lists the display names users see, sorted alphabetically.
func (r *Registry) Supported() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
