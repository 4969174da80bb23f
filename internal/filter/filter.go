// Package filter decides which discovered items a batch may import.
package filter

import (
	"fmt"
	"strings"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// PrefixFilter allows an item iff its identifier starts with one of the
// configured prefixes. Matching is exact and case-sensitive; the order of the
// prefixes does not matter.
type PrefixFilter struct {
	prefixes []string
}

// NewPrefixFilter creates a filter over the given prefixes.
// Panics if prefixes is empty; configuration validation rejects that earlier.
func NewPrefixFilter(prefixes []string) *PrefixFilter {
	if len(prefixes) == 0 {
		panic("prefixes cannot be empty")
	}
	p := make([]string, len(prefixes))
	copy(p, prefixes)
	return &PrefixFilter{prefixes: p}
}

// Allowed reports whether item's identifier carries an allowed prefix.
func (f *PrefixFilter) Allowed(item asdb.Item) bool {
	return f.Matches(item.Identifier)
}

// Matches reports whether identifier starts with an allowed prefix.
func (f *PrefixFilter) Matches(identifier string) bool {
	for _, p := range f.prefixes {
		if strings.HasPrefix(identifier, p) {
			return true
		}
	}
	return false
}

// ParsePrefixes parses the comma-separated form used on the command line and in
// the environment: "GCA, GCF". Entries are trimmed; blanks and duplicates are
// dropped. An empty result is an asdb.ErrInvalidConfig.
func ParsePrefixes(s string) ([]string, error) {
	return NormalizePrefixes(strings.Split(s, ","))
}

// NormalizePrefixes trims the given prefixes and drops blanks and duplicates,
// keeping first-seen order.
func NormalizePrefixes(prefixes []string) ([]string, error) {
	seen := make(map[string]bool, len(prefixes))
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no allowed prefixes given: %w", asdb.ErrInvalidConfig)
	}
	return out, nil
}

var _ asdb.ItemFilter = (*PrefixFilter)(nil)
