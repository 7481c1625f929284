package catalog

import (
	"strings"
	"unicode"
)

// MatchTier records which rule resolved an identifier
type MatchTier string

const (
	TierNone     MatchTier = ""
	TierID       MatchTier = "id"
	TierPath     MatchTier = "path"
	TierKeyword  MatchTier = "keyword"
	TierContains MatchTier = "contains"
)

// minContainsLength keeps very short identifiers like "ui" from matching
// half the catalog through substring containment.
const minContainsLength = 3

type lookupIndex struct {
	byID       map[string]int
	byPath     map[string]int
	byKeyword  map[string]int
	byCategory map[string]string
	candidates [][]string
}

var index = buildIndex(services)

func buildIndex(list []Service) *lookupIndex {
	idx := &lookupIndex{
		byID:       make(map[string]int, len(list)),
		byPath:     make(map[string]int),
		byKeyword:  make(map[string]int),
		byCategory: make(map[string]string, len(categories)),
		candidates: make([][]string, len(list)),
	}

	for i, s := range list {
		idx.byID[Normalize(s.ID)] = i
	}

	// First declaration wins on every tier, so catalog order is the tie-breaker.
	for i, s := range list {
		for _, p := range s.Paths {
			key := Normalize(p)
			if _, taken := idx.byPath[key]; !taken {
				idx.byPath[key] = i
			}
		}
		for _, k := range s.Keywords {
			key := Normalize(k)
			if _, taken := idx.byKeyword[key]; !taken {
				idx.byKeyword[key] = i
			}
		}

		cands := []string{Normalize(s.ID), Normalize(s.Title)}
		for _, sub := range s.SubServices {
			cands = append(cands, Normalize(sub))
		}
		idx.candidates[i] = cands
	}

	for _, c := range categories {
		idx.byCategory[Normalize(c)] = c
	}

	return idx
}

// Normalize turns a free-text identifier, slug or route path into the key
// used by the lookup maps.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimLeft(s, "/")
	s = strings.TrimPrefix(s, "services/")

	var b strings.Builder
	pendingDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Lookup resolves identifier to a catalog entry. Tiers are tried in order:
// exact id, route path alias, keyword alias, then substring containment over
// ids, titles and sub-services.
func Lookup(identifier string) (Service, MatchTier, bool) {
	key := Normalize(identifier)
	if key == "" {
		return Service{}, TierNone, false
	}

	if i, ok := index.byID[key]; ok {
		return services[i].clone(), TierID, true
	}
	if i, ok := index.byPath[key]; ok {
		return services[i].clone(), TierPath, true
	}
	if i, ok := index.byKeyword[key]; ok {
		return services[i].clone(), TierKeyword, true
	}

	if len(key) < minContainsLength {
		return Service{}, TierNone, false
	}
	for i, cands := range index.candidates {
		for _, c := range cands {
			if strings.Contains(c, key) {
				return services[i].clone(), TierContains, true
			}
		}
	}

	return Service{}, TierNone, false
}

// Get returns the entry with exactly this id
func Get(id string) (Service, bool) {
	i, ok := index.byID[Normalize(id)]
	if !ok {
		return Service{}, false
	}
	return services[i].clone(), true
}

// MatchCategory resolves a category label or slug to its canonical label
func MatchCategory(label string) (string, bool) {
	c, ok := index.byCategory[Normalize(label)]
	return c, ok
}

// Suggest returns up to n entries sharing a word with identifier, falling
// back to the head of the catalog. It backs the "service not found" view.
func Suggest(identifier string, n int) []Service {
	if n <= 0 {
		return nil
	}

	seen := make(map[int]bool)
	var out []Service
	for _, word := range strings.Split(Normalize(identifier), "-") {
		if len(word) < minContainsLength {
			continue
		}
		for i, cands := range index.candidates {
			if seen[i] {
				continue
			}
			for _, c := range cands {
				if strings.Contains(c, word) {
					seen[i] = true
					out = append(out, services[i].clone())
					break
				}
			}
			if len(out) == n {
				return out
			}
		}
	}

	for i := 0; len(out) < n && i < len(services); i++ {
		if !seen[i] {
			out = append(out, services[i].clone())
		}
	}
	return out
}
