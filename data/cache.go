package data

import "time"

// IsFresh reports whether the cache age is within [0, ttl). A negative age (clock
// moved backwards) counts as stale.
func (c *ProviderCache) IsFresh(now time.Time, ttl time.Duration) bool {
	if c == nil {
		return false
	}
	age := now.Sub(c.CachedAt)
	return age >= 0 && age < ttl
}

func (c *ProviderCache) Find(externalID string) (SearchResult, bool) {
	if c == nil || externalID == "" {
		return SearchResult{}, false
	}
	for _, r := range c.Results {
		if r.ExternalID == externalID {
			return r, true
		}
	}
	return SearchResult{}, false
}

// FirstQuery is the most specific query, the one reused for continuation pages.
func (c *ProviderCache) FirstQuery() string {
	if c == nil || len(c.Queries) == 0 {
		return ""
	}
	return c.Queries[0]
}

// MergeResults concatenates result lists dropping repeated external ids.
// The first occurrence wins and keeps its position.
func MergeResults(lists ...[]SearchResult) []SearchResult {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	merged := make([]SearchResult, 0, total)
	seen := make(map[string]bool, total)
	for _, l := range lists {
		for _, r := range l {
			if r.ExternalID == "" || seen[r.ExternalID] {
				continue
			}
			seen[r.ExternalID] = true
			merged = append(merged, r)
		}
	}
	return merged
}
