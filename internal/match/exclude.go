package match

import "strings"

// SuffixSet holds lowercased exclusion suffixes identifying administrative
// duplicate copies (e.g. "_backup"). It only ever deprioritizes candidates
// during selection; it never removes them from search results.
type SuffixSet []string

// NewSuffixSet lowercases and trims the configured suffixes, dropping
// empty entries.
func NewSuffixSet(suffixes []string) SuffixSet {
	set := make(SuffixSet, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set = append(set, s)
		}
	}
	return set
}

// Excludes reports whether stem (already normalized, no extension) ends
// with any configured suffix.
func (set SuffixSet) Excludes(stem string) bool {
	for _, suffix := range set {
		if strings.HasSuffix(stem, suffix) {
			return true
		}
	}
	return false
}
