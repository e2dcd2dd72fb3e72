package match

import (
	"path/filepath"
	"strings"

	"github.com/driverec/reconcile-api/internal/models"
)

// BestMatch picks the single best candidate for target. Rules apply in
// strict priority order and the first hit wins; ties keep the order the
// candidates arrived in:
//
//  1. exact: normalized stems are equal and, when the target has an
//     extension, the extensions match case-insensitively
//  2. first candidate whose normalized stem is not an excluded suffix
//  3. first candidate of the list
//
// The second argument reports whether a candidate was selected; it is
// false only for an empty candidate list.
func BestMatch(target string, candidates []models.Candidate, exclude SuffixSet) (models.Candidate, bool) {
	if len(candidates) == 0 {
		return models.Candidate{}, false
	}

	targetStem := Normalize(Stem(target))
	targetExt := filepath.Ext(target)

	for _, c := range candidates {
		if Normalize(Stem(c.Name)) != targetStem {
			continue
		}
		if targetExt == "" || strings.EqualFold(filepath.Ext(c.Name), targetExt) {
			return c, true
		}
	}

	for _, c := range candidates {
		if !exclude.Excludes(Normalize(Stem(c.Name))) {
			return c, true
		}
	}

	// Everything is an administrative copy; an excluded candidate still
	// beats reporting the file as missing.
	return candidates[0], true
}
