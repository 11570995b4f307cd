package detect

import (
	"regexp"
	"strings"
)

// Repo-name suffixes that say nothing about the app itself.
var repoSuffixes = []string{"-master", "-main", "-app", "-cli"}

var separatorRe = regexp.MustCompile(`[_\s]+`)

// NormalizeName derives the managed-item name from a directory basename:
// lowercase, separators collapsed to dashes, common repo suffixes
// stripped. "My_Tool-master" becomes "my-tool".
func NormalizeName(base string) string {
	name := strings.ToLower(strings.TrimSpace(base))
	name = separatorRe.ReplaceAllString(name, "-")

	for _, suffix := range repoSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	return strings.Trim(name, "-")
}
