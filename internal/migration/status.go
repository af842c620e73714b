package migration

import "strings"

// Keyword families mapping free-text prefix names and comments to target
// statuses. Order matters: the first family with a hit wins.
var statusFamilies = []struct {
	status   string
	keywords []string
}{
	{"reserved", []string{"reserved", "hold", "future", "planned"}},
	{"deprecated", []string{"deprecated", "obsolete", "old", "inactive", "decommissioned"}},
	{"container", []string{"container", "parent", "supernet", "aggregate"}},
	{"container", []string{"available", "unused", "free", "[here be dragons", "[create network here]", "unallocated"}},
	{"active", []string{"in use", "used", "active", "production", "allocated"}},
}

// ClassifyPrefixStatus derives a prefix status from its Racktables name
// and comment. The labels are heuristic: a miss is never an error, it
// just falls through to "active" for any named prefix. A prefix with no
// name and no comment gets emptyDefault, which is configurable because
// different Racktables installs used blank networks to mean different
// things.
func ClassifyPrefixStatus(name, comment, emptyDefault string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	c := strings.ToLower(strings.TrimSpace(comment))

	if n == "" && c == "" {
		if emptyDefault != "" {
			return emptyDefault
		}
		return "container"
	}

	for _, family := range statusFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(n, kw) || strings.Contains(c, kw) {
				return family.status
			}
		}
	}
	return "active"
}
