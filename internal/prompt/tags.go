package prompt

import (
	"regexp"
	"strings"
)

var tagSepRe = regexp.MustCompile(`[,\s]+`)

// ParseTags splits a free-form tag input on commas and whitespace and
// lowercases each token. Duplicates are kept in input order.
func ParseTags(input string) []string {
	parts := tagSepRe.Split(input, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NormalizeTags applies ParseTags to every element so a submitted list
// holds the same tokens a single input string would have produced.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, ParseTags(t)...)
	}
	return out
}
