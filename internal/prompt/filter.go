package prompt

import (
	"sort"
	"strings"
)

// Filter selects prompts from an in-memory list. Zero-value fields match
// everything; set fields combine with AND.
type Filter struct {
	Text   string
	Tag    string
	AITool string
}

func (f Filter) Match(p Prompt) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Text)); q != "" && !matchText(p, q) {
		return false
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" && !hasTag(p, tag) {
		return false
	}
	if tool := strings.TrimSpace(f.AITool); tool != "" && (p.AITool == nil || *p.AITool != tool) {
		return false
	}
	return true
}

func matchText(p Prompt, q string) bool {
	if strings.Contains(strings.ToLower(p.Content), q) || strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, s := range []*string{p.Context, p.Description} {
		if s != nil && strings.Contains(strings.ToLower(*s), q) {
			return true
		}
	}
	return false
}

func hasTag(p Prompt, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Apply keeps the prompts matching f, preserving order.
func (f Filter) Apply(list []Prompt) []Prompt {
	out := make([]Prompt, 0, len(list))
	for _, p := range list {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// DistinctTags lists every tag in use, sorted.
func DistinctTags(list []Prompt) []string {
	seen := map[string]struct{}{}
	for _, p := range list {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// DistinctTools lists every AI tool label in use, sorted.
func DistinctTools(list []Prompt) []string {
	seen := map[string]struct{}{}
	for _, p := range list {
		if p.AITool != nil {
			seen[*p.AITool] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
