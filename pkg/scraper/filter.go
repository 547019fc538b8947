package scraper

import "strings"

// ExtensionFilter accepts filenames by suffix. Matching is case-insensitive
// and requires the configured suffix to include the leading dot, so ".ex4"
// matches "Bot.EX4" but not "Bot.ex45". An empty filter accepts everything.
type ExtensionFilter struct {
	exts []string
}

// NewExtensionFilter builds a filter from configured extensions. Entries are
// lowercased and given a leading dot when missing; empty entries are dropped.
func NewExtensionFilter(types []string) *ExtensionFilter {
	f := &ExtensionFilter{}
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		f.exts = append(f.exts, t)
	}
	return f
}

// Match reports whether the filename passes the filter. It is a pure
// predicate: no state, same answer for the same input every time.
func (f *ExtensionFilter) Match(filename string) bool {
	if len(f.exts) == 0 {
		return true
	}
	lower := strings.ToLower(filename)
	for _, ext := range f.exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Extensions returns the normalized extension set.
func (f *ExtensionFilter) Extensions() []string {
	out := make([]string, len(f.exts))
	copy(out, f.exts)
	return out
}
