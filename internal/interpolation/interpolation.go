package interpolation

import (
	"regexp"
	"sort"
)

// patterns to detect interpolation variables and markup in game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\[\[[^\[\]]*\]\]`),                     // [[col:red]], [[/col]]
	regexp.MustCompile(`\{\{[^{}]*\}\}`),                       // {{tr:faction}}
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %f, %2d, etc.
	regexp.MustCompile(`%%`),                                   // escaped percent literal
}

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// Variables returns the interpolation variables of text in order of
// appearance. Overlapping matches keep the earliest, longest one.
func Variables(text string) []string {
	var all []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, varMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})

	var out []string
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			out = append(out, m.value)
			lastEnd = m.end
		}
	}
	return out
}

// Diff compares the variables of a source text and its translation as
// multisets. It returns the variables the translation lost and the ones it
// gained; both are nil when the texts agree. Order does not matter, since
// translations may reorder placeholders.
func Diff(source, translated string) (missing, extra []string) {
	counts := make(map[string]int)
	for _, v := range Variables(source) {
		counts[v]++
	}
	for _, v := range Variables(translated) {
		counts[v]--
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for n := counts[k]; n > 0; n-- {
			missing = append(missing, k)
		}
		for n := counts[k]; n < 0; n++ {
			extra = append(extra, k)
		}
	}
	return missing, extra
}
