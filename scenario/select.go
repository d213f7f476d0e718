package scenario

import (
	"regexp"
	"strings"
)

// globRegexp matches the whole of a name against glob, where "*" stands for
// any run of characters and everything else is literal.
func globRegexp(glob string) *regexp.Regexp {
	parts := strings.Split(glob, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// Select returns the scenarios whose names match patterns, in file order.
//
// Patterns are applied left to right to each name, starting from "not
// selected": "foo" selects a matching name and "!foo" deselects it. No
// patterns selects everything.
func (c Config) Select(patterns []string) []Scenario {
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	type rule struct {
		selects bool
		re      *regexp.Regexp
	}
	rules := make([]rule, len(patterns))
	for i, p := range patterns {
		glob, negated := strings.CutPrefix(p, "!")
		rules[i] = rule{selects: !negated, re: globRegexp(glob)}
	}

	var selected []Scenario
	for _, s := range c.Scenarios {
		in := false
		for _, r := range rules {
			if r.re.MatchString(s.Name) {
				in = r.selects
			}
		}
		if in {
			selected = append(selected, s)
		}
	}
	return selected
}
