package config

import (
	"regexp"
	"strings"

	"github.com/emberdata/powermerge/pkg/errors"
)

// CategoryRule maps raw text onto one enumerated category. A rule matches
// either a literal (exact, case-insensitive) or a keyword list compiled into
// a case-insensitive whole-word regex.
type CategoryRule struct {
	// Category is the canonical value assigned when the rule matches.
	Category string `yaml:"category"`

	// Match is a literal to compare case-insensitively. Mutually
	// exclusive with Keywords.
	Match string `yaml:"match,omitempty"`

	// Keywords are compiled into a case-insensitive whole-word pattern.
	Keywords []string `yaml:"keywords,omitempty"`

	re *regexp.Regexp
}

// RuleList is an ordered list of category rules. Rules are evaluated
// top-to-bottom and a later matching rule overrides an earlier one: order
// is significant and preserved exactly as configured. This is an explicit
// ordered array, never a map.
type RuleList []CategoryRule

// Rules bundles the per-field rule lists.
type Rules struct {
	Fueltype   RuleList `yaml:"fueltype"`
	Technology RuleList `yaml:"technology"`
	Set        RuleList `yaml:"set"`
}

// Compile prepares all rule lists. A malformed keyword pattern is a fatal
// configuration error.
func (r *Rules) Compile() error {
	for name, rl := range map[string]RuleList{
		"fueltype":   r.Fueltype,
		"technology": r.Technology,
		"set":        r.Set,
	} {
		for i := range rl {
			if err := rl[i].compile(); err != nil {
				return errors.NewConfigError("rules."+name,
					"rule for category "+rl[i].Category, err)
			}
		}
	}
	return nil
}

func (cr *CategoryRule) compile() error {
	if len(cr.Keywords) == 0 {
		return nil
	}
	quoted := make([]string, len(cr.Keywords))
	for i, kw := range cr.Keywords {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(kw)))
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return err
	}
	cr.re = re
	return nil
}

// matches reports whether the rule matches the given raw text.
func (cr *CategoryRule) matches(text string) bool {
	if text == "" {
		return false
	}
	if cr.Match != "" {
		return strings.EqualFold(strings.TrimSpace(text), cr.Match)
	}
	if cr.re != nil {
		return cr.re.MatchString(text)
	}
	return false
}

// Resolve evaluates the rule list against one or more search texts in
// configured order. The last rule that matches any text wins, so categories
// appearing later in the list override earlier matches.
func (rl RuleList) Resolve(texts ...string) (string, bool) {
	var category string
	var found bool
	for i := range rl {
		for _, text := range texts {
			if rl[i].matches(text) {
				category = rl[i].Category
				found = true
				break
			}
		}
	}
	return category, found
}

// Categories returns the distinct categories in configured order.
func (rl RuleList) Categories() []string {
	seen := make(map[string]struct{}, len(rl))
	out := make([]string, 0, len(rl))
	for i := range rl {
		if _, dup := seen[rl[i].Category]; dup {
			continue
		}
		seen[rl[i].Category] = struct{}{}
		out = append(out, rl[i].Category)
	}
	return out
}
