package interact

import (
	"regexp"
	"strings"

	"autoupgrader/internal/app/ports"

	"github.com/agnivade/levenshtein"
)

// Matcher is one identity-resolution rule for surface elements.
type Matcher interface {
	Name() string
	Match(el ports.Element) bool
}

type exactID struct {
	id string
}

// ExactID matches the element's external data id.
func ExactID(id string) Matcher {
	return exactID{id: strings.TrimSpace(id)}
}

func (m exactID) Name() string { return "exact_id" }

func (m exactID) Match(el ports.Element) bool {
	return m.id != "" && el.DataID == m.id
}

type contentPattern struct {
	re *regexp.Regexp
}

// ContentPattern matches the element's text or markup against re.
func ContentPattern(re *regexp.Regexp) Matcher {
	return contentPattern{re: re}
}

// IDToken matches elements whose markup mentions id as a whole word.
func IDToken(id string) Matcher {
	id = strings.TrimSpace(id)
	if id == "" {
		return contentPattern{}
	}
	return contentPattern{re: regexp.MustCompile(`\b` + regexp.QuoteMeta(id) + `\b`)}
}

func (m contentPattern) Name() string { return "content_pattern" }

func (m contentPattern) Match(el ports.Element) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(el.Text) || m.re.MatchString(el.Markup)
}

type fuzzyLabel struct {
	target      string
	maxDistance int
}

// FuzzyLabel tolerates small typos or spacing differences in a visible label.
func FuzzyLabel(target string, maxDistance int) Matcher {
	if maxDistance < 0 {
		maxDistance = 0
	}
	return fuzzyLabel{target: normalizeLabel(target), maxDistance: maxDistance}
}

func (m fuzzyLabel) Name() string { return "fuzzy_label" }

func (m fuzzyLabel) Match(el ports.Element) bool {
	label := normalizeLabel(el.Text)
	if m.target == "" || label == "" {
		return false
	}
	return levenshtein.ComputeDistance(label, m.target) <= m.maxDistance
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Resolve runs matchers in order and returns the first element the earliest
// matcher accepts.
func Resolve(elements []ports.Element, matchers ...Matcher) (ports.Element, Matcher, bool) {
	for _, m := range matchers {
		if m == nil {
			continue
		}
		for _, el := range elements {
			if m.Match(el) {
				return el, m, true
			}
		}
	}
	return ports.Element{}, nil, false
}
