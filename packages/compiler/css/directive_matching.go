package css

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Capture groups of selectorRegexp. Go's regexp has no backreferences, so each
// quoting style of an attribute value gets its own group.
const (
	groupNot = iota + 1
	groupTag
	groupPrefix
	groupAttribute
	groupDoubleQuoted
	groupSingleQuoted
	groupUnquoted
	groupNotEnd
	groupSeparator
)

var selectorRegexp = regexp.MustCompile(
	`(\:not\()|` +
		`(([\.\#]?)[-\w]+)|` +
		// "-" must come first in the attribute name class
		`(?:\[([-.\w*\\$]+)(?:="([^\]"]*)"|='([^\]']*)'|=([^\]"'\s]*))?\])|` +
		`(\))|` +
		`(\s*,\s*)`,
)

// CssSelector is one compound selector of a selector list.
type CssSelector struct {
	Element      string
	ClassNames   []string
	Attrs        []string // flattened name/value pairs
	NotSelectors []*CssSelector
}

// ParseCssSelector parses a comma separated selector list.
func ParseCssSelector(selector string) ([]*CssSelector, error) {
	var results []*CssSelector
	addResult := func(sel *CssSelector) {
		if len(sel.NotSelectors) > 0 && sel.Element == "" && len(sel.ClassNames) == 0 && len(sel.Attrs) == 0 {
			sel.Element = "*"
		}
		results = append(results, sel)
	}

	cssSelector := &CssSelector{}
	current := cssSelector
	inNot := false

	for _, match := range selectorRegexp.FindAllStringSubmatchIndex(selector, -1) {
		group := func(i int) (string, bool) {
			if match[2*i] < 0 {
				return "", false
			}
			return selector[match[2*i]:match[2*i+1]], true
		}

		if _, ok := group(groupNot); ok {
			if inNot {
				return nil, errors.New("Nesting :not in a selector is not allowed")
			}
			inNot = true
			current = &CssSelector{}
			cssSelector.NotSelectors = append(cssSelector.NotSelectors, current)
		}

		if tag, ok := group(groupTag); ok {
			prefix, _ := group(groupPrefix)
			switch prefix {
			case "#":
				current.AddAttribute("id", tag[1:])
			case ".":
				current.AddClassName(tag[1:])
			default:
				current.Element = tag
			}
		}

		if attribute, ok := group(groupAttribute); ok {
			name, err := UnescapeAttribute(attribute)
			if err != nil {
				return nil, err
			}
			value := ""
			for _, g := range []int{groupDoubleQuoted, groupSingleQuoted, groupUnquoted} {
				if v, ok := group(g); ok {
					value = v
					break
				}
			}
			current.AddAttribute(name, value)
		}

		if _, ok := group(groupNotEnd); ok {
			inNot = false
			current = cssSelector
		}

		if _, ok := group(groupSeparator); ok {
			if inNot {
				return nil, errors.New("Multiple selectors in :not are not supported")
			}
			addResult(cssSelector)
			cssSelector = &CssSelector{}
			current = cssSelector
		}
	}

	addResult(cssSelector)
	return results, nil
}

// UnescapeAttribute removes `\` escapes from an attribute name. An unescaped
// `$` is rejected.
func UnescapeAttribute(attr string) (string, error) {
	var b strings.Builder
	escaping := false
	for _, char := range attr {
		if char == '\\' {
			escaping = true
			continue
		}
		if char == '$' && !escaping {
			return "", errors.Newf(`Error in attribute selector "%s". Unescaped "$" is not supported. Please escape with "\$".`, attr)
		}
		escaping = false
		b.WriteRune(char)
	}
	return b.String(), nil
}

// AddAttribute records an attribute; values are lower-cased.
func (cs *CssSelector) AddAttribute(name, value string) {
	cs.Attrs = append(cs.Attrs, name, strings.ToLower(value))
}

// AddClassName records a lower-cased class name.
func (cs *CssSelector) AddClassName(name string) {
	cs.ClassNames = append(cs.ClassNames, strings.ToLower(name))
}

// GetAttrs returns the attributes the selector requires, with the class names
// folded into a single `class` attribute first.
func (cs *CssSelector) GetAttrs() []string {
	var result []string
	if len(cs.ClassNames) > 0 {
		result = append(result, "class", strings.Join(cs.ClassNames, " "))
	}
	return append(result, cs.Attrs...)
}
