package view

import (
	"regexp"
	"strings"
)

var hyphenateRegexp = regexp.MustCompile(`[a-z][A-Z]`)

// ParseStyle parses a style attribute value into a flat list of property and
// value pairs: `width:100px;height:200px` becomes
// `["width", "100px", "height", "200px"]`. Semicolons and colons inside
// parentheses or quotes are not treated as separators.
func ParseStyle(value string) []string {
	styles := []string{}
	parenDepth := 0
	var quote byte
	valueStart := 0
	propStart := 0
	currentProp := ""

	for i := 0; i < len(value); i++ {
		switch ch := value[i]; ch {
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '\'', '"':
			if quote == 0 {
				quote = ch
			} else if quote == ch && (i == 0 || value[i-1] != '\\') {
				quote = 0
			}
		case ':':
			if currentProp == "" && parenDepth == 0 && quote == 0 {
				currentProp = hyphenate(strings.TrimSpace(value[propStart:i]))
				valueStart = i + 1
			}
		case ';':
			if currentProp != "" && valueStart > 0 && parenDepth == 0 && quote == 0 {
				styles = append(styles, currentProp, strings.TrimSpace(value[valueStart:i]))
				propStart = i + 1
				valueStart = 0
				currentProp = ""
			}
		}
	}

	if currentProp != "" && valueStart > 0 {
		styles = append(styles, currentProp, strings.TrimSpace(value[valueStart:]))
	}
	return styles
}

// hyphenate turns camelCase style names into their dash-case form.
func hyphenate(value string) string {
	return strings.ToLower(hyphenateRegexp.ReplaceAllStringFunc(value, func(m string) string {
		return m[:1] + "-" + m[1:]
	}))
}

// ParseClasses splits a class attribute value into its class names.
func ParseClasses(value string) []string {
	return strings.Fields(value)
}
