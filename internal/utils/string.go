package utils

import "strings"

// Indent prefixes each line of the given text with the given indentation.
func Indent(text, indent string) string {
	if len(strings.TrimSpace(text)) == 0 {
		return indent
	}
	result := ""
	for _, line := range strings.SplitAfter(text, "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			result += line
			continue
		}
		result += indent + line
	}
	return result
}
