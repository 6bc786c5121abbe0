package openrouter

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenPattern  = regexp.MustCompile("```(?:json|JSON)?\\s*")
	jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

// cleanJSON strips markdown code fences and any prose around the outermost JSON
// object. When no valid object can be found the cleaned text is returned as is
// so the caller's decoder reports it.
func cleanJSON(content string) []byte {
	content = strings.TrimSpace(fenceOpenPattern.ReplaceAllString(content, ""))

	if json.Valid([]byte(content)) {
		return []byte(content)
	}

	if match := jsonObjectPattern.FindString(content); match != "" && json.Valid([]byte(match)) {
		return []byte(match)
	}

	return []byte(content)
}
