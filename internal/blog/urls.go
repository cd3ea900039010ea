package blog

import (
	"strings"

	"mvdan.cc/xurls/v2"
)

// ExtractURL returns the first http(s) URL found in free text.
func ExtractURL(text string) (string, bool) {
	re, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return "", false
	}

	found := strings.TrimSpace(re.FindString(text))

	return found, found != ""
}
