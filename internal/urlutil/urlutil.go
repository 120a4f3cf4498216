// Package urlutil holds small URL and filename helpers for paginated scrapes.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SetQueryParams returns rawURL with the given query parameters set,
// leaving every other parameter untouched. Used to rewrite the page number
// and page size while preserving the category selection.
func SetQueryParams(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRun       = regexp.MustCompile(`-{2,}`)
)

// Slugify cleans a table caption into a safe filename fragment: accents are
// folded to ASCII, whitespace and unsafe characters become dashes, and dash
// runs collapse. An empty result falls back to "UnknownCategory".
func Slugify(text string) string {
	if text == "" {
		return "UnknownCategory"
	}

	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, text); err == nil {
		text = folded
	}

	var ascii strings.Builder
	for _, r := range text {
		if r < 128 {
			ascii.WriteRune(r)
		}
	}

	s := whitespaceRun.ReplaceAllString(ascii.String(), "-")
	s = unsafeChars.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if s == "" {
		return "UnknownCategory"
	}
	return s
}
