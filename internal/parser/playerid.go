package parser

import (
	"net/url"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

var allDigits = regexp.MustCompile(`^\d+$`)

// extractPlayerID pulls the player identifier out of the profile link's
// query string, e.g. href="player.aspx?id=1&player=3423713" yields 3423713.
// Anything else (missing link or href, malformed URL, non-numeric value)
// yields no identifier.
func extractPlayerID(td *goquery.Selection) (int, bool) {
	if td == nil || td.Length() == 0 {
		return 0, false
	}
	href, ok := td.Find("a").First().Attr("href")
	if !ok || href == "" {
		return 0, false
	}
	u, err := url.Parse(href)
	if err != nil {
		return 0, false
	}
	val := u.Query().Get("player")
	if !allDigits.MatchString(val) {
		return 0, false
	}
	id, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return id, true
}
