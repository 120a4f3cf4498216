package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// weekPattern matches the site's "WW-YYYY" publication label.
var weekPattern = regexp.MustCompile(`^(\d{1,2})-(\d{4})$`)

// chosenWeekXPath locates the selected publication inside the ASP.NET
// "chosen" replacement widget, which renders the value outside the <select>.
const chosenWeekXPath = `//div[@id="cphPage_cphPage_cphPage_dlPublication_chosen"]//a[contains(@class,"chosen-single")]/span`

// ParseRankWeek finds the publication week on a ranking page and returns it
// normalized to YYYY-WW. It tries the ranking date span, then the selected
// publication option, then the chosen widget.
func ParseRankWeek(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	if w, ok := normalizeWeek(doc.Find(".rankingdate").First().Text()); ok {
		return w, true
	}
	if w, ok := normalizeWeek(doc.Find("select.publication option[selected]").First().Text()); ok {
		return w, true
	}

	node, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	if span, err := htmlquery.Query(node, chosenWeekXPath); err == nil && span != nil {
		if w, ok := normalizeWeek(htmlquery.InnerText(span)); ok {
			return w, true
		}
	}

	return "", false
}

// normalizeWeek turns a raw "(WW-YYYY)" label into "YYYY-WW" with the week
// zero-padded to two digits.
func normalizeWeek(raw string) (string, bool) {
	raw = strings.Trim(strings.TrimSpace(raw), "()")
	m := weekPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	week, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%02d", m[2], week), true
}

// ExtractCaption returns the ranking table's caption, whitespace-normalized.
func ExtractCaption(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	caption := doc.Find(rankingTableSelector).First().Find("caption").First()
	if caption.Length() == 0 {
		return "", false
	}
	text := normalizeWS(caption.Text())
	if text == "" {
		return "", false
	}
	return text, true
}
