package parser

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// cellStrategy tries to produce the text value of one data cell. A false
// return means "not my cell", falling through to the next strategy.
type cellStrategy func(td *goquery.Selection) (string, bool)

// cellStrategies is evaluated top to bottom with short-circuit. Order is
// load-bearing: the rank-change arrow cell carries its real value (the
// previous rank) in the title attribute, not in the visible text.
var cellStrategies = []cellStrategy{
	previousRankFromTitle,
	anchorText,
	plainText,
}

var (
	rankChangeClasses = []string{"rank_equal", "rank_up", "rank_down"}
	prevRankPattern   = regexp.MustCompile(`Previous rank:\s*(\d+)`)
)

// previousRankFromTitle handles the arrow cell: its visible text is a glyph,
// the previous rank number hides in the title tooltip.
func previousRankFromTitle(td *goquery.Selection) (string, bool) {
	marked := false
	for _, c := range rankChangeClasses {
		if td.HasClass(c) {
			marked = true
			break
		}
	}
	if !marked {
		return "", false
	}
	title, _ := td.Attr("title")
	m := prevRankPattern.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func anchorText(td *goquery.Selection) (string, bool) {
	a := td.Find("a").First()
	if a.Length() == 0 {
		return "", false
	}
	return normalizeWS(a.Text()), true
}

func plainText(td *goquery.Selection) (string, bool) {
	return normalizeWS(td.Text()), true
}

// extractCellText applies the strategy list to one cell. A missing cell
// yields the empty string, never an error.
func extractCellText(td *goquery.Selection) string {
	if td == nil || td.Length() == 0 {
		return ""
	}
	for _, strategy := range cellStrategies {
		if v, ok := strategy(td); ok {
			return v
		}
	}
	return ""
}
