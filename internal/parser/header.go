package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skoeller/rankscrape/internal/types"
)

// canonicalNames maps the site's header labels (lowercased) to canonical
// column names. The second occurrence of the rank header, produced by
// colspan expansion, is the rank-change arrow column. Unrecognized labels
// pass through unchanged.
var canonicalNames = map[string]string{
	"rang":        types.ColRank,
	"rang#2":      types.ColRankChange,
	"spieler":     types.ColPlayer,
	"spieler/in":  types.ColPlayer,
	"gjahr":       types.ColBirthYear,
	"geburtsjahr": types.ColBirthYear,
	"punkte":      types.ColPoints,
	"region":      types.ColRegion,
	"verein":      types.ColClub,
	"turniere":    types.ColTournaments,
	"flag":        types.ColFlag,
}

// expandHeaderCell expands one header cell into one label per column it
// spans: the base label, then base#2, base#3, ... so labels stay positionally
// aligned with the data cells below. An empty header is the blank UI column
// and gets the Flag sentinel.
func expandHeaderCell(th *goquery.Selection) []string {
	text := normalizeWS(th.Text())
	if text == "" {
		text = types.ColFlag
	}

	colspan := 1
	if v, ok := th.Attr("colspan"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
			colspan = n
		}
	}

	out := []string{text}
	for i := 2; i <= colspan; i++ {
		out = append(out, fmt.Sprintf("%s#%d", text, i))
	}
	return out
}

// headerSchema expands and canonicalizes the header row. Deterministic and
// never fails: unknown headers come back as their literal text.
func headerSchema(headerRow *goquery.Selection) []string {
	var raw []string
	headerRow.Find("th").Each(func(_ int, th *goquery.Selection) {
		raw = append(raw, expandHeaderCell(th)...)
	})

	keys := make([]string, len(raw))
	for i, h := range raw {
		if canon, ok := canonicalNames[strings.ToLower(h)]; ok {
			keys[i] = canon
		} else {
			keys[i] = h
		}
	}
	return keys
}
