package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skoeller/rankscrape/internal/types"
)

// rankingTableSelector marks the one ranking table on a page.
const rankingTableSelector = "table.ruler"

// TableParser drives header normalization, row extraction, and record
// normalization over one page of HTML.
type TableParser struct {
	logger *slog.Logger
}

// NewTableParser creates a new table parser.
func NewTableParser(logger *slog.Logger) *TableParser {
	return &TableParser{
		logger: logger.With("component", "table_parser"),
	}
}

// Parse extracts every data row of the ranking table into records and
// returns them with the page's canonical header schema. A page without the
// ranking table fails with ErrTableNotFound; every cell-level anomaly is
// absorbed into a documented default instead.
func (p *TableParser) Parse(html string, opts Options) ([]*types.RankingRecord, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, &types.ParseError{Err: err}
	}

	table := doc.Find(rankingTableSelector).First()
	if table.Length() == 0 {
		return nil, nil, &types.ParseError{Err: types.ErrTableNotFound}
	}

	rows := table.Find("tr")
	keys := headerSchema(rows.First())

	// The blank column's index must be captured now, before any virtual
	// column shifts positions, or the drop would hit the player column.
	dropFlag := !opts.KeepFlag && indexOf(keys, types.ColFlag) >= 0
	flagIndex := -1
	if dropFlag {
		flagIndex = indexOf(keys, types.ColFlag)
		keys = append(keys[:flagIndex:flagIndex], keys[flagIndex+1:]...)
	}

	keys = insertVirtualColumns(keys)

	// Virtual columns never consume a positional data value.
	zipKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		if !virtualCols[k] {
			zipKeys = append(zipKeys, k)
		}
	}

	var records []*types.RankingRecord
	rows.Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("th").Length() > 0 {
			return // header row
		}
		if tr.Find("td.noruler").Length() > 0 {
			return // pagination marker row
		}
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}

		values := make([]string, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			values = append(values, extractCellText(td))
		})

		if dropFlag && flagIndex < len(values) {
			values = append(values[:flagIndex:flagIndex], values[flagIndex+1:]...)
		}

		// Tolerate ragged markup: pad short rows, truncate long ones.
		for len(values) < len(zipKeys) {
			values = append(values, "")
		}
		if len(values) > len(zipKeys) {
			values = values[:len(zipKeys)]
		}

		rec := newRecord(zipKeys, values, opts)

		if playerCellIndex < tds.Length() {
			if id, ok := extractPlayerID(tds.Eq(playerCellIndex)); ok {
				rec.PlayerID = types.IntOf(id)
			} else {
				p.logger.Debug("no player id", "player", rec.Player)
			}
		}

		deriveRanks(rec, opts.KeepRaw)
		rec.RankWeek = opts.RankWeek

		records = append(records, rec)
	})

	// RankWeek stays in the schema even for an empty page, so CSV headers
	// are consistent across a run.
	if indexOf(keys, types.ColRankWeek) < 0 {
		keys = append(keys, types.ColRankWeek)
	}

	p.logger.Debug("page parsed", "rows", len(records), "columns", len(keys))
	return records, keys, nil
}

// insertVirtualColumns places PreviousRank right after RankChange and
// PlayerId right after Player, falling back to position 1 and the end when
// the anchors are missing.
func insertVirtualColumns(keys []string) []string {
	if indexOf(keys, types.ColPreviousRank) < 0 {
		if i := indexOf(keys, types.ColRankChange); i >= 0 {
			keys = insertAt(keys, i+1, types.ColPreviousRank)
		} else {
			keys = insertAt(keys, 1, types.ColPreviousRank)
		}
	}
	if indexOf(keys, types.ColPlayerID) < 0 {
		if i := indexOf(keys, types.ColPlayer); i >= 0 {
			keys = insertAt(keys, i+1, types.ColPlayerID)
		} else {
			keys = append(keys, types.ColPlayerID)
		}
	}
	return keys
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

func insertAt(keys []string, i int, key string) []string {
	if i > len(keys) {
		i = len(keys)
	}
	keys = append(keys, "")
	copy(keys[i+1:], keys[i:])
	keys[i] = key
	return keys
}
