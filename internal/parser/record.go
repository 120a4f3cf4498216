package parser

import (
	"regexp"
	"strconv"

	"github.com/skoeller/rankscrape/internal/types"
)

// playerCellIndex is the fixed position of the player profile cell in the
// source markup, counted before any column is dropped.
const playerCellIndex = 3

// coercion describes how a column's text is turned into a typed value.
type coercion int

const (
	coerceNone coercion = iota
	coerceInt
	// coerceIntThenDerive marks the rank-change column: after coercion it
	// temporarily holds the previous period's rank and is recomputed into
	// a delta by deriveRanks.
	coerceIntThenDerive
)

// fieldCoercions is the explicit per-field coercion table.
var fieldCoercions = map[string]coercion{
	types.ColRank:        coerceInt,
	types.ColBirthYear:   coerceInt,
	types.ColPoints:      coerceInt,
	types.ColTournaments: coerceInt,
	types.ColRankChange:  coerceIntThenDerive,
}

// RawFields is the fixed order of _raw audit columns in CSV output.
var RawFields = []string{
	"RankChange_raw",
	"Rank_raw",
	"BirthYear_raw",
	"Points_raw",
	"Tournaments_raw",
}

var (
	nonNumeric  = regexp.MustCompile(`[^0-9-]`)
	digitRun    = regexp.MustCompile(`\d+`)
	virtualCols = map[string]bool{
		types.ColPreviousRank: true,
		types.ColPlayerID:     true,
		types.ColRankWeek:     true,
	}
)

// coerceIntCell strips everything but digits and minus signs and parses the
// rest. On failure the original text is kept uncoerced.
func coerceIntCell(text string) types.IntCell {
	num := nonNumeric.ReplaceAllString(text, "")
	if num != "" {
		if n, err := strconv.Atoi(num); err == nil {
			return types.IntCell{Value: n, Text: text, Valid: true}
		}
	}
	return types.TextCell(text)
}

// firstDigitRun returns the first unsigned integer embedded in s.
func firstDigitRun(s string) (int, bool) {
	m := digitRun.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// newRecord zips the non-virtual header keys against one row's extracted
// values and applies the coercion table. values must already be padded or
// truncated to len(zipKeys).
func newRecord(zipKeys, values []string, opts Options) *types.RankingRecord {
	rec := &types.RankingRecord{}
	if opts.KeepRaw {
		rec.Raw = make(map[string]string)
	}

	for i, key := range zipKeys {
		val := values[i]

		switch fieldCoercions[key] {
		case coerceInt, coerceIntThenDerive:
			if opts.KeepRaw {
				rec.Raw[key+"_raw"] = val
			}
			cell := coerceIntCell(val)
			switch key {
			case types.ColRank:
				rec.Rank = cell
			case types.ColRankChange:
				rec.RankChange = cell
			case types.ColBirthYear:
				rec.BirthYear = cell
			case types.ColPoints:
				rec.Points = cell
			case types.ColTournaments:
				rec.Tournaments = cell
			}

		default:
			switch key {
			case types.ColPlayer:
				rec.Player = val
			case types.ColRegion:
				rec.Region = val
			case types.ColClub:
				rec.Club = val
			default:
				rec.Extra = append(rec.Extra, types.ExtraColumn{Name: key, Value: val})
			}
		}
	}

	return rec
}

// deriveRanks resolves the previous-rank number parked in the rank-change
// cell into PreviousRank and recomputes RankChange as the signed delta.
// When either side is unknown, PreviousRank stays empty and RankChange is 0.
func deriveRanks(rec *types.RankingRecord, keepRaw bool) {
	prev, ok := previousRankValue(rec, keepRaw)
	if ok && rec.Rank.Valid {
		rec.PreviousRank = types.IntOf(prev)
		rec.RankChange = types.IntOf(prev - rec.Rank.Value)
		return
	}
	rec.PreviousRank = types.IntCell{}
	rec.RankChange = types.IntOf(0)
}

// previousRankValue reads the previous rank from the raw snapshot when raw
// retention is on, otherwise from the coerced cell. The two paths are kept
// deliberately separate: the raw path scans for the first digit run, the
// coerced path trusts the coercion result and only falls back to scanning.
func previousRankValue(rec *types.RankingRecord, keepRaw bool) (int, bool) {
	if keepRaw {
		return firstDigitRun(rec.Raw["RankChange_raw"])
	}
	if rec.RankChange.Valid {
		return rec.RankChange.Value, true
	}
	return firstDigitRun(rec.RankChange.Text)
}
