package types

import (
	"strconv"
	"strings"
)

// Canonical column names produced by the header normalizer. The source site
// labels its columns in German; these are the normalized equivalents.
const (
	ColRank         = "Rank"
	ColRankChange   = "RankChange"
	ColPreviousRank = "PreviousRank"
	ColPlayer       = "Player"
	ColPlayerID     = "PlayerId"
	ColBirthYear    = "BirthYear"
	ColPoints       = "Points"
	ColRegion       = "Region"
	ColClub         = "Club"
	ColTournaments  = "Tournaments"
	ColFlag         = "Flag"
	ColRankWeek     = "RankWeek"
)

// IntCell holds a table cell that is expected to be numeric. When coercion
// fails the original text is kept and Valid is false, so ragged source data
// survives export unchanged instead of aborting the row.
type IntCell struct {
	Value int
	Text  string
	Valid bool
}

// IntOf returns a valid IntCell for a known integer value.
func IntOf(v int) IntCell {
	return IntCell{Value: v, Text: strconv.Itoa(v), Valid: true}
}

// TextCell returns an IntCell carrying uncoerced text.
func TextCell(s string) IntCell {
	return IntCell{Text: s}
}

// String renders the cell for export: the integer when coercion succeeded,
// otherwise the original text (empty for an absent cell).
func (c IntCell) String() string {
	if c.Valid {
		return strconv.Itoa(c.Value)
	}
	return c.Text
}

// Export returns the cell as a value suitable for a database bind parameter.
func (c IntCell) Export() any {
	if c.Valid {
		return c.Value
	}
	return c.Text
}

// ExtraColumn is a pass-through column the header normalizer did not
// recognize. Order matters: it mirrors the header schema.
type ExtraColumn struct {
	Name  string
	Value string
}

// RankingRecord is one normalized row of the ranking table: one athlete in
// one publication week. It is fully populated by the record normalizer and
// never mutated afterwards.
type RankingRecord struct {
	Rank         IntCell
	RankChange   IntCell // signed delta PreviousRank-Rank; 0 when unknown
	PreviousRank IntCell // prior period's rank; empty when not determinable
	Player       string
	PlayerID     IntCell // from the profile link; empty when absent
	BirthYear    IntCell
	Points       IntCell
	Tournaments  IntCell
	Region       string
	Club         string
	RankWeek     string // publication period, YYYY-WW

	// Extra holds unrecognized pass-through columns in header order.
	Extra []ExtraColumn

	// Raw holds verbatim pre-coercion snapshots (<Field>_raw), populated
	// only when raw retention is requested.
	Raw map[string]string
}

// Field returns the export value for a header-schema column name. Unknown
// names resolve against the raw snapshots and pass-through columns, and
// finally to the empty string.
func (r *RankingRecord) Field(name string) string {
	switch name {
	case ColRank:
		return r.Rank.String()
	case ColRankChange:
		return r.RankChange.String()
	case ColPreviousRank:
		return r.PreviousRank.String()
	case ColPlayer:
		return r.Player
	case ColPlayerID:
		return r.PlayerID.String()
	case ColBirthYear:
		return r.BirthYear.String()
	case ColPoints:
		return r.Points.String()
	case ColTournaments:
		return r.Tournaments.String()
	case ColRegion:
		return r.Region
	case ColClub:
		return r.Club
	case ColRankWeek:
		return r.RankWeek
	}
	if strings.HasSuffix(name, "_raw") {
		return r.Raw[name]
	}
	for _, e := range r.Extra {
		if e.Name == name {
			return e.Value
		}
	}
	return ""
}
