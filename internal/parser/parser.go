// Package parser turns one page of ranking HTML into normalized records.
// It is pure with respect to IO: input is an already-fetched HTML string.
package parser

import (
	"regexp"
	"strings"
)

// Options control one parse run. RankWeek is captured from the first page
// of a run and reused verbatim for every later page.
type Options struct {
	// KeepFlag retains the blank UI column instead of dropping it.
	KeepFlag bool

	// KeepRaw snapshots the pre-coercion text of numeric fields into
	// <Field>_raw entries for auditing.
	KeepRaw bool

	// RankWeek is the publication period (YYYY-WW) stamped on every record.
	RankWeek string
}

var wsRun = regexp.MustCompile(`\s+`)

// normalizeWS collapses whitespace runs to single spaces and trims.
func normalizeWS(s string) string {
	return strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
}
