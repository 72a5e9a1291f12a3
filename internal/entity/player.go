package entity

import "strings"

const maxDisplayNameLength = 9

// Player identifies one side of the match.
type Player struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RoundResult records the outcome of a single finished round.
// Reason is "Time Over" when the round ended on the clock, empty otherwise.
type RoundResult struct {
	Round  int    `json:"round"`
	Winner string `json:"winner,omitempty"`
	IsDraw bool   `json:"isDraw"`
	Reason string `json:"reason,omitempty"`
}

// MatchSummary aggregates the round results of a finished match.
type MatchSummary struct {
	XWins int `json:"xWins"`
	OWins int `json:"oWins"`
	Draws int `json:"draws"`
}

// Summarize - tallies wins and draws over a round-result list.
func Summarize(results []RoundResult) MatchSummary {
	var summary MatchSummary

	for _, result := range results {
		switch {
		case result.Winner == PlayerX:
			summary.XWins++
		case result.Winner == PlayerO:
			summary.OWins++
		case result.Winner == "" || result.IsDraw:
			summary.Draws++
		}
	}

	return summary
}

// FormatName - returns the first word of a player name, truncated for the
// timer caption. Truncation counts runes so multi-byte names are not split
// mid-character.
func FormatName(name string) string {
	firstName, _, _ := strings.Cut(name, " ")

	runes := []rune(firstName)
	if len(runes) > maxDisplayNameLength {
		return string(runes[:maxDisplayNameLength])
	}
	return firstName
}
