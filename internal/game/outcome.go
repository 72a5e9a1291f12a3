package game

import (
	"regexp"
	"strings"
)

// ReasonTimeOver marks a round decided by the countdown running out.
const ReasonTimeOver = "Time Over"

// The server reports round results as a human-readable sentence, e.g.
// "Winner - X (Line Completion)" or "Draw". Structured fields would be the
// better contract, but the wording is what the protocol gives us today.
var winnerPattern = regexp.MustCompile(`Winner - (\w+)`)

// Outcome is the parsed classification of a round-result sentence.
type Outcome struct {
	Winner string
	IsDraw bool
	Reason string
}

// ParseOutcome - extracts winner, draw and timeout markers from a
// round-result sentence. Unrecognized sentences yield a zero Outcome rather
// than an error.
func ParseOutcome(result string) Outcome {
	outcome := Outcome{}

	if match := winnerPattern.FindStringSubmatch(result); match != nil {
		outcome.Winner = match[1]
	}

	outcome.IsDraw = strings.Contains(result, "Draw")

	if !strings.Contains(result, "Line Completion") && strings.Contains(result, ReasonTimeOver) {
		outcome.Reason = ReasonTimeOver
	}

	return outcome
}
