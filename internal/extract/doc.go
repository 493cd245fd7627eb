// Package extract holds the card locator and the per-field heuristics used to turn
// irregular listing markup into record fields.
//
// Every extractor is a pure function of a card selection (and the page URL where a
// link is resolved). None of them fails: absent or malformed markup yields a sentinel
// value or ok=false.
package extract

// Sentinel values
const (
	NotSpecified  = "Не указано"
	NoURL         = "N/A"
	OtherCategory = "Другое"
)
