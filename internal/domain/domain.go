package domain

import (
	"fmt"
	"time"
)

// Audience selects the presentation style of a summary. The label is passed
// through verbatim into the prompt.
type Audience string

const (
	AudienceBeginnerFriendly Audience = "Beginner-Friendly"
	AudienceTechnical        Audience = "Technical"
	AudienceConcise          Audience = "Concise"
	AudienceDetailed         Audience = "Detailed"
)

const (
	MinSummaryLength = 3
	MaxSummaryLength = 10

	DefaultSummaryLength = 5
)

// Audiences lists the labels in the order they are shown in the UI.
var Audiences = []Audience{
	AudienceBeginnerFriendly,
	AudienceTechnical,
	AudienceConcise,
	AudienceDetailed,
}

func ParseAudience(s string) (Audience, error) {
	for _, a := range Audiences {
		if string(a) == s {
			return a, nil
		}
	}

	return "", fmt.Errorf("unknown audience %q", s)
}

// SummaryRequest carries the extracted paper text together with the two user
// knobs. Length is a sentence count in [MinSummaryLength, MaxSummaryLength];
// it is validated at the input boundary and trusted downstream.
type SummaryRequest struct {
	Text     string
	Audience Audience
	Length   int
}

// SummaryRecord is one completed summary kept for the recent-summaries panel.
type SummaryRecord struct {
	ID        int64
	URL       string
	Audience  Audience
	Length    int
	Summary   string
	CreatedAt time.Time
}
