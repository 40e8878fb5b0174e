package summarizer

import (
	"context"

	"papersum/internal/domain"
)

const errorPrefix = "❌ Error: "

// Summarizer produces a single summary for one extracted paper.
type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (string, error)
}

// DisplayText folds a tagged summary outcome into the one string the page
// shows. The error prefix matches the legacy user-visible text exactly; it is
// presentation only and is never used to signal failure between components.
func DisplayText(summary string, err error) string {
	if err != nil {
		return errorPrefix + err.Error()
	}

	return summary
}
