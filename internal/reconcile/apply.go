package reconcile

import (
	"fmt"
	"time"

	"rewatch/internal/catalog"
	"rewatch/internal/streaming"
)

// applyResolution merges res into entry and reports whether anything changed.
// A match replaces the streaming state and stamps the check date; otherwise
// existing flags are kept and only the native flag is added.
func applyResolution(entry *catalog.Entry, res streaming.Resolution, now time.Time) bool {
	if res.Outcome == streaming.OutcomeMatched {
		changed := !entry.Streaming.Equal(res.Streaming) || entry.LastStreamingCheck != catalog.FormatDate(now)
		entry.Streaming = res.Streaming.Clone()
		entry.MarkChecked(now)
		return changed
	}
	next := withNative(entry.Streaming, res.Native)
	changed := !entry.Streaming.Equal(next)
	entry.Streaming = next
	return changed
}

func refreshOutcome(res streaming.Resolution) Outcome {
	switch res.Outcome {
	case streaming.OutcomeMatched:
		return OutcomeUpdated
	case streaming.OutcomeNotFound:
		return OutcomeNotFound
	default:
		return OutcomeUnresolved
	}
}

func describeResolution(res streaming.Resolution) string {
	switch {
	case res.Candidate != nil && res.Candidate.ReleaseYear > 0:
		return fmt.Sprintf("matched %q (%d)", res.Candidate.Title, res.Candidate.ReleaseYear)
	case res.Candidate != nil:
		return fmt.Sprintf("matched %q", res.Candidate.Title)
	case res.Err != nil:
		return res.Err.Error()
	default:
		return string(res.Outcome)
	}
}
