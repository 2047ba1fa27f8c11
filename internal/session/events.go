// Package session records the lifecycle of a judge run as an NDJSON event
// log and renders it back as a timeline.
package session

import (
	"maps"
	"time"
)

// EventType identifies the kind of session event.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventRunComplete  EventType = "run_complete"
	EventPairComplete EventType = "pair_complete"
	EventJudgeError   EventType = "judge_error"
	EventError        EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// RunStartData returns event data for a run start.
func RunStartData(runID, dataset string, judges []string, pairs int) map[string]any {
	return map[string]any{
		"run_id":  runID,
		"dataset": dataset,
		"judges":  judges,
		"pairs":   pairs,
	}
}

// RunCompleteData returns event data for a run end.
func RunCompleteData(pairs, passed, failed, needsReview int, durationMs int64) map[string]any {
	return map[string]any{
		"pairs":        pairs,
		"passed":       passed,
		"failed":       failed,
		"needs_review": needsReview,
		"duration_ms":  durationMs,
	}
}

// PairCompleteData returns event data for one judged (sample, rubric) pair.
func PairCompleteData(sampleID, rubricID, verdict string, pairNum, totalPairs int, durationMs int64) map[string]any {
	return map[string]any{
		"sample_id":   sampleID,
		"rubric_id":   rubricID,
		"verdict":     verdict,
		"pair_num":    pairNum,
		"total_pairs": totalPairs,
		"duration_ms": durationMs,
	}
}

// JudgeErrorData returns event data for a panel member that failed to judge.
func JudgeErrorData(judge, sampleID, rubricID, message string) map[string]any {
	return map[string]any{
		"judge":     judge,
		"sample_id": sampleID,
		"rubric_id": rubricID,
		"message":   message,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	maps.Copy(d, details)
	return d
}
