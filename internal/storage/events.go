// Package storage persists the gateway's audit trail: one event per tool
// call, whether allowed, denied, or failed.
package storage

import "time"

// EventWriter is the interface for writing audit events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *ToolCallEvent)
	Close()
}

// ToolCallEvent is one tool invocation to be persisted.
type ToolCallEvent struct {
	RequestID       string
	Timestamp       time.Time
	Tool            string
	Target          string // datapoint identifier for read/write tools
	ArgumentsJSON   string // truncated preview, see ArgumentsPreviewLength
	Verdict         string // "allowed", "denied", or "error"
	Reason          string
	AllowedPatterns []string
	LatencyMs       float32
	Source          string // "http" today; other transports later
}

// Verdict values for ToolCallEvent.
const (
	VerdictAllowed = "allowed"
	VerdictDenied  = "denied"
	VerdictError   = "error"
)

// ArgumentsPreviewLength is the max chars stored in arguments_json.
const ArgumentsPreviewLength = 500

// TruncateArguments returns the first N characters (runes) of an arguments
// payload for preview storage. It never splits a multi-byte UTF-8 character.
func TruncateArguments(args string, maxLen int) string {
	runes := []rune(args)
	if len(runes) <= maxLen {
		return args
	}
	return string(runes[:maxLen])
}
