package types

import "fmt"

// TaskKind represents the category of work a ticket requests. The set is
// closed: every kind has exactly one handler.
type TaskKind string

const (
	TaskKindDocAnalysis  TaskKind = "doc_analysis"
	TaskKindPRReview     TaskKind = "pr_review"
	TaskKindPaperWriting TaskKind = "paper_writing"
	TaskKindDataQuery    TaskKind = "data_query"
	TaskKindCustom       TaskKind = "custom"
)

// AllTaskKinds returns all valid task kinds
func AllTaskKinds() []TaskKind {
	return []TaskKind{
		TaskKindDocAnalysis,
		TaskKindPRReview,
		TaskKindPaperWriting,
		TaskKindDataQuery,
		TaskKindCustom,
	}
}

// IsValid checks if the task kind is valid
func (k TaskKind) IsValid() bool {
	switch k {
	case TaskKindDocAnalysis,
		TaskKindPRReview,
		TaskKindPaperWriting,
		TaskKindDataQuery,
		TaskKindCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation of the task kind
func (k TaskKind) String() string {
	return string(k)
}

// ParseTaskKind parses a string into a TaskKind
func ParseTaskKind(s string) (TaskKind, error) {
	kind := TaskKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid task kind: %s", s)
	}
	return kind, nil
}
