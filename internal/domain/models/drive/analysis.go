package drive

import "encoding/json"

// AnalysisResult is the evaluation produced by the analysis backend.
// The evaluation payloads are versioned by the backend and kept raw here;
// the report package decodes them into tagged sections.
type AnalysisResult struct {
	TeamID             string          `json:"team_id"`
	InterviewContent   string          `json:"interview_content,omitempty"`
	InitialEvaluation  json.RawMessage `json:"initial_evaluation,omitempty"`
	CriticalEvaluation json.RawMessage `json:"critical_evaluation,omitempty"`
	MentorReport       json.RawMessage `json:"mentor_report,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
	Status             string          `json:"status,omitempty"`
	CreatedAt          string          `json:"created_at,omitempty"`
}
