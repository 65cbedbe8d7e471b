// Package report turns the analysis backend's loosely typed evaluation
// payloads into an explicit report view. The backend versions these payloads
// on its own, so every section records which shape it was built from.
package report

import (
	"encoding/json"
	"fmt"

	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"

	"github.com/tidwall/gjson"
)

// Criteria are the scored sections of the initial evaluation, in display order.
var Criteria = []struct {
	Key   string
	Label string
}{
	{"clarity", "Clarity"},
	{"audience", "Audience"},
	{"structure", "Structure"},
	{"depth", "Depth"},
	{"questions", "Questions"},
}

// Report is the rendered analysis.
type Report struct {
	TeamID                 string              `json:"team_id"`
	Status                 string              `json:"status,omitempty"`
	CreatedAt              string              `json:"created_at,omitempty"`
	InterviewContent       string              `json:"interview_content,omitempty"`
	FinalScore             *float64            `json:"final_score,omitempty"`
	Criteria               []Criterion         `json:"criteria"`
	ScoreChart             []ScorePoint        `json:"score_chart"`
	GeneralRecommendations []string            `json:"general_recommendations"`
	SuggestedQuestions     []SuggestedQuestion `json:"suggested_questions"`
	CriticalEvaluation     *CriticalEvaluation `json:"critical_evaluation,omitempty"`
	MentorReport           MentorReport        `json:"mentor_report"`
	Metadata               json.RawMessage     `json:"metadata,omitempty"`
}

// Criterion is one scored section. Present is false when the payload lacks it.
type Criterion struct {
	Key             string   `json:"key"`
	Label           string   `json:"label"`
	Present         bool     `json:"present"`
	Score           *float64 `json:"score,omitempty"`
	Positives       []string `json:"positives"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
}

// ScorePoint is one point of the score chart.
type ScorePoint struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Question shapes
const (
	QuestionText = "text"
	QuestionList = "list"
)

// SuggestedQuestion is one suggested follow-up. Older payloads map a question
// type to one string, newer ones to a list of strings.
type SuggestedQuestion struct {
	Type  string   `json:"type,omitempty"`
	Shape string   `json:"shape"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// CriticalEvaluation is the reviewer's check of the initial evaluation.
type CriticalEvaluation struct {
	TeamID                             string `json:"team_id,omitempty"`
	SpecificityOfImprovements          bool   `json:"specificity_of_improvements"`
	IdentifiedImprovementOpportunities bool   `json:"identified_improvement_opportunities"`
	ReflectiveQualityScores            bool   `json:"reflective_quality_scores"`
	Notes                              string `json:"notes,omitempty"`
}

// MentorShape names the mentor_report variant a payload carried.
type MentorShape string

const (
	MentorAbsent     MentorShape = "absent"
	MentorInsights   MentorShape = "insights"
	MentorStructured MentorShape = "structured"
	MentorUnknown    MentorShape = "unknown"
)

// Entry is a record such as an insight or an action item. Scalar fields are
// strings; nested objects and arrays are kept as json.RawMessage.
type Entry map[string]interface{}

// MentorReport is the mentor-facing section. Which fields are set depends on Shape.
type MentorReport struct {
	Shape MentorShape `json:"shape"`

	// MentorInsights
	Insights []Entry `json:"insights,omitempty"`

	// MentorStructured
	ValidatedInsights []Entry        `json:"validated_insights,omitempty"`
	PendingHypotheses []Entry        `json:"pending_hypotheses,omitempty"`
	ActionItems       []Entry        `json:"action_items,omitempty"`
	IdentifiedGaps    []string       `json:"identified_gaps,omitempty"`
	Details           *MentorDetails `json:"mentor_details,omitempty"`

	// MentorUnknown
	Raw json.RawMessage `json:"raw,omitempty"`
}

// MentorDetails is the optional narrative block of a structured mentor report.
type MentorDetails struct {
	ExecutiveSummary     string   `json:"executive_summary,omitempty"`
	KeyFindings          []string `json:"key_findings"`
	DiscussionPoints     []Entry  `json:"discussion_points"`
	RecommendedQuestions []string `json:"recommended_questions"`
	NextSteps            []Entry  `json:"next_steps"`
	Alerts               []Entry  `json:"alerts"`
}

var structuredKeys = []string{"validated_insights", "pending_hypotheses", "action_items", "identified_gaps", "mentor_details"}

// Build renders result. A payload section that is not valid JSON fails the
// whole build with an error matching domain.ErrUpstream.
func Build(result *drive.AnalysisResult) (*Report, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: no analysis result", domain.ErrNotFound)
	}
	for name, raw := range map[string]json.RawMessage{
		"initial_evaluation":  result.InitialEvaluation,
		"critical_evaluation": result.CriticalEvaluation,
		"mentor_report":       result.MentorReport,
	} {
		if len(raw) > 0 && !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("%w: analysis %s is not valid JSON", domain.ErrUpstream, name)
		}
	}

	initial := gjson.ParseBytes(result.InitialEvaluation)

	r := &Report{
		TeamID:                 result.TeamID,
		Status:                 result.Status,
		CreatedAt:              result.CreatedAt,
		InterviewContent:       result.InterviewContent,
		Criteria:               make([]Criterion, 0, len(Criteria)),
		ScoreChart:             make([]ScorePoint, 0, len(Criteria)),
		GeneralRecommendations: stringList(initial.Get("general_recommendations")),
		SuggestedQuestions:     suggestedQuestions(initial.Get("suggested_questions")),
		CriticalEvaluation:     criticalEvaluation(gjson.ParseBytes(result.CriticalEvaluation)),
		MentorReport:           mentorReport(result.MentorReport),
		Metadata:               result.Metadata,
	}
	if score := initial.Get("final_score"); score.Type == gjson.Number {
		v := score.Float()
		r.FinalScore = &v
	}

	for _, c := range Criteria {
		section := initial.Get(c.Key)
		crit := Criterion{
			Key:             c.Key,
			Label:           c.Label,
			Present:         section.IsObject(),
			Positives:       stringList(section.Get("positives")),
			Improvements:    stringList(section.Get("improvements")),
			Recommendations: stringList(section.Get("recommendations")),
		}
		if score := section.Get("score_interview"); score.Type == gjson.Number {
			v := score.Float()
			crit.Score = &v
			r.ScoreChart = append(r.ScoreChart, ScorePoint{Category: c.Label, Value: v})
		}
		r.Criteria = append(r.Criteria, crit)
	}

	return r, nil
}

func suggestedQuestions(v gjson.Result) []SuggestedQuestion {
	out := []SuggestedQuestion{}
	add := func(key string, value gjson.Result) {
		if value.IsArray() {
			out = append(out, SuggestedQuestion{Type: key, Shape: QuestionList, Items: stringList(value)})
			return
		}
		if value.Type == gjson.Null {
			return
		}
		out = append(out, SuggestedQuestion{Type: key, Shape: QuestionText, Text: value.String()})
	}

	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			add(key.String(), value)
			return true
		})
	case v.IsArray():
		for _, value := range v.Array() {
			add("", value)
		}
	case v.Exists():
		add("", v)
	}
	return out
}

func criticalEvaluation(v gjson.Result) *CriticalEvaluation {
	if !v.IsObject() {
		return nil
	}
	return &CriticalEvaluation{
		TeamID:                             v.Get("team_id").String(),
		SpecificityOfImprovements:          v.Get("specificity_of_improvements").Bool(),
		IdentifiedImprovementOpportunities: v.Get("identified_improvement_opportunities").Bool(),
		ReflectiveQualityScores:            v.Get("reflective_quality_scores").Bool(),
		Notes:                              v.Get("notes").String(),
	}
}

func mentorReport(raw json.RawMessage) MentorReport {
	v := gjson.ParseBytes(raw)
	switch {
	case len(raw) == 0 || v.Type == gjson.Null:
		return MentorReport{Shape: MentorAbsent}
	case v.IsArray():
		return MentorReport{Shape: MentorInsights, Insights: entries(v)}
	case v.IsObject() && hasAny(v, structuredKeys):
		m := MentorReport{
			Shape:             MentorStructured,
			ValidatedInsights: entries(v.Get("validated_insights")),
			PendingHypotheses: entries(v.Get("pending_hypotheses")),
			ActionItems:       entries(v.Get("action_items")),
			IdentifiedGaps:    stringList(v.Get("identified_gaps")),
		}
		if d := v.Get("mentor_details"); d.IsObject() {
			m.Details = &MentorDetails{
				ExecutiveSummary:     d.Get("executive_summary").String(),
				KeyFindings:          stringList(d.Get("key_findings")),
				DiscussionPoints:     entries(d.Get("discussion_points")),
				RecommendedQuestions: stringList(d.Get("recommended_questions")),
				NextSteps:            entries(d.Get("next_steps")),
				Alerts:               entries(d.Get("alerts")),
			}
		}
		return m
	default:
		return MentorReport{Shape: MentorUnknown, Raw: raw}
	}
}

func hasAny(v gjson.Result, keys []string) bool {
	for _, key := range keys {
		if v.Get(key).Exists() {
			return true
		}
	}
	return false
}

// stringList flattens an array into its elements' string forms. A lone scalar
// becomes a one-element list.
func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.Exists() || v.Type == gjson.Null {
		return out
	}
	if !v.IsArray() {
		return append(out, v.String())
	}
	for _, item := range v.Array() {
		out = append(out, item.String())
	}
	return out
}

// entries turns an array of objects into records. Scalar elements become
// {"text": value}.
func entries(v gjson.Result) []Entry {
	out := []Entry{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		e := Entry{}
		if item.IsObject() {
			item.ForEach(func(key, value gjson.Result) bool {
				if value.IsObject() || value.IsArray() {
					e[key.String()] = json.RawMessage(value.Raw)
				} else {
					e[key.String()] = value.String()
				}
				return true
			})
		} else {
			e["text"] = item.String()
		}
		out = append(out, e)
	}
	return out
}
