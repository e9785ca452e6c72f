// Package studyplan holds the static two-session checklist of the CF study.
// Declaration order within a session is the gating order: steps are meant to
// be completed top to bottom, and the first incomplete one is the active step.
package studyplan

import "github.com/cfstudy/checklist-backend/pkg/types"

const (
	STEP_KIND_SURVEY    = "survey"
	STEP_KIND_RA_ACTION = "ra"
	STEP_KIND_TIMESTAMP = "timestamp"
)

const (
	ACTOR_PARTICIPANT = "participant"
	ACTOR_RA          = "ra"
)

type Survey struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Step struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	Actor       string `json:"actor"`
	SurveyKey   string `json:"surveyKey,omitempty"`
	Phase       string `json:"phase,omitempty"`
	Description string `json:"description"`
	ReviewOnly  bool   `json:"reviewOnly,omitempty"`
}

var Surveys = map[string]Survey{
	"sleep":   {Key: "sleep", Label: "Sleep Quality Survey", URL: "https://purdue.ca1.qualtrics.com/jfe/form/SV_80buUCCnp3ssuEu"},
	"anxiety": {Key: "anxiety", Label: "Test Anxiety Survey", URL: "https://purdue.ca1.qualtrics.com/jfe/form/SV_bkGoyGnyAYnrbtY"},
	"fatigue": {Key: "fatigue", Label: "Fatigue Survey", URL: "https://purdue.ca1.qualtrics.com/jfe/form/SV_eD4CwmMjOpMLm3c"},
	"review":  {Key: "review", Label: "Review Text Check", URL: "https://purdue.ca1.qualtrics.com/jfe/form/SV_8k5vYg8glY43VIi"},
}

var Session1 = []Step{
	{ID: "S1-01a", Label: "Sleep Quality Survey", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "sleep", Phase: "pre", Description: "Before Exam 1"},
	{ID: "S1-01b", Label: "Test Anxiety Survey", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "anxiety", Phase: "pre", Description: "Before Exam 1"},
	{ID: "S1-01c", Label: "Fatigue Survey (Pre-Exam)", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "fatigue", Phase: "pre", Description: "Before Exam 1"},
	{ID: "S1-02", Label: "Polar H10 Fitted & Verified", Kind: STEP_KIND_RA_ACTION, Actor: ACTOR_RA, Description: "Check HRV sensor signal"},
	{ID: "S1-03", Label: "Resting HRV Baseline (5 min)", Kind: STEP_KIND_RA_ACTION, Actor: ACTOR_RA, Description: "Record before Exam 1 starts"},
	{ID: "S1-04", Label: "Exam 1 — Start Time", Kind: STEP_KIND_TIMESTAMP, Actor: ACTOR_RA, Description: "Mark exact start"},
	{ID: "S1-05", Label: "Exam 1 — End Time", Kind: STEP_KIND_TIMESTAMP, Actor: ACTOR_RA, Description: "Mark exact end"},
	{ID: "S1-06a", Label: "Sleep Quality Survey (Post)", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "sleep", Phase: "post", Description: "After Exam 1"},
	{ID: "S1-06b", Label: "Test Anxiety Survey (Post)", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "anxiety", Phase: "post", Description: "After Exam 1"},
	{ID: "S1-06c", Label: "Fatigue Survey (Post-Exam)", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "fatigue", Phase: "post", Description: "After Exam 1"},
	{ID: "S1-07", Label: "Review Materials Delivered", Kind: STEP_KIND_RA_ACTION, Actor: ACTOR_RA, Description: "Explain task + hand out"},
}

// Session2All is the master Session-2 list. Review-only steps apply to the
// "Review" group only; SessionSteps returns the per-group filtered view,
// which is the denominator for all Session-2 progress math.
var Session2All = []Step{
	{ID: "S2-01", Label: "Review Text Check", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "review", Phase: "pre", Description: "Review group only", ReviewOnly: true},
	{ID: "S2-02a", Label: "Sleep Quality Survey", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "sleep", Phase: "pre", Description: "Before Exam 2"},
	{ID: "S2-02b", Label: "Test Anxiety Survey", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "anxiety", Phase: "pre", Description: "Before Exam 2"},
	{ID: "S2-02c", Label: "Fatigue Survey (Pre-Exam)", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "fatigue", Phase: "pre", Description: "Before Exam 2"},
	{ID: "S2-03", Label: "Resting HRV Baseline (5 min)", Kind: STEP_KIND_RA_ACTION, Actor: ACTOR_RA, Description: "Record before Exam 2 starts"},
	{ID: "S2-04", Label: "Exam 2 — Start Time", Kind: STEP_KIND_TIMESTAMP, Actor: ACTOR_RA, Description: "Mark exact start"},
	{ID: "S2-05", Label: "Exam 2 — End Time", Kind: STEP_KIND_TIMESTAMP, Actor: ACTOR_RA, Description: "Mark exact end"},
	{ID: "S2-06", Label: "Fatigue Survey (Post-Exam)", Kind: STEP_KIND_SURVEY, Actor: ACTOR_PARTICIPANT, SurveyKey: "fatigue", Phase: "post", Description: "After Exam 2"},
	{ID: "S2-07", Label: "Compensation Recorded", Kind: STEP_KIND_RA_ACTION, Actor: ACTOR_RA, Description: "Bonus + final payment"},
}

// SessionSteps returns the ordered plan for a session. For session 2 the
// list is filtered by group membership. Other session numbers are a
// programming error.
func SessionSteps(session int, group string) []Step {
	switch session {
	case 1:
		return Session1
	case 2:
		if group == types.GROUP_REVIEW {
			return Session2All
		}
		steps := make([]Step, 0, len(Session2All))
		for _, s := range Session2All {
			if s.ReviewOnly {
				continue
			}
			steps = append(steps, s)
		}
		return steps
	default:
		panic("invalid session number")
	}
}

// FindStep looks up a step by id within a session's (filtered) plan.
func FindStep(session int, group string, stepID string) (Step, bool) {
	for _, s := range SessionSteps(session, group) {
		if s.ID == stepID {
			return s, true
		}
	}
	return Step{}, false
}

// SurveyLink builds the participant-specific survey URL. The participant
// code rides along as a query parameter purely for linking responses later;
// the backend never calls this endpoint.
func SurveyLink(surveyKey string, participantCode string) string {
	survey, ok := Surveys[surveyKey]
	if !ok {
		return ""
	}
	return survey.URL + "?participant=" + participantCode
}
