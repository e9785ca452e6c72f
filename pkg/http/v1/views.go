package v1

import (
	"github.com/cfstudy/checklist-backend/pkg/progress"
	"github.com/cfstudy/checklist-backend/pkg/studyplan"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

// StepView is one checklist row as the clients render it: the static plan
// entry plus its completion state and gating position.
type StepView struct {
	studyplan.Step
	Done        bool   `json:"done"`
	CompletedAt int64  `json:"completedAt,omitempty"`
	Note        string `json:"note,omitempty"`
	Active      bool   `json:"active"`
	Locked      bool   `json:"locked"`
	SurveyLink  string `json:"surveyLink,omitempty"`
}

type SessionView struct {
	Session    int                          `json:"session"`
	Schedule   types.SessionSchedule        `json:"schedule"`
	Progress   progress.SessionProgressInfo `json:"progress"`
	NextStepID string                       `json:"nextStepId,omitempty"`
	Steps      []StepView                   `json:"steps"`
}

type ParticipantView struct {
	Participant   types.Participant `json:"participant"`
	TimelinePhase int               `json:"timelinePhase"`
	Session1      SessionView       `json:"session1"`
	Session2      SessionView       `json:"session2"`
}

func buildSessionView(p *types.Participant, session int) SessionView {
	records := p.StepsForSession(session)
	next := progress.NextStep(p, session)
	nextID := ""
	if next != nil {
		nextID = next.ID
	}

	steps := []StepView{}
	for _, s := range studyplan.SessionSteps(session, p.Group) {
		view := StepView{Step: s}
		if rec, ok := records[s.ID]; ok {
			view.Done = true
			view.CompletedAt = rec.CompletedAt
			view.Note = rec.Note
		}
		view.Active = s.ID == nextID
		view.Locked = !view.Done && !view.Active
		if s.Kind == studyplan.STEP_KIND_SURVEY {
			view.SurveyLink = studyplan.SurveyLink(s.SurveyKey, p.Code)
		}
		steps = append(steps, view)
	}

	return SessionView{
		Session:    session,
		Schedule:   *p.ScheduleForSession(session),
		Progress:   progress.SessionProgress(p, session),
		NextStepID: nextID,
		Steps:      steps,
	}
}

func buildParticipantView(p *types.Participant) ParticipantView {
	return ParticipantView{
		Participant:   *p,
		TimelinePhase: progress.TimelinePhase(p.Status),
		Session1:      buildSessionView(p, 1),
		Session2:      buildSessionView(p, 2),
	}
}
