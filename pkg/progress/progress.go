// Package progress derives a participant's completion state from the raw
// step records: per-session counts and percentages, the next actionable step,
// and the lifecycle status. It performs no I/O; the only clock access happens
// when a new completion is stamped without an explicit timestamp.
package progress

import (
	"math"
	"time"

	"github.com/cfstudy/checklist-backend/pkg/studyplan"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

type SessionProgressInfo struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// SessionProgress counts completed plan steps for a session. For session 2
// the group-filtered plan is the denominator.
func SessionProgress(p *types.Participant, session int) SessionProgressInfo {
	steps := studyplan.SessionSteps(session, p.Group)
	records := p.StepsForSession(session)

	done := 0
	for _, s := range steps {
		if _, ok := records[s.ID]; ok {
			done++
		}
	}
	percent := 0
	if len(steps) > 0 {
		percent = int(math.Round(float64(done) / float64(len(steps)) * 100))
	}
	return SessionProgressInfo{Done: done, Total: len(steps), Percent: percent}
}

// NextStep returns the first step in plan order whose record is absent, or
// nil when every step of the (filtered) plan is complete. Out-of-order
// completions are not repaired: the earliest gap is always reported.
func NextStep(p *types.Participant, session int) *studyplan.Step {
	records := p.StepsForSession(session)
	for _, s := range studyplan.SessionSteps(session, p.Group) {
		if _, ok := records[s.ID]; !ok {
			step := s
			return &step
		}
	}
	return nil
}

// RecomputeStatus re-derives the lifecycle status from the step records and
// the Session-1 schedule, first match wins. "dropped" is never produced
// here: it is only set through the admin force-status path, and the next
// step mutation overwrites it with a computed value again.
func RecomputeStatus(p *types.Participant) string {
	s1All := NextStep(p, 1) == nil
	s2All := NextStep(p, 2) == nil
	s1Any := len(p.Session1Steps) > 0
	s2Any := len(p.Session2Steps) > 0

	switch {
	case s1All && s2All:
		p.Status = types.STATUS_COMPLETE
	case s2Any:
		p.Status = types.STATUS_SESSION2_LIVE
	case s1All:
		p.Status = types.STATUS_SESSION1_DONE
	case s1Any:
		p.Status = types.STATUS_SESSION1_LIVE
	case p.Session1.Date != "":
		p.Status = types.STATUS_SCHEDULED
	default:
		p.Status = types.STATUS_NEW
	}
	return p.Status
}

// MarkStep records a completion for a plan step and recomputes the status.
// Marking an already-done step refreshes its timestamp and note. Step ids
// outside the session's (filtered) plan are rejected.
func MarkStep(p *types.Participant, session int, stepID string, note string, completedAt int64) error {
	if _, ok := studyplan.FindStep(session, p.Group, stepID); !ok {
		return types.ErrUnknownStep
	}
	if completedAt == 0 {
		completedAt = time.Now().Unix()
	}
	p.StepsForSession(session)[stepID] = types.StepRecord{
		Done:        true,
		CompletedAt: completedAt,
		Note:        note,
	}
	RecomputeStatus(p)
	return nil
}

// UnmarkStep removes a completion record; removing an absent record is a
// no-op. The status can move backward, which is the point of an undo.
func UnmarkStep(p *types.Participant, session int, stepID string) error {
	if _, ok := studyplan.FindStep(session, p.Group, stepID); !ok {
		return types.ErrUnknownStep
	}
	delete(p.StepsForSession(session), stepID)
	RecomputeStatus(p)
	return nil
}

// TimelinePhase maps a status onto the 5-node study timeline. Unknown
// statuses (including "dropped") land on the first node.
func TimelinePhase(status string) int {
	switch status {
	case types.STATUS_NEW, types.STATUS_SCHEDULED:
		return 0
	case types.STATUS_SESSION1_LIVE:
		return 1
	case types.STATUS_SESSION1_DONE:
		return 2
	case types.STATUS_SESSION2_LIVE:
		return 3
	case types.STATUS_COMPLETE:
		return 4
	default:
		return 0
	}
}
