package progress

import (
	"testing"

	"github.com/cfstudy/checklist-backend/pkg/studyplan"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

func newTestParticipant(group string) *types.Participant {
	return &types.Participant{
		Code:          "CF001",
		FirstName:     "Jane",
		LastName:      "Smith",
		Email:         "jane@example.edu",
		Group:         group,
		Status:        types.STATUS_NEW,
		Session1Steps: map[string]types.StepRecord{},
		Session2Steps: map[string]types.StepRecord{},
	}
}

func markAll(t *testing.T, p *types.Participant, session int) {
	t.Helper()
	for _, s := range studyplan.SessionSteps(session, p.Group) {
		if err := MarkStep(p, session, s.ID, "", 1700000000); err != nil {
			t.Fatalf("MarkStep(%d, %s): %v", session, s.ID, err)
		}
	}
}

func TestSessionProgressEmpty(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)

	got := SessionProgress(p, 1)
	if got.Done != 0 || got.Total != 11 || got.Percent != 0 {
		t.Fatalf("session 1 progress = %+v, want {0 11 0}", got)
	}
	got = SessionProgress(p, 2)
	if got.Done != 0 || got.Total != 8 || got.Percent != 0 {
		t.Fatalf("session 2 progress = %+v, want {0 8 0}", got)
	}
}

func TestSessionProgressCounting(t *testing.T) {
	p := newTestParticipant(types.GROUP_REVIEW)

	if err := MarkStep(p, 1, "S1-01a", "", 1700000000); err != nil {
		t.Fatal(err)
	}
	if err := MarkStep(p, 1, "S1-04", "", 1700000000); err != nil {
		t.Fatal(err)
	}

	got := SessionProgress(p, 1)
	if got.Done != 2 || got.Total != 11 {
		t.Fatalf("progress = %+v, want done=2 total=11", got)
	}
	// 2/11 = 18.18 -> 18
	if got.Percent != 18 {
		t.Fatalf("percent = %d, want 18", got.Percent)
	}
}

func TestSessionProgressDoneNeverExceedsPlanLength(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	markAll(t, p, 1)
	// an orphan record outside the plan must not count
	p.Session1Steps["BOGUS"] = types.StepRecord{Done: true}

	got := SessionProgress(p, 1)
	if got.Done != 11 || got.Total != 11 || got.Percent != 100 {
		t.Fatalf("progress = %+v, want {11 11 100}", got)
	}
}

func TestNextStepReturnsEarliestGap(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)

	next := NextStep(p, 1)
	if next == nil || next.ID != "S1-01a" {
		t.Fatalf("next = %+v, want S1-01a", next)
	}

	// completing out of order still reports the earliest gap
	if err := MarkStep(p, 1, "S1-05", "", 1700000000); err != nil {
		t.Fatal(err)
	}
	next = NextStep(p, 1)
	if next == nil || next.ID != "S1-01a" {
		t.Fatalf("next = %+v, want S1-01a", next)
	}

	if err := MarkStep(p, 1, "S1-01a", "", 1700000000); err != nil {
		t.Fatal(err)
	}
	next = NextStep(p, 1)
	if next == nil || next.ID != "S1-01b" {
		t.Fatalf("next = %+v, want S1-01b", next)
	}
}

func TestNextStepNilWhenSessionComplete(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	markAll(t, p, 1)

	if next := NextStep(p, 1); next != nil {
		t.Fatalf("next = %+v, want nil", next)
	}
	if p.Status != types.STATUS_SESSION1_DONE {
		t.Fatalf("status = %s, want %s", p.Status, types.STATUS_SESSION1_DONE)
	}
}

func TestNextStepSkipsReviewOnlyForNoReviewGroup(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)

	next := NextStep(p, 2)
	if next == nil || next.ID != "S2-02a" {
		t.Fatalf("next = %+v, want S2-02a", next)
	}

	review := newTestParticipant(types.GROUP_REVIEW)
	next = NextStep(review, 2)
	if next == nil || next.ID != "S2-01" {
		t.Fatalf("next = %+v, want S2-01", next)
	}
}

func TestRecomputeStatusPriorityOrder(t *testing.T) {
	cases := []struct {
		name      string
		s1All     bool
		s1Any     bool
		s2Any     bool
		s2All     bool
		scheduled bool
		want      string
	}{
		{name: "nothing", want: types.STATUS_NEW},
		{name: "only scheduled", scheduled: true, want: types.STATUS_SCHEDULED},
		{name: "s1 started", s1Any: true, scheduled: true, want: types.STATUS_SESSION1_LIVE},
		{name: "s1 done", s1All: true, s1Any: true, want: types.STATUS_SESSION1_DONE},
		{name: "s2 started", s1All: true, s1Any: true, s2Any: true, want: types.STATUS_SESSION2_LIVE},
		{name: "s2 started before s1 done", s1Any: true, s2Any: true, want: types.STATUS_SESSION2_LIVE},
		{name: "all done", s1All: true, s1Any: true, s2Any: true, s2All: true, want: types.STATUS_COMPLETE},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := newTestParticipant(types.GROUP_NO_REVIEW)
			if c.scheduled {
				p.Session1.Date = "2025-09-15"
			}
			if c.s1All {
				for _, s := range studyplan.SessionSteps(1, p.Group) {
					p.Session1Steps[s.ID] = types.StepRecord{Done: true, CompletedAt: 1700000000}
				}
			} else if c.s1Any {
				p.Session1Steps["S1-01a"] = types.StepRecord{Done: true, CompletedAt: 1700000000}
			}
			if c.s2All {
				for _, s := range studyplan.SessionSteps(2, p.Group) {
					p.Session2Steps[s.ID] = types.StepRecord{Done: true, CompletedAt: 1700000000}
				}
			} else if c.s2Any {
				p.Session2Steps["S2-02a"] = types.StepRecord{Done: true, CompletedAt: 1700000000}
			}

			if got := RecomputeStatus(p); got != c.want {
				t.Fatalf("status = %s, want %s", got, c.want)
			}
		})
	}
}

func TestMarkAllSession1(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	markAll(t, p, 1)

	got := SessionProgress(p, 1)
	if got.Done != 11 || got.Total != 11 || got.Percent != 100 {
		t.Fatalf("progress = %+v, want {11 11 100}", got)
	}
	if p.Status != types.STATUS_SESSION1_DONE {
		t.Fatalf("status = %s, want %s", p.Status, types.STATUS_SESSION1_DONE)
	}
}

func TestFirstSession2StepGoesLive(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	markAll(t, p, 1)

	if err := MarkStep(p, 2, "S2-02a", "", 1700000000); err != nil {
		t.Fatal(err)
	}
	if p.Status != types.STATUS_SESSION2_LIVE {
		t.Fatalf("status = %s, want %s", p.Status, types.STATUS_SESSION2_LIVE)
	}
}

func TestUnmarkLastStepRevertsComplete(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	markAll(t, p, 1)
	markAll(t, p, 2)
	if p.Status != types.STATUS_COMPLETE {
		t.Fatalf("status = %s, want %s", p.Status, types.STATUS_COMPLETE)
	}

	if err := UnmarkStep(p, 2, "S2-07"); err != nil {
		t.Fatal(err)
	}
	if p.Status != types.STATUS_SESSION2_LIVE {
		t.Fatalf("status = %s, want %s", p.Status, types.STATUS_SESSION2_LIVE)
	}
	if next := NextStep(p, 2); next == nil || next.ID != "S2-07" {
		t.Fatalf("next = %+v, want S2-07", next)
	}
}

func TestMarkUnmarkRoundTrip(t *testing.T) {
	p := newTestParticipant(types.GROUP_REVIEW)
	if err := MarkStep(p, 1, "S1-01a", "", 1700000000); err != nil {
		t.Fatal(err)
	}
	p.Session1.Date = "2025-09-15"
	RecomputeStatus(p)

	statusBefore := p.Status
	progressBefore := SessionProgress(p, 1)
	nextBefore := NextStep(p, 1).ID

	if err := MarkStep(p, 1, "S1-01b", "a note", 1700000100); err != nil {
		t.Fatal(err)
	}
	if err := UnmarkStep(p, 1, "S1-01b"); err != nil {
		t.Fatal(err)
	}

	if p.Status != statusBefore {
		t.Fatalf("status = %s, want %s", p.Status, statusBefore)
	}
	if got := SessionProgress(p, 1); got != progressBefore {
		t.Fatalf("progress = %+v, want %+v", got, progressBefore)
	}
	if next := NextStep(p, 1); next.ID != nextBefore {
		t.Fatalf("next = %s, want %s", next.ID, nextBefore)
	}
}

func TestMarkStepIdempotentRefresh(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	if err := MarkStep(p, 1, "S1-02", "first", 1700000000); err != nil {
		t.Fatal(err)
	}
	if err := MarkStep(p, 1, "S1-02", "second", 1700000500); err != nil {
		t.Fatal(err)
	}

	rec := p.Session1Steps["S1-02"]
	if rec.Note != "second" || rec.CompletedAt != 1700000500 {
		t.Fatalf("record = %+v, want refreshed note and timestamp", rec)
	}
	if got := SessionProgress(p, 1).Done; got != 1 {
		t.Fatalf("done = %d, want 1", got)
	}
}

func TestMarkStepRejectsUnknownID(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)

	if err := MarkStep(p, 1, "S9-99", "", 0); err != types.ErrUnknownStep {
		t.Fatalf("err = %v, want ErrUnknownStep", err)
	}
	// S2-01 is review-only, so it is outside the No Review plan
	if err := MarkStep(p, 2, "S2-01", "", 0); err != types.ErrUnknownStep {
		t.Fatalf("err = %v, want ErrUnknownStep", err)
	}
	if len(p.Session1Steps) != 0 || len(p.Session2Steps) != 0 {
		t.Fatal("rejected mark must not insert a record")
	}
}

func TestUnmarkAbsentStepIsNoOp(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	p.Session1.Date = "2025-09-15"
	RecomputeStatus(p)

	if err := UnmarkStep(p, 1, "S1-03"); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if p.Status != types.STATUS_SCHEDULED {
		t.Fatalf("status = %s, want %s", p.Status, types.STATUS_SCHEDULED)
	}
}

func TestRecomputeOverwritesDropped(t *testing.T) {
	p := newTestParticipant(types.GROUP_NO_REVIEW)
	p.Status = types.STATUS_DROPPED

	if err := MarkStep(p, 1, "S1-01a", "", 1700000000); err != nil {
		t.Fatal(err)
	}
	if p.Status != types.STATUS_SESSION1_LIVE {
		t.Fatalf("status = %s, want %s", p.Status, types.STATUS_SESSION1_LIVE)
	}
}

func TestTimelinePhase(t *testing.T) {
	cases := []struct {
		status string
		want   int
	}{
		{types.STATUS_NEW, 0},
		{types.STATUS_SCHEDULED, 0},
		{types.STATUS_SESSION1_LIVE, 1},
		{types.STATUS_SESSION1_DONE, 2},
		{types.STATUS_SESSION2_LIVE, 3},
		{types.STATUS_COMPLETE, 4},
		{types.STATUS_DROPPED, 0},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := TimelinePhase(c.status); got != c.want {
			t.Fatalf("TimelinePhase(%s) = %d, want %d", c.status, got, c.want)
		}
	}
}
