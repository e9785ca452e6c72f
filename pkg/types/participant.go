package types

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	GROUP_REVIEW    = "Review"
	GROUP_NO_REVIEW = "No Review"
)

const (
	STATUS_NEW           = "new"
	STATUS_SCHEDULED     = "scheduled"
	STATUS_SESSION1_LIVE = "session1_live"
	STATUS_SESSION1_DONE = "session1_done"
	STATUS_SESSION2_LIVE = "session2_live"
	STATUS_COMPLETE      = "complete"
	STATUS_DROPPED       = "dropped"
)

// ReviewGroups lists the valid experimental conditions.
var ReviewGroups = []string{GROUP_REVIEW, GROUP_NO_REVIEW}

// Statuses lists every lifecycle status, including the admin-only "dropped".
var Statuses = []string{
	STATUS_NEW,
	STATUS_SCHEDULED,
	STATUS_SESSION1_LIVE,
	STATUS_SESSION1_DONE,
	STATUS_SESSION2_LIVE,
	STATUS_COMPLETE,
	STATUS_DROPPED,
}

// StepRecord is the completion evidence for a single checklist step. A step
// is done iff its record is present in the session's step map; there is no
// explicit "not done" representation.
type StepRecord struct {
	Done        bool   `bson:"done" json:"done"`
	CompletedAt int64  `bson:"completedAt" json:"completedAt"`
	Note        string `bson:"note" json:"note"`
}

type SessionSchedule struct {
	Date        string `bson:"date" json:"date"`
	Time        string `bson:"time" json:"time"`
	HRVDeviceID string `bson:"hrvDeviceID" json:"hrvDeviceID"`
}

type Participant struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty" json:"id,omitempty"`
	Code          string                `bson:"code" json:"code"`
	FirstName     string                `bson:"firstName" json:"firstName"`
	LastName      string                `bson:"lastName" json:"lastName"`
	Email         string                `bson:"email" json:"email"`
	Phone         string                `bson:"phone" json:"phone"`
	Group         string                `bson:"group" json:"group"`
	RAInitials    string                `bson:"raInitials" json:"raInitials"`
	Status        string                `bson:"status" json:"status"`
	RegisteredAt  int64                 `bson:"registeredAt" json:"registeredAt"`
	Session1Steps map[string]StepRecord `bson:"session1Steps" json:"session1Steps"`
	Session2Steps map[string]StepRecord `bson:"session2Steps" json:"session2Steps"`
	Session1      SessionSchedule       `bson:"session1" json:"session1"`
	Session2      SessionSchedule       `bson:"session2" json:"session2"`
	Notes         string                `bson:"notes" json:"notes"`
}

// StepsForSession returns the step-record map backing the given session.
// Session numbers other than 1 and 2 are a programming error.
func (p *Participant) StepsForSession(session int) map[string]StepRecord {
	switch session {
	case 1:
		if p.Session1Steps == nil {
			p.Session1Steps = map[string]StepRecord{}
		}
		return p.Session1Steps
	case 2:
		if p.Session2Steps == nil {
			p.Session2Steps = map[string]StepRecord{}
		}
		return p.Session2Steps
	default:
		panic("invalid session number")
	}
}

func (p *Participant) ScheduleForSession(session int) *SessionSchedule {
	switch session {
	case 1:
		return &p.Session1
	case 2:
		return &p.Session2
	default:
		panic("invalid session number")
	}
}

// ParticipantCreate holds the fields accepted when enrolling a participant.
// Group and RAInitials may be empty; an empty group triggers balanced
// auto-assignment.
type ParticipantCreate struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Group      string `json:"group"`
	RAInitials string `json:"raInitials"`
}

// ParticipantUpdate is a partial patch; nil fields are left untouched.
// Status is deliberately absent: it is derived, and the only way to write it
// directly is the dedicated force-status operation.
type ParticipantUpdate struct {
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Group          *string `json:"group,omitempty"`
	RAInitials     *string `json:"raInitials,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Session1Date   *string `json:"session1Date,omitempty"`
	Session1Time   *string `json:"session1Time,omitempty"`
	Session1HRVRef *string `json:"session1HRVRef,omitempty"`
	Session2Date   *string `json:"session2Date,omitempty"`
	Session2Time   *string `json:"session2Time,omitempty"`
	Session2HRVRef *string `json:"session2HRVRef,omitempty"`
}
