package db

import (
	"context"

	"github.com/cfstudy/checklist-backend/pkg/types"
)

// ParticipantStore is the persistence contract for participant records. Two
// implementations exist: StudyDBService (MongoDB, for the hosted deployment)
// and LocalDBService (sqlite file, for a single on-device installation).
// Every mutation is a whole-record read-modify-write that returns the updated
// record with a freshly recomputed status; there is no field-level merging
// and the last write wins.
type ParticipantStore interface {
	FindParticipantByCode(code string) (types.Participant, error)
	FindAllParticipants() ([]types.Participant, error)
	CreateParticipant(req types.ParticipantCreate) (types.Participant, error)
	MarkStep(code string, session int, stepID string, note string, completedAt int64) (types.Participant, error)
	UnmarkStep(code string, session int, stepID string) (types.Participant, error)
	UpdateParticipant(code string, patch types.ParticipantUpdate) (types.Participant, error)
	// ForceStatus writes the status directly, bypassing recomputation. This
	// is the only path that can desync the derived field; the next mark or
	// unmark recomputes over it.
	ForceStatus(code string, status string) (types.Participant, error)
	// ImportParticipants merges records into the store; imported data wins
	// on code conflicts. Returns the number of records written.
	ImportParticipants(participants []types.Participant) (int, error)
	Ping(ctx context.Context) error
	BackendName() string
}

func applyUpdate(p *types.Participant, patch types.ParticipantUpdate) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&p.FirstName, patch.FirstName)
	setStr(&p.LastName, patch.LastName)
	setStr(&p.Email, patch.Email)
	setStr(&p.Phone, patch.Phone)
	setStr(&p.Group, patch.Group)
	setStr(&p.RAInitials, patch.RAInitials)
	setStr(&p.Notes, patch.Notes)
	setStr(&p.Session1.Date, patch.Session1Date)
	setStr(&p.Session1.Time, patch.Session1Time)
	setStr(&p.Session1.HRVDeviceID, patch.Session1HRVRef)
	setStr(&p.Session2.Date, patch.Session2Date)
	setStr(&p.Session2.Time, patch.Session2Time)
	setStr(&p.Session2.HRVDeviceID, patch.Session2HRVRef)

	// Scheduling a first session promotes a freshly registered participant.
	// Other statuses are left alone here; only step mutations recompute.
	if p.Status == types.STATUS_NEW && p.Session1.Date != "" {
		p.Status = types.STATUS_SCHEDULED
	}
}
