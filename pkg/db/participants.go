package db

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cfstudy/checklist-backend/pkg/enrollment"
	"github.com/cfstudy/checklist-backend/pkg/progress"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

func (dbService *StudyDBService) FindParticipantByCode(code string) (types.Participant, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"code": code}

	elem := types.Participant{}
	err := dbService.collectionRefParticipants().FindOne(ctx, filter).Decode(&elem)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return elem, types.ErrNotFound
	}
	return elem, err
}

func (dbService *StudyDBService) FindAllParticipants() (participants []types.Participant, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{}
	batchSize := int32(32)
	opts := options.FindOptions{
		BatchSize: &batchSize,
		Sort:      bson.D{{Key: "code", Value: 1}},
	}
	cur, err := dbService.collectionRefParticipants().Find(ctx, filter, &opts)
	if err != nil {
		return participants, err
	}
	defer cur.Close(ctx)

	participants = []types.Participant{}
	for cur.Next(ctx) {
		var result types.Participant
		err := cur.Decode(&result)

		if err != nil {
			return participants, err
		}

		participants = append(participants, result)
	}
	if err := cur.Err(); err != nil {
		return participants, err
	}

	return participants, nil
}

func (dbService *StudyDBService) saveParticipant(participant types.Participant) (types.Participant, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"code": participant.Code}

	upsert := true
	rd := options.After
	opts := options.FindOneAndReplaceOptions{
		Upsert:         &upsert,
		ReturnDocument: &rd,
	}
	elem := types.Participant{}
	err := dbService.collectionRefParticipants().FindOneAndReplace(
		ctx, filter, participant, &opts,
	).Decode(&elem)
	return elem, err
}

func (dbService *StudyDBService) CreateParticipant(req types.ParticipantCreate) (types.Participant, error) {
	if err := enrollment.ValidateRegistration(req); err != nil {
		return types.Participant{}, err
	}

	group := req.Group
	if group == "" {
		all, err := dbService.FindAllParticipants()
		if err != nil {
			return types.Participant{}, err
		}
		group = enrollment.BalancedGroup(all)
	}

	code, err := dbService.nextParticipantCode()
	if err != nil {
		return types.Participant{}, err
	}

	participant := newParticipant(code, group, req)

	ctx, cancel := dbService.getContext()
	defer cancel()
	_, err = dbService.collectionRefParticipants().InsertOne(ctx, participant)
	if err != nil {
		return types.Participant{}, err
	}
	return participant, nil
}

func (dbService *StudyDBService) MarkStep(code string, session int, stepID string, note string, completedAt int64) (types.Participant, error) {
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	if err := progress.MarkStep(&participant, session, stepID, note, completedAt); err != nil {
		return participant, err
	}
	return dbService.saveParticipant(participant)
}

func (dbService *StudyDBService) UnmarkStep(code string, session int, stepID string) (types.Participant, error) {
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	if err := progress.UnmarkStep(&participant, session, stepID); err != nil {
		return participant, err
	}
	return dbService.saveParticipant(participant)
}

func (dbService *StudyDBService) UpdateParticipant(code string, patch types.ParticipantUpdate) (types.Participant, error) {
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	applyUpdate(&participant, patch)
	return dbService.saveParticipant(participant)
}

func (dbService *StudyDBService) ForceStatus(code string, status string) (types.Participant, error) {
	if !isKnownStatus(status) {
		return types.Participant{}, fmt.Errorf("%w: unknown status %q", types.ErrValidation, status)
	}
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	participant.Status = status
	return dbService.saveParticipant(participant)
}

func (dbService *StudyDBService) ImportParticipants(participants []types.Participant) (int, error) {
	imported := 0
	maxCode := 0
	for _, p := range participants {
		if p.Code == "" {
			continue
		}
		if _, err := dbService.saveParticipant(p); err != nil {
			return imported, err
		}
		imported++
		if n, ok := enrollment.ParseCodeNumber(p.Code); ok && n > maxCode {
			maxCode = n
		}
	}
	if maxCode > 0 {
		if err := dbService.raiseCodeCounterTo(maxCode); err != nil {
			return imported, err
		}
	}
	return imported, nil
}

func newParticipant(code string, group string, req types.ParticipantCreate) types.Participant {
	return types.Participant{
		Code:          code,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Group:         group,
		RAInitials:    req.RAInitials,
		Status:        types.STATUS_NEW,
		RegisteredAt:  time.Now().Unix(),
		Session1Steps: map[string]types.StepRecord{},
		Session2Steps: map[string]types.StepRecord{},
	}
}

func isKnownStatus(status string) bool {
	for _, s := range types.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
