package db

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cfstudy/checklist-backend/pkg/enrollment"
)

const participantCodeCounter = "participantCode"

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int    `bson:"seq"`
}

func (dbService *StudyDBService) ensureIndexes() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	unique := true
	_, err := dbService.collectionRefParticipants().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	})
	return err
}

// seedCodeCounter raises the code sequence to the highest code already in the
// collection, so deployments migrated from the local version keep counting
// where they left off. $max keeps this safe to run from several instances.
func (dbService *StudyDBService) seedCodeCounter() error {
	participants, err := dbService.FindAllParticipants()
	if err != nil {
		return err
	}
	max := 0
	for _, p := range participants {
		if n, ok := enrollment.ParseCodeNumber(p.Code); ok && n > max {
			max = n
		}
	}
	return dbService.raiseCodeCounterTo(max)
}

func (dbService *StudyDBService) raiseCodeCounterTo(value int) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	upsert := true
	_, err := dbService.collectionRefCounters().UpdateOne(ctx,
		bson.M{"_id": participantCodeCounter},
		bson.M{"$max": bson.M{"seq": value}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	return err
}

// nextParticipantCode atomically increments the code sequence. Two clients
// registering at the same moment get distinct codes, unlike a
// scan-and-increment over the snapshot each of them read.
func (dbService *StudyDBService) nextParticipantCode() (string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	upsert := true
	after := options.After
	opts := options.FindOneAndUpdateOptions{
		Upsert:         &upsert,
		ReturnDocument: &after,
	}
	elem := counterDoc{}
	err := dbService.collectionRefCounters().FindOneAndUpdate(ctx,
		bson.M{"_id": participantCodeCounter},
		bson.M{"$inc": bson.M{"seq": 1}},
		&opts,
	).Decode(&elem)
	if err != nil {
		return "", err
	}
	return enrollment.FormatCode(elem.Seq), nil
}
