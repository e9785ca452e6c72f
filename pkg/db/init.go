package db

import (
	"context"
	"time"

	"github.com/coneno/logger"

	"github.com/cfstudy/checklist-backend/pkg/types"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StudyDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewStudyDBService(configs types.DBConfig) *StudyDBService {
	var err error
	dbClient, err := mongo.NewClient(
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		logger.Error.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	err = dbClient.Connect(ctx)
	if err != nil {
		logger.Error.Fatal(err)
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()
	if err != nil {
		logger.Error.Fatal("fail to connect to DB: " + err.Error())
	}

	studyDBService := &StudyDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if err := studyDBService.ensureIndexes(); err != nil {
		logger.Error.Fatal("fail to create indexes: " + err.Error())
	}
	if err := studyDBService.seedCodeCounter(); err != nil {
		logger.Error.Fatal("fail to seed participant code counter: " + err.Error())
	}

	return studyDBService
}

func (dbService *StudyDBService) collectionRefParticipants() *mongo.Collection {
	return dbService.DBClient.Database(dbService.DBNamePrefix + "checklistDB").Collection("participants")
}

func (dbService *StudyDBService) collectionRefCounters() *mongo.Collection {
	return dbService.DBClient.Database(dbService.DBNamePrefix + "checklistDB").Collection("counters")
}

// DB utils
func (dbService *StudyDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *StudyDBService) Ping(ctx context.Context) error {
	return dbService.DBClient.Ping(ctx, nil)
}

func (dbService *StudyDBService) BackendName() string {
	return "mongodb"
}
