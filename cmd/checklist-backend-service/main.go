package main

import (
	"net/http"
	"time"

	"github.com/coneno/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cfstudy/checklist-backend/internal/config"
	"github.com/cfstudy/checklist-backend/pkg/db"
	v1 "github.com/cfstudy/checklist-backend/pkg/http/v1"
	"github.com/cfstudy/checklist-backend/pkg/runner"
)

const (
	syncCheckCooldownInSeconds = 60
)

func healthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "checklist backend running"})
}

func main() {
	// optional .env file for local development
	if err := godotenv.Load(); err != nil {
		logger.Debug.Println("no .env file loaded")
	}

	conf := config.InitConfig()

	logger.SetLevel(conf.LogLevel)

	var participantStore db.ParticipantStore
	if conf.StoreBackend == config.StoreBackendLocal {
		localStore, err := db.NewLocalDBService(conf.LocalDBConfig)
		if err != nil {
			logger.Error.Fatal(err)
		}
		defer localStore.Close()
		participantStore = localStore
	} else {
		participantStore = db.NewStudyDBService(conf.StudyDBConfig)
	}

	if !conf.GinDebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Start runner
	syncRunner := runner.NewRunner(participantStore, syncCheckCooldownInSeconds)
	syncRunner.Run()

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", "Api-Key"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.GET("/health", healthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := v1.NewHTTPHandler(
		participantStore,
		syncRunner,
		conf.APIKeys,
		conf.AdminPassword,
	)
	v1APIHandlers.AddAuthAPI(v1Root)
	v1APIHandlers.AddParticipantPortalAPI(v1Root)
	v1APIHandlers.AddCollectorAPI(v1Root)
	v1APIHandlers.AddAdminAPI(v1Root)
	v1APIHandlers.AddReportsAPI(v1Root)
	v1APIHandlers.AddSyncStatusAPI(v1Root)

	logger.Info.Printf("CF study checklist backend started, listening on port %s", conf.Port)
	logger.Error.Fatal(router.Run(":" + conf.Port))
}
