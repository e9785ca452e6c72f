package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coneno/logger"

	"github.com/cfstudy/checklist-backend/pkg/types"
)

const (
	ENV_LOG_LEVEL      = "LOG_LEVEL"
	ENV_GIN_DEBUG_MODE = "GIN_DEBUG_MODE"

	ENV_CHECKLIST_BACKEND_LISTEN_PORT = "CHECKLIST_BACKEND_LISTEN_PORT"
	ENV_CORS_ALLOW_ORIGINS            = "CORS_ALLOW_ORIGINS"

	ENV_API_KEYS       = "API_KEYS"
	ENV_ADMIN_PASSWORD = "ADMIN_PASSWORD"
	ENV_JWT_TOKEN_KEY  = "JWT_TOKEN_KEY"

	// "local" for the on-device sqlite file, "mongodb" for the hosted store
	ENV_STORE_BACKEND = "STORE_BACKEND"

	ENV_LOCAL_DB_PATH = "LOCAL_DB_PATH"

	ENV_STUDY_DB_CONNECTION_STR    = "STUDY_DB_CONNECTION_STR"
	ENV_STUDY_DB_USERNAME          = "STUDY_DB_USERNAME"
	ENV_STUDY_DB_PASSWORD          = "STUDY_DB_PASSWORD"
	ENV_STUDY_DB_CONNECTION_PREFIX = "STUDY_DB_CONNECTION_PREFIX"

	ENV_DB_TIMEOUT           = "DB_TIMEOUT"
	ENV_DB_IDLE_CONN_TIMEOUT = "DB_IDLE_CONN_TIMEOUT"
	ENV_DB_MAX_POOL_SIZE     = "DB_MAX_POOL_SIZE"
	ENV_DB_NAME_PREFIX       = "DB_DB_NAME_PREFIX"
)

const (
	StoreBackendLocal   = "local"
	StoreBackendMongoDB = "mongodb"

	DefaultLocalDBPath = "./data/cf-checklist.db"
	DefaultDBTimeout   = 30
)

// Config is the structure that holds all global configuration data
type Config struct {
	Port          string
	AllowOrigins  []string
	APIKeys       []string
	LogLevel      logger.LogLevel
	GinDebugMode  bool
	AdminPassword string
	StoreBackend  string
	StudyDBConfig types.DBConfig
	LocalDBConfig types.LocalDBConfig
}

func InitConfig() Config {
	conf := Config{}
	conf.Port = os.Getenv(ENV_CHECKLIST_BACKEND_LISTEN_PORT)
	conf.AllowOrigins = strings.Split(os.Getenv(ENV_CORS_ALLOW_ORIGINS), ",")

	conf.APIKeys = strings.Split(os.Getenv(ENV_API_KEYS), ",")
	conf.LogLevel = getLogLevel()
	conf.GinDebugMode = os.Getenv(ENV_GIN_DEBUG_MODE) == "true"

	conf.AdminPassword = os.Getenv(ENV_ADMIN_PASSWORD)
	if conf.AdminPassword == "" {
		logger.Error.Fatal("Couldn't read admin password.")
	}

	conf.StoreBackend = os.Getenv(ENV_STORE_BACKEND)
	switch conf.StoreBackend {
	case StoreBackendLocal:
		conf.LocalDBConfig = getLocalDBConfig()
	case StoreBackendMongoDB:
		conf.StudyDBConfig = getStudyDBConfig()
	default:
		logger.Error.Fatalf("unknown store backend: %s (expected %s or %s)", conf.StoreBackend, StoreBackendLocal, StoreBackendMongoDB)
	}

	return conf
}

func getLogLevel() logger.LogLevel {
	switch os.Getenv(ENV_LOG_LEVEL) {
	case "debug":
		return logger.LEVEL_DEBUG
	case "info":
		return logger.LEVEL_INFO
	case "error":
		return logger.LEVEL_ERROR
	case "warning":
		return logger.LEVEL_WARNING
	default:
		return logger.LEVEL_INFO
	}
}

func getLocalDBConfig() types.LocalDBConfig {
	path := os.Getenv(ENV_LOCAL_DB_PATH)
	if path == "" {
		path = DefaultLocalDBPath
	}
	timeout, err := strconv.Atoi(os.Getenv(ENV_DB_TIMEOUT))
	if err != nil {
		timeout = DefaultDBTimeout
	}
	return types.LocalDBConfig{
		Path:    path,
		Timeout: timeout,
	}
}

func getStudyDBConfig() types.DBConfig {
	connStr := os.Getenv(ENV_STUDY_DB_CONNECTION_STR)
	username := os.Getenv(ENV_STUDY_DB_USERNAME)
	password := os.Getenv(ENV_STUDY_DB_PASSWORD)
	prefix := os.Getenv(ENV_STUDY_DB_CONNECTION_PREFIX) // Used in test mode
	if connStr == "" || username == "" || password == "" {
		logger.Error.Fatal("Couldn't read DB credentials.")
	}
	URI := fmt.Sprintf(`mongodb%s://%s:%s@%s`, prefix, username, password, connStr)

	var err error
	Timeout, err := strconv.Atoi(os.Getenv(ENV_DB_TIMEOUT))
	if err != nil {
		logger.Error.Fatal("DB_TIMEOUT: " + err.Error())
	}
	IdleConnTimeout, err := strconv.Atoi(os.Getenv(ENV_DB_IDLE_CONN_TIMEOUT))
	if err != nil {
		logger.Error.Fatal("DB_IDLE_CONN_TIMEOUT" + err.Error())
	}
	mps, err := strconv.Atoi(os.Getenv(ENV_DB_MAX_POOL_SIZE))
	MaxPoolSize := uint64(mps)
	if err != nil {
		logger.Error.Fatal("DB_MAX_POOL_SIZE: " + err.Error())
	}

	DBNamePrefix := os.Getenv(ENV_DB_NAME_PREFIX)

	return types.DBConfig{
		URI:             URI,
		Timeout:         Timeout,
		IdleConnTimeout: IdleConnTimeout,
		MaxPoolSize:     MaxPoolSize,
		DBNamePrefix:    DBNamePrefix,
	}
}
