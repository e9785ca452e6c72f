package v1

import (
	"github.com/cfstudy/checklist-backend/pkg/db"
	"github.com/cfstudy/checklist-backend/pkg/runner"
)

type HttpEndpoints struct {
	store         db.ParticipantStore
	syncRunner    *runner.Runner
	apiKeys       []string
	adminPassword string
}

func NewHTTPHandler(
	store db.ParticipantStore,
	syncRunner *runner.Runner,
	apiKeys []string,
	adminPassword string,
) *HttpEndpoints {
	return &HttpEndpoints{
		store:         store,
		syncRunner:    syncRunner,
		apiKeys:       apiKeys,
		adminPassword: adminPassword,
	}
}
