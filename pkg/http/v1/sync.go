package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/cfstudy/checklist-backend/pkg/http/middlewares"
)

func (h *HttpEndpoints) AddSyncStatusAPI(rg *gin.RouterGroup) {
	rg.GET("/sync-status", mw.HasValidAPIKey(h.apiKeys), h.getSyncStatus)
}

// getSyncStatus feeds the clients' sync indicator from the background
// runner's latest store probe.
func (h *HttpEndpoints) getSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.syncRunner.Status())
}
