package v1

import (
	"net/http"

	"github.com/coneno/logger"
	"github.com/gin-gonic/gin"

	mw "github.com/cfstudy/checklist-backend/pkg/http/middlewares"
	"github.com/cfstudy/checklist-backend/pkg/http/utils"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

func (h *HttpEndpoints) AddCollectorAPI(rg *gin.RouterGroup) {
	collector := rg.Group("/collector")

	collector.Use(mw.HasValidAPIKey(h.apiKeys))
	{
		collector.GET("/participants/:code", h.collectorLoadParticipant) // ?ra=AJ
		collector.PUT("/participants/:code", mw.RequirePayload(), h.collectorUpdateParticipant)
		collector.POST("/participants/:code/sessions/:session/steps/:stepID", mw.RequirePayload(), h.collectorMarkStep)
		collector.DELETE("/participants/:code/sessions/:session/steps/:stepID", h.collectorUnmarkStep)
	}
}

// collectorLoadParticipant loads the full checklist for the session manager.
// When RA initials ride along they are stamped onto the record, mirroring
// how the collector identifies themselves when loading a participant.
func (h *HttpEndpoints) collectorLoadParticipant(c *gin.Context) {
	code := normalizeCode(c.Param("code"))

	participant, err := h.store.FindParticipantByCode(code)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	if ra := c.DefaultQuery("ra", ""); ra != "" && ra != participant.RAInitials {
		participant, err = h.store.UpdateParticipant(code, types.ParticipantUpdate{RAInitials: &ra})
		if err != nil {
			logger.Error.Printf("error: %v", err)
			c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

func (h *HttpEndpoints) collectorUpdateParticipant(c *gin.Context) {
	code := normalizeCode(c.Param("code"))

	var patch types.ParticipantUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.store.UpdateParticipant(code, patch)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("participant %s updated by collector", code)

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

type MarkStepRequest struct {
	Note string `json:"note"`
	// CompletedAt overrides the completion instant (unix seconds); zero
	// means "now". Timestamp steps send zero to record the exact moment the
	// RA hits the button.
	CompletedAt int64 `json:"completedAt"`
}

func (h *HttpEndpoints) collectorMarkStep(c *gin.Context) {
	code := normalizeCode(c.Param("code"))
	stepID := c.Param("stepID")

	session, err := utils.ParseSessionNumber(c.Param("session"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req MarkStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.store.MarkStep(code, session, stepID, req.Note, req.CompletedAt)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("step %s (session %d) marked for %s", stepID, session, code)

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

func (h *HttpEndpoints) collectorUnmarkStep(c *gin.Context) {
	code := normalizeCode(c.Param("code"))
	stepID := c.Param("stepID")

	session, err := utils.ParseSessionNumber(c.Param("session"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.store.UnmarkStep(code, session, stepID)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("step %s (session %d) unmarked for %s", stepID, session, code)

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}
