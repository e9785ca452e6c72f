package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/coneno/logger"
	"github.com/gin-gonic/gin"

	mw "github.com/cfstudy/checklist-backend/pkg/http/middlewares"
	"github.com/cfstudy/checklist-backend/pkg/http/utils"
	"github.com/cfstudy/checklist-backend/pkg/studyplan"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

func (h *HttpEndpoints) AddParticipantPortalAPI(rg *gin.RouterGroup) {
	portal := rg.Group("/portal")

	portal.Use(mw.HasValidAPIKey(h.apiKeys))
	{
		portal.POST("/register", mw.RequirePayload(), h.registerParticipant)

		portal.GET("/:code", h.getParticipantPortal)
		portal.GET("/:code/report", h.downloadParticipantReport)
		portal.POST("/:code/sessions/:session/surveys/:stepID/submitted", h.participantSurveySubmitted)
	}
}

type RegistrationRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (h *HttpEndpoints) registerParticipant(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Self-registration never picks a group or RA; the group is balanced
	// automatically and RA initials are captured at the first session.
	participant, err := h.store.CreateParticipant(types.ParticipantCreate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("participant %s registered", participant.Code)

	c.JSON(http.StatusCreated, buildParticipantView(&participant))
}

func (h *HttpEndpoints) getParticipantPortal(c *gin.Context) {
	code := normalizeCode(c.Param("code"))

	participant, err := h.store.FindParticipantByCode(code)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

// participantSurveySubmitted records that the participant claims to have
// submitted the linked survey. The backend never contacts the survey host;
// the mark is the only evidence kept.
func (h *HttpEndpoints) participantSurveySubmitted(c *gin.Context) {
	code := normalizeCode(c.Param("code"))
	stepID := c.Param("stepID")

	session, err := utils.ParseSessionNumber(c.Param("session"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.store.FindParticipantByCode(code)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	step, ok := studyplan.FindStep(session, participant.Group, stepID)
	if !ok || step.Kind != studyplan.STEP_KIND_SURVEY || step.Actor != studyplan.ACTOR_PARTICIPANT {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a participant survey step for this session"})
		return
	}

	participant, err = h.store.MarkStep(code, session, stepID, "", 0)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("participant %s marked survey step %s", code, stepID)

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUnknownStep), errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
