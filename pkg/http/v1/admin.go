package v1

import (
	"net/http"
	"time"

	"github.com/coneno/logger"
	"github.com/gin-gonic/gin"

	mw "github.com/cfstudy/checklist-backend/pkg/http/middlewares"
	"github.com/cfstudy/checklist-backend/pkg/jwt"
	"github.com/cfstudy/checklist-backend/pkg/progress"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

// groupImbalanceTolerance is how far apart the group counts may drift before
// the dashboard flags the study as imbalanced.
const groupImbalanceTolerance = 2

func (h *HttpEndpoints) AddAdminAPI(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")

	admin.Use(mw.HasValidAPIKey(h.apiKeys))
	admin.Use(mw.ValidateToken())
	admin.Use(mw.IsAdmin())
	{
		admin.GET("/stats", h.getStudyStats)
		admin.GET("/participants", h.getAllParticipants)
		admin.POST("/participants", mw.RequirePayload(), h.adminCreateParticipant)
		admin.GET("/participants/:code", h.adminGetParticipant)
		admin.PUT("/participants/:code", mw.RequirePayload(), h.adminUpdateParticipant)
		admin.PUT("/participants/:code/status", mw.RequireQueryParams([]string{"value"}), h.adminForceStatus)
		admin.GET("/export", h.exportStudyData)
		admin.POST("/import", mw.RequirePayload(), h.importStudyData)
	}
}

// AdminParticipantSummary is one dashboard table row.
type AdminParticipantSummary struct {
	Code             string                       `json:"code"`
	FirstName        string                       `json:"firstName"`
	LastName         string                       `json:"lastName"`
	Group            string                       `json:"group"`
	Status           string                       `json:"status"`
	Session1Progress progress.SessionProgressInfo `json:"session1Progress"`
	Session2Progress progress.SessionProgressInfo `json:"session2Progress"`
	Session1Date     string                       `json:"session1Date"`
	Session2Date     string                       `json:"session2Date"`
	RAInitials       string                       `json:"raInitials"`
}

func (h *HttpEndpoints) getStudyStats(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)

	participants, err := h.store.FindAllParticipants()
	if err != nil {
		logger.Error.Printf("%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total := len(participants)
	session1Done := 0
	session2Started := 0
	complete := 0
	review := 0
	noReview := 0
	for _, p := range participants {
		switch p.Status {
		case types.STATUS_SESSION1_DONE:
			session1Done++
		case types.STATUS_SESSION2_LIVE:
			session1Done++
			session2Started++
		case types.STATUS_COMPLETE:
			session1Done++
			session2Started++
			complete++
		}
		switch p.Group {
		case types.GROUP_REVIEW:
			review++
		case types.GROUP_NO_REVIEW:
			noReview++
		}
	}

	reviewPercent := 50
	if total > 0 {
		reviewPercent = review * 100 / total
	}
	imbalance := review - noReview
	if imbalance < 0 {
		imbalance = -imbalance
	}
	logger.Info.Printf("study stats fetched by '%s'", token.ID)

	c.JSON(http.StatusOK, gin.H{
		"total":           total,
		"session1Done":    session1Done,
		"session2Started": session2Started,
		"complete":        complete,
		"review":          review,
		"noReview":        noReview,
		"reviewPercent":   reviewPercent,
		"imbalance":       imbalance,
		"balanced":        imbalance <= groupImbalanceTolerance,
	})
}

func (h *HttpEndpoints) getAllParticipants(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)

	participants, err := h.store.FindAllParticipants()
	if err != nil {
		logger.Error.Printf("%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("participant list fetched by '%s'", token.ID)

	summaries := []AdminParticipantSummary{}
	for i := range participants {
		p := &participants[i]
		summaries = append(summaries, AdminParticipantSummary{
			Code:             p.Code,
			FirstName:        p.FirstName,
			LastName:         p.LastName,
			Group:            p.Group,
			Status:           p.Status,
			Session1Progress: progress.SessionProgress(p, 1),
			Session2Progress: progress.SessionProgress(p, 2),
			Session1Date:     p.Session1.Date,
			Session2Date:     p.Session2.Date,
			RAInitials:       p.RAInitials,
		})
	}

	c.JSON(http.StatusOK, gin.H{"participants": summaries})
}

func (h *HttpEndpoints) adminGetParticipant(c *gin.Context) {
	code := normalizeCode(c.Param("code"))

	participant, err := h.store.FindParticipantByCode(code)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

func (h *HttpEndpoints) adminCreateParticipant(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)

	var req types.ParticipantCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.store.CreateParticipant(req)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("participant %s created by '%s'", participant.Code, token.ID)

	c.JSON(http.StatusCreated, buildParticipantView(&participant))
}

func (h *HttpEndpoints) adminUpdateParticipant(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)
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
	logger.Info.Printf("participant %s edited by '%s'", code, token.ID)

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

// adminForceStatus writes the status directly, e.g. to drop a participant.
// This is the one path that bypasses status derivation; the next step
// mutation recomputes over it.
func (h *HttpEndpoints) adminForceStatus(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)
	code := normalizeCode(c.Param("code"))
	status := c.Query("value")

	participant, err := h.store.ForceStatus(code, status)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("status of %s forced to '%s' by '%s'", code, status, token.ID)

	c.JSON(http.StatusOK, buildParticipantView(&participant))
}

type StudyDataDump struct {
	Participants map[string]types.Participant `json:"participants"`
	ExportedAt   int64                        `json:"exportedAt"`
}

func (h *HttpEndpoints) exportStudyData(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)

	participants, err := h.store.FindAllParticipants()
	if err != nil {
		logger.Error.Printf("%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("study data exported by '%s'", token.ID)

	dump := StudyDataDump{
		Participants: map[string]types.Participant{},
		ExportedAt:   time.Now().Unix(),
	}
	for _, p := range participants {
		dump.Participants[p.Code] = p
	}

	c.JSON(http.StatusOK, dump)
}

func (h *HttpEndpoints) importStudyData(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)

	var dump StudyDataDump
	if err := c.ShouldBindJSON(&dump); err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participants := make([]types.Participant, 0, len(dump.Participants))
	for code, p := range dump.Participants {
		if p.Code == "" {
			p.Code = code
		}
		participants = append(participants, p)
	}

	imported, err := h.store.ImportParticipants(participants)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("%d participants imported by '%s'", imported, token.ID)

	c.JSON(http.StatusOK, gin.H{"imported": imported})
}
