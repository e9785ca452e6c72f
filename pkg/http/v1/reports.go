package v1

import (
	"bytes"
	"net/http"

	"github.com/coneno/logger"
	"github.com/gin-gonic/gin"

	"github.com/cfstudy/checklist-backend/pkg/export"
	"github.com/cfstudy/checklist-backend/pkg/jwt"
	mw "github.com/cfstudy/checklist-backend/pkg/http/middlewares"
)

func (h *HttpEndpoints) AddReportsAPI(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")

	reports.Use(mw.HasValidAPIKey(h.apiKeys))
	reports.Use(mw.ValidateToken())
	reports.Use(mw.IsAdmin())
	{
		reports.GET("/study-table", h.downloadStudyTable)
	}
}

// downloadParticipantReport serves the per-participant CSV. It hangs off the
// portal group so participants can fetch their own report with just their
// code.
func (h *HttpEndpoints) downloadParticipantReport(c *gin.Context) {
	code := normalizeCode(c.Param("code"))

	participant, err := h.store.FindParticipantByCode(code)
	if err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(storeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	content := export.ParticipantReport(&participant)
	serveCSV(c, content, export.ParticipantReportFilename(code))
}

func (h *HttpEndpoints) downloadStudyTable(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwt.UserClaims)

	participants, err := h.store.FindAllParticipants()
	if err != nil {
		logger.Error.Printf("%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("study table downloaded by '%s'", token.ID)

	content := export.StudyTable(participants)
	serveCSV(c, content, export.StudyTableFilename())
}

func serveCSV(c *gin.Context, content []byte, filename string) {
	reader := bytes.NewReader(content)
	contentLength := int64(len(content))
	contentType := "text/csv"

	extraHeaders := map[string]string{
		"Content-Disposition": `attachment; filename=` + filename,
	}

	c.DataFromReader(http.StatusOK, contentLength, contentType, reader, extraHeaders)
}
