package v1

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/coneno/logger"
	"github.com/gin-gonic/gin"

	mw "github.com/cfstudy/checklist-backend/pkg/http/middlewares"
	"github.com/cfstudy/checklist-backend/pkg/http/utils"
	"github.com/cfstudy/checklist-backend/pkg/jwt"
)

func (h *HttpEndpoints) AddAuthAPI(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")

	auth.POST("/login", mw.HasValidAPIKey(h.apiKeys), mw.RequirePayload(), h.adminLogin)
	auth.POST("/logout", h.logout)
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *HttpEndpoints) adminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error.Printf("error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		logger.Warning.Println("failed admin login attempt")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	token, err := jwt.GenerateNewToken(
		"admin",
		utils.TokenMaxAge*time.Second,
		[]string{jwt.ROLE_ADMIN},
	)
	if err != nil {
		logger.Error.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": token, "expiresIn": utils.TokenMaxAge})
}

func (h *HttpEndpoints) logout(c *gin.Context) {
	// tokens are short-lived and stateless; nothing to invalidate server side
	c.JSON(http.StatusOK, gin.H{"msg": "logout successful"})
}
