package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
	"github.com/gravadigital/pulsepoll-api/internal/response"
	"github.com/gravadigital/pulsepoll-api/internal/services"
)

const adminTokenTTL = time.Hour * 24

// AdminHandler serves the administrative endpoints: token issuing and the
// full vote reset.
type AdminHandler struct {
	service *services.Ingestion
	config  *config.Config
	log     *log.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service *services.Ingestion, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		service: service,
		config:  cfg,
		log:     logger.Handler("admin"),
	}
}

// LoginRequest is the admin login payload
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	if h.config.Admin.PasswordHash == "" || h.config.Admin.JWTSecret == "" {
		response.ErrorResponseWithMessage(c, http.StatusServiceUnavailable, "Admin access is not configured")
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.config.Admin.PasswordHash), []byte(req.Password)); err != nil {
		h.log.Warn("admin login rejected", "remote_addr", c.ClientIP())
		response.UnauthorizedError(c, "Invalid credentials")
		return
	}

	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(adminTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.config.Admin.JWTSecret))
	if err != nil {
		h.log.Error("failed to sign admin token", "error", err)
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", gin.H{"token": token})
}

// Reset handles POST /api/admin/reset: wipes every vote and broadcasts a
// reset event per poll.
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.service.ResetAll(c.Request.Context()); err != nil {
		h.log.Error("reset failed", "error", err)
		response.InternalServerError(c, "Failed to reset votes")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "All votes cleared", nil)
}

// RequireAdmin returns middleware that only admits requests carrying a
// valid admin bearer token.
func (h *AdminHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			response.UnauthorizedError(c, "Bearer token required")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.config.Admin.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			response.UnauthorizedError(c, "Invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["role"] != "admin" {
			response.UnauthorizedError(c, "Invalid token")
			c.Abort()
			return
		}

		c.Next()
	}
}
