package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"essenza/internal/core/apperror"
	"essenza/internal/domain/auth"
)

// Credential is a configured API user.
type Credential struct {
	UserID   string
	Email    string
	Password string
	Roles    []string
}

// AuthHandler issues access tokens for configured credentials.
type AuthHandler struct {
	*BaseHandler
	jwt   *auth.JWTService
	users map[string]Credential
}

func NewAuthHandler(base *BaseHandler, jwt *auth.JWTService, users []Credential) *AuthHandler {
	byEmail := make(map[string]Credential, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	return &AuthHandler{BaseHandler: base, jwt: jwt, users: byEmail}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login validates credentials and returns an access token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, ok := h.users[req.Email]
	if !ok || subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		h.Error(c, apperror.NewUnauthorized("invalid credentials"))
		return
	}

	token, expiresAt, err := h.jwt.GenerateAccessToken(user.UserID, user.Email, user.Roles)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"expiresAt":   expiresAt,
	})
}
