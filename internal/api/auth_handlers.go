package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"cosync/internal/auth"
	"cosync/internal/store"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (d Deps) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "please provide all required fields"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Str("module", "api.auth").Msg("hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during registration"})
		return
	}

	user, err := d.Users.Create(req.Email, req.Username, hash)
	if errors.Is(err, store.ErrUserExists) {
		c.JSON(http.StatusConflict, gin.H{"message": "user with this email already exists"})
		return
	} else if err != nil {
		log.Error().Err(err).Str("module", "api.auth").Msg("create user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during registration"})
		return
	}

	token, err := d.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Str("module", "api.auth").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during registration"})
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

func (d Deps) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "please provide email and password"})
		return
	}

	user, err := d.Users.FindByEmail(req.Email)
	if errors.Is(err, store.ErrUserNotFound) || (err == nil && !auth.ComparePassword(req.Password, user.PasswordHash)) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	} else if err != nil {
		log.Error().Err(err).Str("module", "api.auth").Msg("find user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during login"})
		return
	}

	token, err := d.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Str("module", "api.auth").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during login"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

// requireSession verifies the bearer token and stashes the claims for
// downstream handlers.
func (d Deps) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
			return
		}
		claims, err := d.Tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}

func (d Deps) me(c *gin.Context) {
	claims := c.MustGet("claims").(*auth.Claims)
	c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "username": claims.Username})
}
