package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/recipebox/internal/accounts"
	"github.com/jon4hz/recipebox/internal/api/models"
	"github.com/jon4hz/recipebox/internal/auth"
	"github.com/jon4hz/recipebox/internal/database"
)

// UserHandler serves sign-up, token issuing and the caller's profile.
type UserHandler struct {
	db       database.DB
	secret   []byte
	tokenTTL time.Duration
}

func NewUser(db database.DB, secretKey string, tokenTTL time.Duration) *UserHandler {
	return &UserHandler{
		db:       db,
		secret:   []byte(secretKey),
		tokenTTL: tokenTTL,
	}
}

type createUserRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
	Name     string `json:"name" form:"name"`
}

type tokenRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name" form:"name"`
	Password *string `json:"password" form:"password"`
}

// Create registers a new user.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "a valid email and a password are required")
		return
	}
	if writeAccountError(c, "", accounts.ValidatePassword(req.Password)) {
		return
	}

	user, err := accounts.CreateUser(c.Request.Context(), h.db, req.Email, req.Password, accounts.WithName(req.Name))
	if writeAccountError(c, "failed to create user", err) {
		return
	}
	c.JSON(http.StatusCreated, models.ToUser(user))
}

// Token exchanges an email and password for a bearer token.
func (h *UserHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	user, err := accounts.Authenticate(c.Request.Context(), h.db, req.Email, req.Password)
	if writeAccountError(c, "failed to authenticate user", err) {
		return
	}

	token, err := auth.GenerateToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		internalError(c, "failed to issue token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
		return
	}
	c.JSON(http.StatusOK, models.ToUser(user))
}

// UpdateMe changes the name and/or password of the authenticated user.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var update database.ProfileUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}
	if req.Password != nil {
		if writeAccountError(c, "", accounts.ValidatePassword(*req.Password)) {
			return
		}
		if err := accounts.SetPassword(user, *req.Password); err != nil {
			internalError(c, "failed to set password", err)
			return
		}
		update.PasswordHash = &user.PasswordHash
	}

	ctx := c.Request.Context()
	if err := h.db.UpdateProfile(ctx, user.ID, update); err != nil {
		internalError(c, "failed to update user", err)
		return
	}
	updated, err := h.db.GetUserByID(ctx, user.ID)
	if err != nil {
		internalError(c, "failed to reload user", err)
		return
	}
	c.JSON(http.StatusOK, models.ToUser(updated))
}
