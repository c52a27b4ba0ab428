package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/apiserver/middleware"
	"github.com/harambee/studentliving/internal/common/dto"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/lifecycle"
)

func (h *Handler) issue(c *gin.Context, status int, user *database.User) {
	token, expires, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, gin.H{
		"token":     token,
		"expiresAt": expires,
		"user":      user,
	})
}

// Login handles user login by username or email
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bind(c, &req) {
		return
	}
	user, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, lifecycle.ErrBadCredentials) {
			h.fail(c, errorx.Unauthenticated(err.Error()))
			return
		}
		h.fail(c, err)
		return
	}
	h.issue(c, http.StatusOK, user)
}

// Register creates a student account and signs it in
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	in := userInput(req)
	if in.Locale == "" {
		in.Locale = middleware.LanguageFrom(c)
	}
	user, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issue(c, http.StatusCreated, user)
}

// Me returns the authenticated user
func (h *Handler) Me(c *gin.Context) {
	p := principal(c)
	user, err := h.svc.GetUser(c.Request.Context(), p, p.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, user)
}

func userInput(req dto.RegisterRequest) lifecycle.UserInput {
	return lifecycle.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Locale:    req.Locale,
	}
}
