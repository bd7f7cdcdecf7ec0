package api

import (
	"net/http"

	"tasleem/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.svc.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSession(c, token)
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSession(c, token)
	c.JSON(http.StatusOK, user)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		h.respondError(c, err)
		return
	}

	h.clearSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "تم تسجيل الخروج"})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req service.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Auth.UpdateProfile(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.Auth.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) userJournal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	entries, err := h.svc.Journal.ListJournal(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
