package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/service"
)

// Verifier is the part of the verification service the handlers need
type Verifier interface {
	Verify(ctx context.Context, req core.Request) core.Outcome
}

// VerifyRequest is the body of POST /verify
type VerifyRequest struct {
	LiAt       *string `json:"li_at" binding:"required"`
	JSessionID *string `json:"jsessionid"`
}

// VerifyResponse is the body returned for every well-formed verification request
type VerifyResponse struct {
	Status       core.Status `json:"status"`
	Username     *string     `json:"username"`
	FullName     *string     `json:"full_name"`
	ProfileURL   *string     `json:"profile_url"`
	ErrorMessage *string     `json:"error_message"`
}

// NewVerifyResponse renders an outcome, using null for absent values
func NewVerifyResponse(o core.Outcome) VerifyResponse {
	return VerifyResponse{
		Status:       o.Status,
		Username:     optional(o.Profile.Username),
		FullName:     optional(o.Profile.FullName),
		ProfileURL:   optional(o.Profile.ProfileURL),
		ErrorMessage: optional(o.Message),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Handlers contains HTTP handlers for the verification endpoints
type Handlers struct {
	verifier Verifier
	health   service.VerifierHealth
}

// NewHandlers creates new handlers
func NewHandlers(verifier Verifier, health service.VerifierHealth) *Handlers {
	return &Handlers{
		verifier: verifier,
		health:   health,
	}
}

// Verify handles the verification request
func (h *Handlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}

	cookies := core.CookiePair{Session: *req.LiAt}
	if req.JSessionID != nil {
		cookies.Secondary = *req.JSessionID
	}

	outcome := h.verifier.Verify(c.Request.Context(), core.Request{
		Cookies:       cookies,
		CorrelationID: c.GetString(correlationKey),
	})

	c.JSON(http.StatusOK, NewVerifyResponse(outcome))
}

// Health reports liveness only
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// VerifierHealth reports which verification strategy is active
func (h *Handlers) VerifierHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.health)
}
