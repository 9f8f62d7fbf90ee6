package httpapi

import (
	"errors"
	"net/http"
	"time"

	"call-console/internal/audit"
	"call-console/internal/auth"
	"call-console/internal/console"
	"call-console/internal/records"
	"call-console/internal/reporting"
	"call-console/internal/toolkit"
	"call-console/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Sessions *console.Manager
	Auth     *auth.Manager

	// Audit and Reports are optional; nil disables them.
	Audit   *audit.Service
	Reports *reporting.Service
}

// auditSession best-effort logs a session lifecycle action with the caller's
// identity. Failures are swallowed; audit never blocks the request path.
func (h Handlers) auditSession(c *gin.Context, typ audit.EventType, sessionID, recordID string) {
	if h.Audit == nil {
		return
	}
	ctx := c.Request.Context()
	agentID, _ := auth.AgentID(ctx)
	role, _ := auth.Role(ctx)
	_ = h.Audit.LogSession(ctx, typ, sessionID, recordID, agentID, role)
}

// --- Auth ---

type loginRequest struct {
	AgentID   string `json:"agent_id"`
	Extension string `json:"extension"`
	Role      string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.AgentID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "agent_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.AgentID, req.Extension, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Sessions ---

type attachRequest struct {
	RecordID string `json:"record_id"`
}

// AttachSession creates a console session for a call record.
func (h Handlers) AttachSession(c *gin.Context) {
	log := logger.FromGin(c)

	var req attachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.RecordID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "record_id required"})
		return
	}

	s, err := h.Sessions.Attach(c.Request.Context(), req.RecordID)
	if errors.Is(err, records.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	if err != nil {
		log.Error("attach failed", "record_id", req.RecordID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "attach failed"})
		return
	}

	h.auditSession(c, audit.EventTypeSessionAttach, s.ID, req.RecordID)
	c.JSON(http.StatusCreated, gin.H{
		"session_id":   s.ID,
		"display_line": s.DisplayLine(),
		"state":        s.Snapshot(),
	})
}

// DetachSession tears a session down.
func (h Handlers) DetachSession(c *gin.Context) {
	id := c.Param("session_id")
	s, err := h.Sessions.Get(id)
	if err == nil {
		h.auditSession(c, audit.EventTypeSessionDetach, s.ID, s.Record.RecordID)
	}
	err = h.Sessions.Detach(id)
	if errors.Is(err, console.ErrSessionNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSession returns the observable engine state.
func (h Handlers) GetSession(c *gin.Context) {
	s, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":   s.ID,
		"display_line": s.DisplayLine(),
		"state":        s.Snapshot(),
	})
}

// ResetSession clears call state for a new call on the same record.
func (h Handlers) ResetSession(c *gin.Context) {
	s, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	s.ResetSession()
	h.auditSession(c, audit.EventTypeSessionReset, s.ID, s.Record.RecordID)
	c.JSON(http.StatusOK, gin.H{"state": s.Snapshot()})
}

// GetDebugLog returns the session's diagnostic ring buffer, newest first.
func (h Handlers) GetDebugLog(c *gin.Context) {
	s, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": s.Debug().Entries()})
}

// --- Commands ---

// Command invokes a toolkit control command on the session's call.
// Accepted-but-unconfirmed commands return accepted=true with state
// unchanged; the confirming event updates state later.
func (h Handlers) Command(c *gin.Context) {
	log := logger.FromGin(c)

	s, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	ctx := c.Request.Context()
	var accepted bool
	cmd := c.Param("command")
	switch cmd {
	case toolkit.CommandHold:
		accepted, err = s.Hold(ctx)
	case toolkit.CommandResume:
		accepted, err = s.Resume(ctx)
	case toolkit.CommandMute:
		accepted, err = s.Mute(ctx)
	case toolkit.CommandUnmute:
		accepted, err = s.Unmute(ctx)
	case toolkit.CommandEndCall:
		accepted, err = s.EndCall(ctx)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown command"})
		return
	}

	switch {
	case errors.Is(err, console.ErrToolkitUnavailable), errors.Is(err, console.ErrCallRefMissing):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Warn("command failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "toolkit command failed"})
		return
	}

	if h.Audit != nil {
		ctx := c.Request.Context()
		agentID, _ := auth.AgentID(ctx)
		role, _ := auth.Role(ctx)
		_ = h.Audit.LogCommand(ctx, s.ID, s.Record.RecordID, agentID, role, cmd, accepted)
	}

	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "state": s.Snapshot()})
}

// --- Reports ---

// CallsSummary aggregates finished-call metrics over a time range given as
// RFC 3339 "from" and "to" query parameters.
func (h Handlers) CallsSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "reporting not enabled"})
		return
	}
	from, errFrom := time.Parse(time.RFC3339, c.Query("from"))
	to, errTo := time.Parse(time.RFC3339, c.Query("to"))
	if errFrom != nil || errTo != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC 3339 timestamps"})
		return
	}

	sum, err := h.Reports.Summary(c.Request.Context(), reporting.SummaryRequest{
		Range: reporting.TimeRange{From: from, To: to},
	})
	if errors.Is(err, reporting.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// --- Webhooks ---

type toolkitEventRequest struct {
	Name   string `json:"name"`
	Detail any    `json:"detail,omitempty"`
}

// ToolkitEvent receives one named notification from the toolkit and feeds
// it into the session's engine. Unknown names and malformed payloads are
// logged and swallowed; the endpoint always acknowledges delivery for
// sessions that exist.
func (h Handlers) ToolkitEvent(c *gin.Context) {
	s, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req toolkitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	s.HandleEvent(req.Name, req.Detail)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
