package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sublymus/sublyadmin/internal/fleet"
)

// StoreView exposes the snapshot store to the API read-only.
type StoreView interface {
	View() fleet.View
}

// PollStatus exposes the poller's health to the API.
type PollStatus interface {
	LastErr() error
	LastPoll() time.Time
}

// Dispatcher submits operator control commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd fleet.Command) error
	DispatchGroup(ctx context.Context, kind fleet.Kind, action fleet.Action) error
}

// Monitoring bundles the engine handles the monitoring routes work with.
// It is built in main and passed to RegisterRoutes explicitly — no
// module-level engine state.
type Monitoring struct {
	Store      StoreView
	Poller     PollStatus
	Dispatcher Dispatcher
}

// handleStats returns the projected fleet view.
//
//	GET /api/monitoring?type=app&search=api
//
// Response keeps the {services, host} contract the frontend renders,
// plus tab counts and poll health.
func (m *Monitoring) handleStats(c *gin.Context) {
	filter := fleet.Filter{
		Kind:   fleet.Kind(c.DefaultQuery("type", string(fleet.KindAll))),
		Search: c.Query("search"),
	}
	if filter.Kind != fleet.KindAll && !filter.Kind.Valid() {
		errorJSON(c, http.StatusBadRequest, "unknown service type")
		return
	}

	view := m.Store.View()
	resp := gin.H{
		"services": fleet.Project(view, filter),
		"host":     view.Host,
		"counts":   fleet.CountByKind(view),
	}
	if last := m.Poller.LastPoll(); !last.IsZero() {
		resp["last_poll"] = last.UTC()
	}
	if err := m.Poller.LastErr(); err != nil {
		resp["poll_error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// handleAction submits a single-service control command.
//
//	POST /api/monitoring/action
//	Body: { "id": "svc1", "type": "app", "action": "scale", "replicas": 2 }
func (m *Monitoring) handleAction(c *gin.Context) {
	var cmd fleet.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := m.Dispatcher.Dispatch(c.Request.Context(), cmd); err != nil {
		status := http.StatusBadGateway
		if err := cmd.Validate(); err != nil {
			status = http.StatusUnprocessableEntity
		}
		errorJSON(c, status, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// handleGroupAction submits a control command for a whole service kind.
//
//	POST /api/monitoring/group-action
//	Body: { "type": "store", "action": "stop" }
func (m *Monitoring) handleGroupAction(c *gin.Context) {
	var body struct {
		Type   fleet.Kind   `json:"type"`
		Action fleet.Action `json:"action"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := m.Dispatcher.DispatchGroup(c.Request.Context(), body.Type, body.Action); err != nil {
		status := http.StatusBadGateway
		if err := (fleet.Command{Kind: body.Type, Action: body.Action}).ValidateGroup(); err != nil {
			status = http.StatusUnprocessableEntity
		}
		errorJSON(c, status, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
