package fleet

import (
	"errors"
	"fmt"
)

// Action is a control verb applied to a service or group.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
	ActionScale   Action = "scale"
)

// Valid reports whether a names a known control action.
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionStop, ActionRestart, ActionScale:
		return true
	}
	return false
}

// Command is a user-initiated control request. Single-entity commands
// carry an ID; group commands leave it empty and rely on Kind (which may
// be KindAll). Replicas is required for scale and forbidden otherwise.
// Commands are fire-and-forget: they are never stored.
type Command struct {
	ID       string `json:"id,omitempty"`
	Kind     Kind   `json:"type"`
	Action   Action `json:"action"`
	Replicas *int   `json:"replicas,omitempty"`
}

// Validation failures are rejected before any network call is made.
var (
	ErrMissingTarget    = errors.New("command requires a target service id")
	ErrMissingReplicas  = errors.New("scale requires a replica count")
	ErrNegativeReplicas = errors.New("replica count must be non-negative")
)

// Validate checks a single-entity command locally.
func (c Command) Validate() error {
	if c.ID == "" {
		return ErrMissingTarget
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown service kind %q", c.Kind)
	}
	if !c.Action.Valid() {
		return fmt.Errorf("unknown action %q", c.Action)
	}
	return c.validateReplicas()
}

// ValidateGroup checks a group command locally. Group selectors accept
// KindAll in addition to concrete kinds; scale is not a group action.
func (c Command) ValidateGroup() error {
	if c.Kind != KindAll && !c.Kind.Valid() {
		return fmt.Errorf("unknown group kind %q", c.Kind)
	}
	if !c.Action.Valid() {
		return fmt.Errorf("unknown action %q", c.Action)
	}
	if c.Action == ActionScale {
		return errors.New("scale cannot be applied to a group")
	}
	return nil
}

func (c Command) validateReplicas() error {
	if c.Action != ActionScale {
		return nil
	}
	if c.Replicas == nil {
		return ErrMissingReplicas
	}
	if *c.Replicas < 0 {
		return ErrNegativeReplicas
	}
	return nil
}
