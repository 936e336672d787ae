// Package control turns operator intent into backend calls. The
// dispatcher validates commands locally, sends exactly one request per
// command, and asks the poller for a fresh cycle afterwards — it never
// touches the snapshot store itself, so the console only ever shows
// backend-confirmed state.
package control

import (
	"context"
	"fmt"
	"log"

	"github.com/sublymus/sublyadmin/internal/fleet"
)

// Actor submits control commands to the platform backend.
// *backend.Client satisfies it.
type Actor interface {
	PerformAction(ctx context.Context, cmd fleet.Command) error
	PerformGroupAction(ctx context.Context, kind fleet.Kind, action fleet.Action) error
}

// Repoller requests an out-of-cadence poll. *poller.Poller satisfies it.
type Repoller interface {
	Kick()
}

// Dispatcher sends control commands and schedules the follow-up poll
// that makes their effect visible.
type Dispatcher struct {
	actor  Actor
	poller Repoller
}

// New creates a dispatcher over the given backend actor and poller.
func New(actor Actor, poller Repoller) *Dispatcher {
	return &Dispatcher{actor: actor, poller: poller}
}

// Dispatch validates and sends a single-service command. Invalid commands
// are rejected before any network call. On success the poller is kicked;
// the store shows pre-action state until that poll confirms the change.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd fleet.Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	if err := d.actor.PerformAction(ctx, cmd); err != nil {
		return err
	}
	log.Printf("[control] %s %s (%s) accepted", cmd.Action, cmd.ID, cmd.Kind)
	d.poller.Kick()
	return nil
}

// DispatchGroup validates and sends a group command; the backend fans it
// out to every service of the kind (KindAll covers the whole fleet).
func (d *Dispatcher) DispatchGroup(ctx context.Context, kind fleet.Kind, action fleet.Action) error {
	cmd := fleet.Command{Kind: kind, Action: action}
	if err := cmd.ValidateGroup(); err != nil {
		return fmt.Errorf("invalid group command: %w", err)
	}
	if err := d.actor.PerformGroupAction(ctx, kind, action); err != nil {
		return err
	}
	log.Printf("[control] group %s %s accepted", action, kind)
	d.poller.Kick()
	return nil
}
