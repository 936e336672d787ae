package fleet

import (
	"bytes"
	"encoding/json"
)

// Kind classifies a monitored service.
type Kind string

const (
	KindApp   Kind = "app"   // global platform application
	KindTheme Kind = "theme" // theme renderer
	KindStore Kind = "store" // per-store API instance
	KindAll   Kind = "all"   // group selector / filter wildcard, never stored
)

// Valid reports whether k names a concrete service kind.
func (k Kind) Valid() bool {
	return k == KindApp || k == KindTheme || k == KindStore
}

// Status is the backend-reported run state of a service.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusError   Status = "error"
)

// ServiceStatus is the wire form of one service in a snapshot.
type ServiceStatus struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    Kind     `json:"type"`
	Status  Status   `json:"status"`
	Current Sample   `json:"current"`
	History []Sample `json:"history"`
}

// HostOS holds the static OS facts reported with host status.
type HostOS struct {
	Platform string `json:"platform"`
	Distro   string `json:"distro"`
	Release  string `json:"release"`
}

// HostCPU holds the static CPU facts reported with host status.
type HostCPU struct {
	Manufacturer string `json:"manufacturer"`
	Brand        string `json:"brand"`
	Cores        int    `json:"cores"`
}

// HostStatus is the wire form of the host section of a snapshot.
type HostStatus struct {
	OS      HostOS   `json:"os"`
	Uptime  int64    `json:"uptime"` // seconds
	CPU     HostCPU  `json:"cpu"`
	Current Sample   `json:"current"`
	History []Sample `json:"history"`
}

// Snapshot is one point-in-time report of the whole fleet. It is
// transient: the poller folds it into the Store and discards it.
//
// The backend has shipped two response shapes over its lifetime:
// a bare JSON array of services (v1), and {"services": [...], "host": ...}
// (v2). UnmarshalJSON normalizes both; a v1 response simply has no host.
type Snapshot struct {
	Services []ServiceStatus `json:"services"`
	Host     *HostStatus     `json:"host"`
}

// UnmarshalJSON accepts both snapshot wire shapes.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		s.Host = nil
		return json.Unmarshal(data, &s.Services)
	}

	type wire Snapshot // drop methods to avoid recursion
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Snapshot(w)
	return nil
}
