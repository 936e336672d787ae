package fleet

import "sync"

// HostFacts are the static host details that accompany host samples.
type HostFacts struct {
	OS     HostOS  `json:"os"`
	Uptime int64   `json:"uptime"`
	CPU    HostCPU `json:"cpu"`
}

type entry struct {
	id       string
	name     string
	kind     Kind
	status   Status
	lastSeen int64 // timestamp (ms) of the newest snapshot mentioning this entity
	timeline *Timeline
}

// Store is the session-local source of truth for fleet state: one bounded
// timeline per known service plus one for the host. The poller is its only
// writer; the projector and API handlers read through View().
//
// Entities the backend stops reporting are retained as stale rather than
// pruned, so a transient omission never flickers a service out of the
// console. Their lastSeen stops advancing.
type Store struct {
	mu      sync.RWMutex
	window  int
	order   []string // entity ids in first-arrival order
	entries map[string]*entry

	host      *Timeline
	hostFacts HostFacts
	hasHost   bool
}

// NewStore creates an empty store retaining window samples per entity.
func NewStore(window int) *Store {
	if window < 1 {
		window = DefaultWindow
	}
	return &Store{window: window, entries: make(map[string]*entry)}
}

// Merge folds one snapshot into the store. For every reported service it
// creates or updates the entity's timeline and status; the host section,
// when present, feeds the host timeline. Entities absent from snap are
// left untouched.
//
// Merge is idempotent per sample: a sample whose timestamp is not strictly
// newer than the timeline's latest is skipped, so re-merging the same
// snapshot only refreshes status fields.
func (st *Store) Merge(snap Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, svc := range snap.Services {
		if svc.ID == "" {
			continue
		}
		e, ok := st.entries[svc.ID]
		if !ok {
			e = &entry{id: svc.ID, kind: svc.Type, timeline: NewTimeline(st.window)}
			// Seed the chart from the history the backend already has,
			// so a console restart does not begin with an empty graph.
			appendNewer(e.timeline, svc.History...)
			st.entries[svc.ID] = e
			st.order = append(st.order, svc.ID)
		}
		e.name = svc.Name
		e.status = svc.Status
		appendNewer(e.timeline, svc.Current)
		if svc.Current.Timestamp > e.lastSeen {
			e.lastSeen = svc.Current.Timestamp
		}
	}

	if snap.Host != nil {
		if st.host == nil {
			st.host = NewTimeline(st.window)
			appendNewer(st.host, snap.Host.History...)
		}
		st.hostFacts = HostFacts{OS: snap.Host.OS, Uptime: snap.Host.Uptime, CPU: snap.Host.CPU}
		st.hasHost = true
		appendNewer(st.host, snap.Host.Current)
	}
}

// appendNewer appends only samples strictly newer than the timeline's
// latest, preserving chronological order and merge idempotence.
func appendNewer(t *Timeline, samples ...Sample) {
	for _, s := range samples {
		if latest, ok := t.Latest(); ok && s.Timestamp <= latest.Timestamp {
			continue
		}
		t.Append(s)
	}
}

// ServiceView is the read-only projection of one service entity.
type ServiceView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     Kind     `json:"type"`
	Status   Status   `json:"status"`
	Current  Sample   `json:"current"`
	History  []Sample `json:"history"`
	LastSeen int64    `json:"last_seen"`
}

// HostView is the read-only projection of the host entity.
type HostView struct {
	HostFacts
	Current Sample   `json:"current"`
	History []Sample `json:"history"`
}

// View is a self-contained copy of the store's contents: services in
// first-arrival order plus the host, if one has ever been reported.
type View struct {
	Services []ServiceView `json:"services"`
	Host     *HostView     `json:"host"`
}

// View returns a deep copy of the current store state. Mutating the
// returned value cannot affect the store, which keeps the projector and
// presentation strictly read-only consumers.
func (st *Store) View() View {
	st.mu.RLock()
	defer st.mu.RUnlock()

	v := View{Services: make([]ServiceView, 0, len(st.order))}
	for _, id := range st.order {
		e := st.entries[id]
		sv := ServiceView{
			ID:       e.id,
			Name:     e.name,
			Type:     e.kind,
			Status:   e.status,
			History:  e.timeline.History(),
			LastSeen: e.lastSeen,
		}
		if cur, ok := e.timeline.Latest(); ok {
			sv.Current = cur
		}
		v.Services = append(v.Services, sv)
	}

	if st.hasHost {
		hv := &HostView{HostFacts: st.hostFacts, History: st.host.History()}
		if cur, ok := st.host.Latest(); ok {
			hv.Current = cur
		}
		v.Host = hv
	}
	return v
}

// Len returns the number of known service entities.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}
