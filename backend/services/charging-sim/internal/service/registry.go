package service

import (
	"fmt"
	"sort"
	"sync"

	"chargesim/backend/services/charging-sim/internal/models"
)

const (
	idPrefix   = "SES-"
	idFloor    = 10000
	idStartMax = 90000
)

type record struct {
	mu      sync.Mutex
	seq     uint64
	session models.ChargingSession
}

// Registry is the single source of truth for sessions. The map is guarded by
// an RWMutex; each record has its own mutex so work on different sessions
// never contends.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*record
	next    uint64
	seq     uint64
}

// NewRegistry creates an empty registry. Identifiers count up from
// 10000+randomStart, so they look like SES-NNNNN and never repeat.
func NewRegistry(randomStart func(n int) int) *Registry {
	start := 0
	if randomStart != nil {
		start = randomStart(idStartMax)
	}
	return &Registry{
		records: make(map[string]*record),
		next:    uint64(idFloor + start),
	}
}

// Create inserts a Reserved session and returns a snapshot of it. When
// created is non-nil it runs before any other caller can touch the record.
func (r *Registry) Create(stationID, connectorID string, created func(models.ChargingSession)) models.ChargingSession {
	r.mu.Lock()
	id := r.allocateID()
	r.seq++
	rec := &record{
		seq: r.seq,
		session: models.ChargingSession{
			ID:          id,
			StationID:   stationID,
			ConnectorID: connectorID,
			Status:      models.SessionReserved,
		},
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	r.records[id] = rec
	r.mu.Unlock()

	snapshot := rec.session.Clone()
	if created != nil {
		created(snapshot)
	}
	return snapshot
}

// allocateID must be called with r.mu held.
func (r *Registry) allocateID() string {
	for {
		id := fmt.Sprintf("%s%d", idPrefix, r.next)
		r.next++
		if _, taken := r.records[id]; !taken {
			return id
		}
	}
}

// Get returns a snapshot of the session.
func (r *Registry) Get(sessionID string) (models.ChargingSession, bool) {
	rec, ok := r.lookup(sessionID)
	if !ok {
		return models.ChargingSession{}, false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.session.Clone(), true
}

// Update runs fn against the stored record while holding its lock and returns
// a snapshot taken before the lock is released.
func (r *Registry) Update(sessionID string, fn func(*models.ChargingSession) error) (models.ChargingSession, error) {
	rec, ok := r.lookup(sessionID)
	if !ok {
		return models.ChargingSession{}, ErrSessionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if err := fn(&rec.session); err != nil {
		return rec.session.Clone(), err
	}
	return rec.session.Clone(), nil
}

// List returns snapshots of every session in creation order.
func (r *Registry) List() []models.ChargingSession {
	r.mu.RLock()
	recs := make([]*record, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	out := make([]models.ChargingSession, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, rec.session.Clone())
		rec.mu.Unlock()
	}
	return out
}

// Len reports how many sessions exist.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *Registry) lookup(sessionID string) (*record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[sessionID]
	return rec, ok
}
