package service

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"chargesim/backend/services/charging-sim/internal/models"
)

const (
	// EnergyRateKWhPerSecond is the synthetic charging rate.
	EnergyRateKWhPerSecond = 0.1
	// AutoCompleteProbability is the chance that a poll of a Charging session completes it.
	AutoCompleteProbability = 0.05
)

// Catalog is the read side of the station inventory.
type Catalog interface {
	FindStation(stationID string) (models.Station, bool)
	FindConnector(station models.Station, connectorID string) (models.Connector, bool)
}

// Sampler produces a connector status for the current instant.
type Sampler interface {
	Sample() models.ConnectorStatus
}

// Publisher receives lifecycle events. It is called while the session's lock
// is held, which keeps per-session event order; implementations must not block.
type Publisher interface {
	Publish(event models.SessionEvent)
}

// RejectionRecorder is told why a create request was refused.
type RejectionRecorder interface {
	ObserveRejection(reason string)
}

// StopResult is the outcome of Stop.
type StopResult struct {
	Session          models.ChargingSession
	AlreadyCompleted bool
}

// Engine drives sessions through Reserved -> Charging -> Completed.
type Engine struct {
	catalog   Catalog
	sampler   Sampler
	registry  *Registry
	publisher Publisher
	rejects   RejectionRecorder
	now       func() time.Time
	roll      func() float64
	logger    *zap.Logger
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithCompletionRoll replaces the [0,1) draw used for auto-completion.
func WithCompletionRoll(roll func() float64) EngineOption {
	return func(e *Engine) { e.roll = roll }
}

// WithPublisher sends lifecycle events to p.
func WithPublisher(p Publisher) EngineOption {
	return func(e *Engine) { e.publisher = p }
}

// WithRejectionRecorder reports refused create requests to r.
func WithRejectionRecorder(r RejectionRecorder) EngineOption {
	return func(e *Engine) { e.rejects = r }
}

// NewEngine wires the lifecycle engine.
func NewEngine(catalog Catalog, sampler Sampler, registry *Registry, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:  catalog,
		sampler:  sampler,
		registry: registry,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.roll == nil {
		e.roll = rand.Float64
	}
	return e
}

// Create reserves a connector. Preconditions are checked in order: station,
// connector, then a fresh availability sample.
func (e *Engine) Create(ctx context.Context, stationID, connectorID string) (models.ChargingSession, error) {
	station, ok := e.catalog.FindStation(stationID)
	if !ok {
		e.reject("station_not_found")
		return models.ChargingSession{}, ErrStationNotFound
	}
	if _, ok := e.catalog.FindConnector(station, connectorID); !ok {
		e.reject("connector_not_found")
		return models.ChargingSession{}, ErrConnectorNotFound
	}
	if status := e.sampler.Sample(); status != models.ConnectorAvailable {
		e.reject("connector_unavailable")
		e.logger.Debug("connector sampled unavailable",
			zap.String("station_id", stationID),
			zap.String("connector_id", connectorID),
			zap.String("status", string(status)),
		)
		return models.ChargingSession{}, ErrConnectorUnavailable
	}

	session := e.registry.Create(stationID, connectorID, func(s models.ChargingSession) {
		e.publish(models.EventSessionReserved, "", s)
	})
	e.logger.Info("session reserved",
		zap.String("session_id", session.ID),
		zap.String("station_id", stationID),
		zap.String("connector_id", connectorID),
	)
	return session, nil
}

// Start moves a Reserved session to Charging and stamps start_time.
func (e *Engine) Start(ctx context.Context, sessionID string) (models.ChargingSession, error) {
	session, err := e.registry.Update(sessionID, func(s *models.ChargingSession) error {
		if s.Status != models.SessionReserved {
			return ErrInvalidState
		}
		now := e.now()
		s.Status = models.SessionCharging
		s.StartTime = &now
		e.publish(models.EventSessionCharging, "", s.Clone())
		return nil
	})
	if err != nil {
		return session, err
	}

	e.logger.Info("session charging", zap.String("session_id", sessionID))
	return session, nil
}

// Poll returns the session, first projecting energy and duration when it is
// Charging. Each poll of a Charging session may also complete it.
func (e *Engine) Poll(ctx context.Context, sessionID string) (models.ChargingSession, error) {
	var autoCompleted bool
	session, err := e.registry.Update(sessionID, func(s *models.ChargingSession) error {
		if s.Status != models.SessionCharging {
			return nil
		}
		elapsed := e.elapsed(s)
		s.KWhDelivered = roundTo(elapsed*EnergyRateKWhPerSecond, 2)
		s.Duration = roundTo(elapsed, 0)
		if e.roll() < AutoCompleteProbability {
			s.Status = models.SessionCompleted
			autoCompleted = true
			e.publish(models.EventSessionCompleted, models.CompletionAuto, s.Clone())
		}
		return nil
	})
	if err != nil {
		return session, err
	}

	if autoCompleted {
		e.logger.Info("session completed on poll",
			zap.String("session_id", sessionID),
			zap.Float64("kwh_delivered", session.KWhDelivered),
			zap.Float64("duration", session.Duration),
		)
	}
	return session, nil
}

// Stop completes the session. Stopping a completed session changes nothing
// and is reported through StopResult.AlreadyCompleted.
func (e *Engine) Stop(ctx context.Context, sessionID string) (StopResult, error) {
	var already bool
	session, err := e.registry.Update(sessionID, func(s *models.ChargingSession) error {
		if s.Status == models.SessionCompleted {
			already = true
			return nil
		}
		if s.StartTime != nil {
			s.Duration = roundTo(e.elapsed(s), 0)
			s.KWhDelivered = roundTo(s.Duration*EnergyRateKWhPerSecond, 2)
		} else {
			s.Duration = 0
			s.KWhDelivered = 0
		}
		s.Status = models.SessionCompleted
		e.publish(models.EventSessionCompleted, models.CompletionStopped, s.Clone())
		return nil
	})
	if err != nil {
		return StopResult{}, err
	}

	if !already {
		e.logger.Info("session stopped",
			zap.String("session_id", sessionID),
			zap.Float64("kwh_delivered", session.KWhDelivered),
			zap.Float64("duration", session.Duration),
		)
	}
	return StopResult{Session: session, AlreadyCompleted: already}, nil
}

// Get returns the stored session without projecting anything.
func (e *Engine) Get(ctx context.Context, sessionID string) (models.ChargingSession, error) {
	session, ok := e.registry.Get(sessionID)
	if !ok {
		return models.ChargingSession{}, ErrSessionNotFound
	}
	return session, nil
}

// List returns every session in creation order as currently stored.
func (e *Engine) List(ctx context.Context) []models.ChargingSession {
	return e.registry.List()
}

func (e *Engine) elapsed(s *models.ChargingSession) float64 {
	elapsed := e.now().Sub(*s.StartTime).Seconds()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (e *Engine) publish(kind models.SessionEventType, reason string, session models.ChargingSession) {
	if e.publisher == nil {
		return
	}
	e.publisher.Publish(models.SessionEvent{
		Type:    kind,
		Reason:  reason,
		Session: session,
		At:      e.now().UTC(),
	})
}

func (e *Engine) reject(reason string) {
	if e.rejects != nil {
		e.rejects.ObserveRejection(reason)
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
