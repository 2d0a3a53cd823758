package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/activity"
	"github.com/KboyVillahermosa/HikeWise/internal/shared/geo"
	"github.com/KboyVillahermosa/HikeWise/internal/tracking"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned for unknown ids and for sessions owned
	// by someone else.
	ErrSessionNotFound = errors.New("tracking session not found")
	// ErrDeviceBusy is returned when the device already has an Active session.
	ErrDeviceBusy = errors.New("device already tracking")
	// ErrNothingPending is returned by Save when the session has no stopped,
	// unsaved record.
	ErrNothingPending = errors.New("no pending activity")
	// ErrSaveInProgress is returned while a Save for the session is still
	// waiting on the store.
	ErrSaveInProgress = errors.New("activity save in progress")
)

// Broadcaster delivers live metrics to whoever watches a session.
type Broadcaster interface {
	Broadcast(sessionID string, payload []byte)
}

// Update is the payload broadcast after every applied sample and on stop.
type Update struct {
	SessionID string           `json:"session_id"`
	Metrics   tracking.Metrics `json:"metrics"`
}

// StartInput describes a new hike.
type StartInput struct {
	DeviceID string
	Meta     activity.Meta
	Initial  *tracking.Sample
}

type entry struct {
	session  *tracking.Session
	deviceID string
	pending  *activity.Record
	saving   bool
	stopTick context.CancelFunc
}

// Manager owns the live sessions of this instance. It enforces one Active
// session per device and holds stopped records until they are saved or
// discarded.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	active   map[string]string

	store     activity.Store
	publisher activity.Publisher
	hub       Broadcaster
	opts      tracking.Options
	log       *slog.Logger
	newID     func() string
	tick      time.Duration
}

// NewManager wires the registry. publisher and hub may be nil.
func NewManager(store activity.Store, publisher activity.Publisher, hub Broadcaster, opts tracking.Options, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	return &Manager{
		sessions:  map[string]*entry{},
		active:    map[string]string{},
		store:     store,
		publisher: publisher,
		hub:       hub,
		opts:      opts,
		log:       log,
		newID:     uuid.NewString,
	}
}

// SetTickInterval makes every Active session broadcast its metrics at the
// given interval even when no samples arrive, so viewers see the clock run
// and the stale flag rise. Zero disables the refresh.
func (m *Manager) SetTickInterval(every time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick = every
}

// Start begins a hike for in.DeviceID and returns the new session id.
func (m *Manager) Start(in StartInput) (string, tracking.Metrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.active[in.DeviceID]; busy {
		return "", tracking.Metrics{}, ErrDeviceBusy
	}

	id := m.newID()
	opts := m.opts
	opts.Logger = m.log.With("session_id", id)
	session := tracking.NewSession(opts, in.Meta)
	if err := session.Start(in.Initial); err != nil {
		return "", tracking.Metrics{}, err
	}

	e := &entry{session: session, deviceID: in.DeviceID}
	if m.tick > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		e.stopTick = cancel
		go tracking.Tick(ctx, session, m.tick, func(metrics tracking.Metrics) {
			m.broadcast(id, metrics)
		})
	}
	m.sessions[id] = e
	m.active[in.DeviceID] = id
	m.log.Info("hike started", "session_id", id, "device_id", in.DeviceID, "trail", in.Meta.TrailName)
	return id, session.Metrics(), nil
}

// Ingest applies one sample and broadcasts the refreshed metrics when the
// sample changed the session.
func (m *Manager) Ingest(id string, sample tracking.Sample) (tracking.Outcome, tracking.Metrics, error) {
	e, err := m.lookup(id)
	if err != nil {
		return "", tracking.Metrics{}, err
	}
	outcome, err := e.session.Ingest(sample)
	if err != nil {
		return outcome, tracking.Metrics{}, err
	}
	metrics := e.session.Metrics()
	if outcome == tracking.OutcomeAppended || outcome == tracking.OutcomeFiltered {
		m.broadcast(id, metrics)
	}
	return outcome, metrics, nil
}

// Follow pumps samples from a live source into the session until the
// channel closes or ctx is done. onApplied receives the metrics after every
// sample that changed the session.
func (m *Manager) Follow(ctx context.Context, id string, samples <-chan tracking.Sample, onApplied func(tracking.Metrics)) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	return tracking.Follow(ctx, e.session, samples, func(tracking.Outcome) {
		metrics := e.session.Metrics()
		m.broadcast(id, metrics)
		if onApplied != nil {
			onApplied(metrics)
		}
	})
}

// Metrics returns the live snapshot of a session.
func (m *Manager) Metrics(id string) (tracking.Metrics, error) {
	e, err := m.lookup(id)
	if err != nil {
		return tracking.Metrics{}, err
	}
	return e.session.Metrics(), nil
}

// Route returns a copy of the points recorded so far.
func (m *Manager) Route(id string) ([]geo.Point, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.session.Route(), nil
}

// Owner returns the owner the session was started for.
func (m *Manager) Owner(id string) (string, error) {
	e, err := m.lookup(id)
	if err != nil {
		return "", err
	}
	return e.session.Meta().OwnerID, nil
}

// Authorize returns ErrSessionNotFound unless userID may act on the session.
// Sessions started without an owner are open to everyone.
func (m *Manager) Authorize(userID, id string) error {
	owner, err := m.Owner(id)
	if err != nil {
		return err
	}
	if owner != "" && owner != userID {
		return ErrSessionNotFound
	}
	return nil
}

// Stop finalizes the hike. The record stays pending until Save succeeds and
// the device is free to start another hike immediately.
func (m *Manager) Stop(id string) (activity.Record, error) {
	e, err := m.lookup(id)
	if err != nil {
		return activity.Record{}, err
	}
	rec, err := e.session.Stop()
	if err != nil {
		return activity.Record{}, err
	}

	m.mu.Lock()
	pending := rec.Clone()
	e.pending = &pending
	m.release(id, e)
	m.mu.Unlock()

	m.broadcast(id, e.session.Metrics())
	return rec, nil
}

// Save persists the pending record. On a store failure the record stays
// pending and the wrapped activity.ErrStore is returned so the caller can
// retry.
func (m *Manager) Save(ctx context.Context, id string) (activity.Record, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return activity.Record{}, ErrSessionNotFound
	}
	if e.saving {
		m.mu.Unlock()
		return activity.Record{}, ErrSaveInProgress
	}
	if e.pending == nil {
		m.mu.Unlock()
		if e.session.State() == tracking.StateActive {
			return activity.Record{}, tracking.ErrNotTracking
		}
		return activity.Record{}, ErrNothingPending
	}
	rec := e.pending.Clone()
	e.saving = true
	m.mu.Unlock()

	if err := m.store.Save(ctx, rec); err != nil {
		m.mu.Lock()
		e.saving = false
		m.mu.Unlock()
		m.log.Error("activity save failed", "session_id", id, "activity_id", rec.ID, "error", err)
		return activity.Record{}, err
	}
	e.session.MarkSaved()

	m.mu.Lock()
	_, stillHeld := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	m.log.Info("activity saved", "session_id", id, "activity_id", rec.ID)
	if stillHeld && m.publisher != nil {
		if err := m.publisher.Publish(ctx, rec); err != nil {
			m.log.Warn("activity event not published", "activity_id", rec.ID, "error", err)
		}
	}
	return rec, nil
}

// Discard abandons an Active hike or drops an unsaved pending record. A
// record whose Save is in flight can no longer be discarded.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	if e.saving {
		m.mu.Unlock()
		return tracking.ErrNotTracking
	}
	if err := e.session.Discard(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.release(id, e)
	delete(m.sessions, id)
	m.mu.Unlock()

	m.log.Info("hike discarded", "session_id", id)
	return nil
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// release frees the device slot and stops the metrics refresh. Callers hold
// m.mu.
func (m *Manager) release(id string, e *entry) {
	if m.active[e.deviceID] == id {
		delete(m.active, e.deviceID)
	}
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

func (m *Manager) broadcast(id string, metrics tracking.Metrics) {
	if m.hub == nil {
		return
	}
	payload, err := json.Marshal(Update{SessionID: id, Metrics: metrics})
	if err != nil {
		m.log.Warn("live update not encoded", "session_id", id, "error", err)
		return
	}
	m.hub.Broadcast(id, payload)
}
