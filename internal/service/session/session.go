// Package session manages staff logins. Each session owns an order store
// subscribed to the change feed and a notification inbox.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/corray333/backend-labs/meatshop/internal/service/elapsed"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/notify"
	"github.com/corray333/backend-labs/meatshop/internal/service/services/orderstore"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

var ErrInvalidCredentials = errors.New("invalid staff id or pin")

// SubscribeFunc attaches a store to the change feed.
type SubscribeFunc func(ctx context.Context, store *orderstore.Store) (io.Closer, error)

// StoreFactory builds the order store of a new session.
type StoreFactory func(sess *Session, inbox *notify.Inbox) *orderstore.Store

// Session is one logged-in staff member.
type Session struct {
	token   string
	staffID string

	Store *orderstore.Store
	Inbox *notify.Inbox

	mu     sync.RWMutex
	active bool
	feed   io.Closer
}

// Token returns the bearer token of the session.
func (s *Session) Token() string {
	return s.token
}

// ActorID returns the staff id while the session is active.
func (s *Session) ActorID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.staffID, s.active
}

// ElapsedSource reads order id from this session's store until the session ends.
func (s *Session) ElapsedSource(id string) elapsed.Source {
	return func() (order.Order, error) {
		if _, ok := s.ActorID(); !ok {
			return order.Order{}, order.ErrNotAuthenticated
		}

		return s.Store.Get(id)
	}
}

// end tears down the feed first so no event lands after the session is gone.
func (s *Session) end() {
	s.mu.Lock()
	feed := s.feed
	s.feed = nil
	s.mu.Unlock()

	if feed != nil {
		if err := feed.Close(); err != nil {
			slog.Warn("Failed to close change feed subscription", "staff_id", s.staffID, "error", err)
		}
	}

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Manager issues and resolves sessions.
type Manager struct {
	staff     map[string]string
	newStore  StoreFactory
	subscribe SubscribeFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// option is a function that configures the Manager.
type option func(*Manager)

// MustNewManager creates a Manager. Staff PINs are read from auth.staff.
func MustNewManager(opts ...option) *Manager {
	m := &Manager{
		staff:    viper.GetStringMapString("auth.staff"),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.newStore == nil {
		panic("session: store factory is required")
	}

	return m
}

// WithStoreFactory sets how session stores are built.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStoreFactory(f StoreFactory) option {
	return func(m *Manager) {
		m.newStore = f
	}
}

// WithSubscribe sets how session stores join the change feed.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSubscribe(f SubscribeFunc) option {
	return func(m *Manager) {
		m.subscribe = f
	}
}

// WithStaff replaces the configured staff PINs.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStaff(staff map[string]string) option {
	return func(m *Manager) {
		m.staff = staff
	}
}

// Login checks the PIN, loads the order collection and subscribes to the feed.
// A failed load or subscription leaves the session usable with an empty or
// degraded collection.
func (m *Manager) Login(ctx context.Context, staffID, pin string) (*Session, error) {
	want, ok := m.staff[staffID]
	if !ok || staffID == "" || subtle.ConstantTimeCompare([]byte(want), []byte(pin)) != 1 {
		return nil, ErrInvalidCredentials
	}

	sess := &Session{
		token:   uuid.NewString(),
		staffID: staffID,
		Inbox:   notify.NewInbox(0),
		active:  true,
	}
	sess.Store = m.newStore(sess, sess.Inbox)

	// The feed queue buffers from here on, so nothing committed during the
	// listing is missed.
	if m.subscribe != nil {
		feed, err := m.subscribe(ctx, sess.Store)
		if err != nil {
			slog.Error("Failed to subscribe to change feed", "staff_id", staffID, "error", err)
			sess.Store.MarkDegraded(err)
		} else {
			sess.feed = feed
		}
	}

	if err := sess.Store.FetchAll(ctx); err != nil {
		slog.Error("Failed to load orders on login", "staff_id", staffID, "error", err)
	}

	m.mu.Lock()
	m.sessions[sess.token] = sess
	m.mu.Unlock()

	slog.Info("Staff logged in", "staff_id", staffID)

	return sess, nil
}

// Get resolves a bearer token.
func (m *Manager) Get(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, order.ErrNotAuthenticated
	}

	return sess, nil
}

// Logout ends the session. Its store refuses further operations.
func (m *Manager) Logout(token string) error {
	m.mu.Lock()
	sess, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if !ok {
		return order.ErrNotAuthenticated
	}
	sess.end()

	slog.Info("Staff logged out", "staff_id", sess.staffID)

	return nil
}

// Shutdown ends every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.end()
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
