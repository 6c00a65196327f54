package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/knights-tour-game/game/clock"
	"github.com/wricardo/knights-tour-game/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Run lifecycle
	Start(ctx context.Context, sessionID string, size int) (*engine.GameState, error)
	SelectCell(ctx context.Context, sessionID string, row, col int) (*MoveResult, error)
	Exit(ctx context.Context, sessionID string) (*engine.GameState, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)
	Tick(ctx context.Context, sessionID, runID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles board preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// StateObserver receives every new snapshot a session produces, including
// clock ticks. It is called while the service lock is held and must not call
// back into the service.
type StateObserver interface {
	BroadcastToSession(sessionID string, state *engine.GameState, event string)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	clockMu sync.Mutex
	clock   *clock.Clock
	closed  bool
}

// SetClock installs the clock for the current run, stopping any previous one.
// A closed session refuses the clock and stops it.
func (s *Session) SetClock(c *clock.Clock) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	s.clock.Stop()
	if s.closed {
		c.Stop()
		s.clock = nil
		return
	}
	s.clock = c
}

// Close stops the clock and marks the session as removed so no later run
// can arm a new one
func (s *Session) Close() {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	s.clock.Stop()
	s.clock = nil
	s.closed = true
}

// StopClock stops the clock of the current run, if any
func (s *Session) StopClock() {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	s.clock.Stop()
	s.clock = nil
}

// Clock returns the clock of the current run, or nil when no run is ticking
func (s *Session) Clock() *clock.Clock {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	return s.clock
}
