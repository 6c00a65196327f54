package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/knights-tour-game/game/clock"
	"github.com/wricardo/knights-tour-game/game/engine"
)

// gameServiceImpl implements the GameService interface. One mutex serialises
// every engine call so each event is fully processed before the next.
type gameServiceImpl struct {
	sessions     SessionManager
	configs      ConfigManager
	observer     StateObserver
	tickInterval time.Duration
	clockCtx     context.Context
	mu           sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithObserver registers an observer that receives every new snapshot
func WithObserver(observer StateObserver) Option {
	return func(s *gameServiceImpl) {
		s.observer = observer
	}
}

// WithTickInterval overrides the clock period (tests use a few milliseconds)
func WithTickInterval(interval time.Duration) Option {
	return func(s *gameServiceImpl) {
		s.tickInterval = interval
	}
}

// WithClockContext sets the parent context of every run clock. Cancelling it
// stops all clocks, which is how the server shuts them down.
func WithClockContext(ctx context.Context) Option {
	return func(s *gameServiceImpl) {
		s.clockCtx = ctx
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:     sessions,
		configs:      configs,
		tickInterval: clock.DefaultInterval,
		clockCtx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					configIDs := make([]string, 0, len(availableConfigs))
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s': %w (available configs: %s)", configName, err, strings.Join(configIDs, ", "))
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().Str("session", session.ID).Str("config", configID).Msg("session created")

	return s.sessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session, s.getConfigID(session.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	return result, nil
}

// DeleteSession stops the session clock and removes the session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	sess.StopClock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	log.Info().Str("session", sess.ID).Msg("session deleted")
	return nil
}

// Start begins a new run. A size of 0 uses the preset's grid size.
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string, size int) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if size == 0 {
		size = sess.Config.GridSize
	}

	state, err := sess.Engine.Start(size)
	if err != nil {
		log.Debug().Str("session", sess.ID).Int("size", size).Err(err).Msg("start rejected")
		return nil, err
	}

	s.startClock(sess, state.RunID)
	log.Info().Str("session", sess.ID).Str("run", state.RunID).Int("size", size).Msg("run started")
	s.notify(sess.ID, state, EventStarted)

	return state, nil
}

// SelectCell places or moves the knight. Rejected selections are not errors:
// the result reports accepted=false with the reason and an unchanged snapshot.
func (s *gameServiceImpl) SelectCell(ctx context.Context, sessionID string, row, col int) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	before := sess.Engine.GetState()
	state, accepted := sess.Engine.SelectCell(row, col)

	if !accepted {
		reason := rejectionReason(before, row, col)
		log.Debug().Str("session", sess.ID).Int("row", row).Int("col", col).Str("reason", reason).Msg("selection rejected")
		return &MoveResult{
			Accepted:    false,
			GameState:   state,
			Message:     rejectionMessage(sess.Config, reason, row, col, state.Size),
			AttemptedTo: &AttemptInfo{Row: row, Col: col, Reason: reason},
		}, nil
	}

	result := &MoveResult{
		Accepted:  true,
		GameState: state,
		Message:   state.Message,
		Events:    s.extractMoveEvents(before, state),
		Step:      buildStep(state),
	}

	event := result.Events[len(result.Events)-1].Type
	if state.IsGameOver() {
		sess.StopClock()
		result.Message = state.TerminationMessage
		log.Info().
			Str("session", sess.ID).
			Str("run", state.RunID).
			Str("status", string(state.Status)).
			Int("visited", state.VisitedCount).
			Int("elapsed", state.ElapsedSeconds).
			Msg("run finished")
	}

	s.notify(sess.ID, state, event)
	return result, nil
}

// Exit abandons the current run and returns the session to the pre-game state
func (s *gameServiceImpl) Exit(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.StopClock()
	state := sess.Engine.Exit()

	log.Info().Str("session", sess.ID).Msg("run exited")
	s.notify(sess.ID, state, EventExited)

	return state, nil
}

// Restart starts a fresh run with the current grid size
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.StopClock()
	state := sess.Engine.Restart()
	s.startClock(sess, state.RunID)

	log.Info().Str("session", sess.ID).Str("run", state.RunID).Int("size", state.Size).Msg("run restarted")
	s.notify(sess.ID, state, EventRestarted)

	return state, nil
}

// Tick advances the elapsed time of run runID by one second. Ticks for a run
// that is no longer current, or that is no longer in progress, are ignored
// and the unchanged snapshot is returned.
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID, runID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The clock was stopped while this tick waited for the lock
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	if runID == "" || runID != sess.Engine.GetRunID() || sess.Engine.GetStatus() != engine.InProgress {
		log.Trace().Str("session", sess.ID).Str("run", runID).Msg("stale tick ignored")
		return sess.Engine.GetState(), nil
	}

	state := sess.Engine.Tick()
	s.notify(sess.ID, state, EventTick)
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available board presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if configName == "" {
		return errors.New("config name is required")
	}
	return s.configs.SaveConfig(configName, config)
}

// startClock installs a fresh clock for runID, stopping the previous one.
// Caller must hold the write lock.
func (s *gameServiceImpl) startClock(sess *Session, runID string) {
	sessionID := sess.ID
	sess.SetClock(clock.Start(s.clockCtx, runID, s.tickInterval, func(ctx context.Context, runID string) {
		if _, err := s.Tick(ctx, sessionID, runID); err != nil && ctx.Err() == nil {
			log.Warn().Str("session", sessionID).Str("run", runID).Err(err).Msg("tick failed")
		}
	}))
}

func (s *gameServiceImpl) notify(sessionID string, state *engine.GameState, event string) {
	if s.observer == nil {
		return
	}
	s.observer.BroadcastToSession(sessionID, state, event)
}

// extractMoveEvents generates events for an accepted selection
func (s *gameServiceImpl) extractMoveEvents(before, after *engine.GameState) []GameEvent {
	now := time.Now()
	to := *after.KnightPos

	events := []GameEvent{}
	if before.KnightPos == nil {
		events = append(events, GameEvent{
			Type:      EventPlaced,
			Message:   fmt.Sprintf("Knight placed at (%d,%d)", to.Row, to.Col),
			Timestamp: now,
			Position:  &to,
		})
	} else {
		events = append(events, GameEvent{
			Type:      EventMoved,
			Message:   fmt.Sprintf("Knight moved from (%d,%d) to (%d,%d)", before.KnightPos.Row, before.KnightPos.Col, to.Row, to.Col),
			Timestamp: now,
			Position:  &to,
		})
	}

	switch after.Status {
	case engine.Won:
		events = append(events, GameEvent{
			Type:      EventWon,
			Message:   after.TerminationMessage,
			Timestamp: now,
			Position:  &to,
		})
	case engine.Lost:
		events = append(events, GameEvent{
			Type:      EventLost,
			Message:   after.TerminationMessage,
			Timestamp: now,
			Position:  &to,
		})
	}

	return events
}

func buildStep(state *engine.GameState) *StepInfo {
	last := state.MoveHistory[len(state.MoveHistory)-1]
	return &StepInfo{
		MoveNumber:   last.MoveNumber,
		From:         last.From,
		To:           last.To,
		VisitedCount: state.VisitedCount,
		LegalMoves:   len(state.LegalMoves),
		Won:          state.Status == engine.Won,
		Lost:         state.Status == engine.Lost,
	}
}

// rejectionReason explains why the engine ignored a selection against state
func rejectionReason(state *engine.GameState, row, col int) string {
	switch {
	case state.Status != engine.InProgress:
		return ReasonNotInProgress
	case !state.InBounds(row, col):
		return ReasonOutOfBounds
	case !state.IsEmpty(row, col):
		return ReasonVisited
	default:
		return ReasonNotKnightMove
	}
}

func rejectionMessage(config *engine.GameConfig, reason string, row, col, size int) string {
	switch reason {
	case ReasonNotInProgress:
		return "No run in progress. Start a game first."
	case ReasonOutOfBounds:
		return fmt.Sprintf("(%d,%d) is outside the %dx%d grid.", row, col, size, size)
	case ReasonVisited:
		return fmt.Sprintf("(%d,%d) has already been visited.", row, col)
	}
	if config != nil && config.Messages.CantMove != "" {
		return config.Messages.CantMove
	}
	return "The knight can't jump there."
}
