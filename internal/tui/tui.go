package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/knights-tour-game/game/engine"
)

// TickInterval is how often the run clock advances
const TickInterval = time.Second

type screen int

const (
	screenSetup screen = iota
	screenBoard
)

// tickMsg advances the clock of run runID. A tick for any other run, or for
// a run that is no longer in progress, is dropped and not re-armed.
type tickMsg struct {
	runID string
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Italic(true)

	cellStyle = lipgloss.NewStyle().
			Width(3).
			Align(lipgloss.Center)

	emptyStyle   = cellStyle.Foreground(lipgloss.Color("#585858"))
	visitedStyle = cellStyle.Background(lipgloss.Color("#3A3A3A")).Foreground(lipgloss.Color("#9E9E9E"))
	legalStyle   = cellStyle.Background(lipgloss.Color("#2F5F2F")).Foreground(lipgloss.Color("#D7FFD7"))
	knightStyle  = cellStyle.Background(lipgloss.Color("#5F5F87")).Foreground(lipgloss.Color("#FFFFFF")).Bold(true)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87"))

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2).
			Bold(true)

	wonStyle  = bannerStyle.BorderForeground(lipgloss.Color("#87D787")).Foreground(lipgloss.Color("#87D787"))
	lostStyle = bannerStyle.BorderForeground(lipgloss.Color("#FF875F")).Foreground(lipgloss.Color("#FF875F"))
)

// Model is the Bubble Tea model of a single-player game
type Model struct {
	engine *engine.GameEngine
	config *engine.GameConfig
	keys   keyMap
	help   help.Model

	screen screen
	size   int
	state  *engine.GameState
	cursor engine.Position
	flash  string
}

// NewModel creates a model on the setup screen. A size of 0 preselects the
// preset's grid size.
func NewModel(config *engine.GameConfig, size int) (Model, error) {
	if config == nil {
		config = engine.DefaultConfig()
	}
	eng, err := engine.NewEngine(config)
	if err != nil {
		return Model{}, err
	}

	if size == 0 {
		size = config.GridSize
	}
	if err := engine.ValidateGridSize(size); err != nil {
		return Model{}, err
	}

	m := Model{
		engine: eng,
		config: config,
		keys:   newKeyMap(),
		help:   help.New(),
		screen: screenSetup,
		size:   size,
		state:  eng.GetState(),
	}
	m.keys.forSetup()
	return m, nil
}

// Run starts the terminal UI and blocks until the player quits
func Run(config *engine.GameConfig, size int) error {
	m, err := NewModel(config, size)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// State returns the current snapshot
func (m Model) State() *engine.GameState {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return nil
}

func tick(runID string) tea.Cmd {
	return tea.Tick(TickInterval, func(time.Time) tea.Msg {
		return tickMsg{runID: runID}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if msg.runID != m.state.RunID || m.state.Status != engine.InProgress {
			return m, nil
		}
		m.state = m.engine.Tick()
		return m, tick(msg.runID)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		if m.screen == screenSetup {
			return m.updateSetup(msg)
		}
		return m.updateBoard(msg)
	}

	return m, nil
}

func (m Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Down):
		if m.size > engine.MinGridSize {
			m.size--
		}
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Up):
		if m.size < engine.MaxGridSize {
			m.size++
		}
	case key.Matches(msg, m.keys.Select):
		state, err := m.engine.Start(m.size)
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		return m.beginRun(state)
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(0, 1)

	case key.Matches(msg, m.keys.Select):
		m.selectCursor()
		m.keys.forRun(m.state.IsGameOver())

	case key.Matches(msg, m.keys.Restart):
		return m.beginRun(m.engine.Restart())

	case key.Matches(msg, m.keys.Exit):
		m.state = m.engine.Exit()
		m.screen = screenSetup
		m.flash = ""
		m.keys.forSetup()
	}
	return m, nil
}

// beginRun shows the board for a freshly started run and arms its clock
func (m Model) beginRun(state *engine.GameState) (tea.Model, tea.Cmd) {
	m.state = state
	m.screen = screenBoard
	m.size = state.Size
	m.cursor = engine.Position{Row: state.Size / 2, Col: state.Size / 2}
	m.flash = ""
	m.keys.forRun(false)
	return m, tick(state.RunID)
}

func (m *Model) moveCursor(dr, dc int) {
	row, col := m.cursor.Row+dr, m.cursor.Col+dc
	if m.state.InBounds(row, col) {
		m.cursor = engine.Position{Row: row, Col: col}
	}
}

func (m *Model) selectCursor() {
	row, col := m.cursor.Row, m.cursor.Col
	state, accepted := m.engine.SelectCell(row, col)
	m.state = state
	if accepted {
		m.flash = ""
		return
	}

	if !m.state.IsEmpty(row, col) {
		m.flash = "That square has already been visited."
	} else {
		m.flash = m.config.Messages.CantMove
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♞ Knight's Tour"))
	b.WriteString("  ")
	b.WriteString(subtleStyle.Render(m.config.Name))
	b.WriteString("\n\n")

	if m.screen == screenSetup {
		b.WriteString(m.setupView())
	} else {
		b.WriteString(m.boardView())
	}

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(flashStyle.Render(m.flash))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) setupView() string {
	var b strings.Builder
	if m.config.Description != "" {
		b.WriteString(m.config.Description)
		b.WriteString("\n\n")
	}

	options := make([]string, 0, len(engine.GridSizeOptions()))
	for _, size := range engine.GridSizeOptions() {
		label := strconv.Itoa(size)
		if size == m.size {
			options = append(options, knightStyle.Render(label))
		} else {
			options = append(options, emptyStyle.Render(label))
		}
	}
	fmt.Fprintf(&b, "Board size: %s\n", lipgloss.JoinHorizontal(lipgloss.Top, options...))
	fmt.Fprintf(&b, "%dx%d, %d squares", m.size, m.size, m.size*m.size)
	if !engine.TourPossible(m.size) {
		b.WriteString(subtleStyle.Render("  (no full tour exists on this board)"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) boardView() string {
	state := m.state

	var b strings.Builder
	fmt.Fprintf(&b, "Visited %d/%d   ⏱ %s\n", state.VisitedCount, state.TotalCells, engine.FormatElapsed(state.ElapsedSeconds))
	b.WriteString(boardStyle.Render(m.renderGrid()))
	b.WriteString("\n")

	switch state.Status {
	case engine.Won:
		b.WriteString(wonStyle.Render("🏆 " + state.TerminationMessage))
		b.WriteString("\n")
	case engine.Lost:
		b.WriteString(lostStyle.Render(state.TerminationMessage))
		b.WriteString("\n")
	default:
		if state.Message != "" {
			b.WriteString(state.Message)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderGrid() string {
	state := m.state

	order := make(map[engine.Position]int, len(state.MoveHistory))
	for _, entry := range state.MoveHistory {
		order[entry.To] = entry.MoveNumber
	}
	legal := make(map[engine.Position]bool, len(state.LegalMoves))
	if state.Status == engine.InProgress {
		for _, pos := range state.LegalMoves {
			legal[pos] = true
		}
	}

	rows := make([]string, state.Size)
	for row := 0; row < state.Size; row++ {
		cells := make([]string, state.Size)
		for col := 0; col < state.Size; col++ {
			pos := engine.Position{Row: row, Col: col}

			style, text := emptyStyle, "·"
			switch {
			case state.KnightPos != nil && *state.KnightPos == pos:
				style, text = knightStyle, "♞"
			case state.Grid[row][col] == engine.Visited:
				style, text = visitedStyle, strconv.Itoa(order[pos])
			case legal[pos]:
				style, text = legalStyle, "•"
			}
			if pos == m.cursor && !state.IsGameOver() {
				style = style.Reverse(true)
			}
			cells[col] = style.Render(text)
		}
		rows[row] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
