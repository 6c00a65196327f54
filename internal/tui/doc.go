// Package tui is a terminal front end for a single local game.
//
// The setup screen picks a board size; the board screen moves a cursor over
// the grid and selects squares. Visited squares show their move number, legal
// jumps are highlighted and the run clock is driven by tea.Tick. Every tick
// carries the run id it was armed for, so ticks from a run that was restarted
// or exited are dropped instead of advancing the new run.
package tui
