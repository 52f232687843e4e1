package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/escat/internal/engine"
	"github.com/dm/escat/internal/model"
)

type stageState int

const (
	statePending stageState = iota
	stateRunning
	stateDone
	statePartial
	stateFailed
)

func (s stageState) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateDone:
		return "done"
	case statePartial:
		return "partial"
	case stateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// stageRow is the display state of one pipeline stage.
type stageRow struct {
	stage   engine.Stage
	state   stageState
	stats   model.Stats
	path    string
	elapsed time.Duration
	err     error
}

// App is the root Bubble Tea model for a single escat run.
type App struct {
	baseURL string
	runID   string
	cancel  context.CancelFunc
	now     func() time.Time

	rows    []stageRow
	spinner spinner.Model

	started  time.Time
	finished time.Time
	result   *engine.RunResult
	runErr   error

	// Layout
	width, height int

	// UI state
	showHelp bool
}

// NewApp creates an App tracking stages. cancel is called when the user
// quits before the run has finished and may be nil.
func NewApp(baseURL, runID string, stages []engine.Stage, cancel context.CancelFunc) *App {
	rows := make([]stageRow, len(stages))
	for i, st := range stages {
		rows[i] = stageRow{stage: st}
	}
	app := &App{
		baseURL: baseURL,
		runID:   runID,
		cancel:  cancel,
		now:     time.Now,
		rows:    rows,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StyleSpinner)),
	}
	app.started = app.now()
	return app
}

// Init implements tea.Model. Starts the spinner.
func (app *App) Init() tea.Cmd {
	return app.spinner.Tick
}

// Update implements tea.Model, the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case spinner.TickMsg:
		if app.done() {
			return app, nil
		}
		var cmd tea.Cmd
		app.spinner, cmd = app.spinner.Update(msg)
		return app, cmd

	case StageEventMsg:
		app.applyEvent(msg.Event)

	case RunDoneMsg:
		app.finished = app.now()
		app.result = msg.Result
		app.runErr = msg.Err
		return app, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if !app.done() && app.cancel != nil {
				app.cancel()
			}
			return app, tea.Quit
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		}
	}

	return app, nil
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	parts := []string{
		renderHeader(app),
		renderStages(app),
	}
	if s := renderSummary(app); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, renderFooter(app))
	return strings.Join(parts, "\n")
}

// Err returns the runner error delivered with RunDoneMsg.
func (app *App) Err() error {
	return app.runErr
}

func (app *App) applyEvent(ev engine.Event) {
	row := app.row(ev.Stage)
	if row == nil {
		return
	}
	if !ev.Done {
		row.state = stateRunning
		return
	}
	row.stats = ev.Stats
	row.path = ev.Path
	row.elapsed = ev.Elapsed
	row.err = ev.Err
	switch {
	case ev.Err != nil:
		row.state = stateFailed
	case ev.Stats.ChunkCount == 0 || ev.Stats.FailedItemCount > 0:
		row.state = statePartial
	default:
		row.state = stateDone
	}
}

func (app *App) row(st engine.Stage) *stageRow {
	for i := range app.rows {
		if app.rows[i].stage == st {
			return &app.rows[i]
		}
	}
	return nil
}

func (app *App) done() bool {
	return !app.finished.IsZero()
}

// status summarises the whole run as a StatusStyle word.
func (app *App) status() string {
	if !app.done() {
		return stateRunning.String()
	}
	if app.runErr != nil {
		if errors.Is(app.runErr, context.Canceled) {
			return "cancelled"
		}
		return stateFailed.String()
	}
	for _, r := range app.rows {
		if r.state == statePartial {
			return statePartial.String()
		}
	}
	return stateDone.String()
}

func (app *App) elapsed() time.Duration {
	if app.done() {
		return app.finished.Sub(app.started)
	}
	return app.now().Sub(app.started)
}

// renderSummary renders the closing line once the run has returned.
func renderSummary(app *App) string {
	if !app.done() {
		return ""
	}
	if app.runErr != nil {
		return StyleError.Render("✗ run failed: " + app.runErr.Error())
	}
	if app.result == nil {
		return ""
	}
	return StatusStyle(app.status()).Render(fmt.Sprintf("✓ %d entities written to %s",
		app.result.Entities(), app.result.TransformedPath))
}
