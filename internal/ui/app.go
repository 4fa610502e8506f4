package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/negwatch/negwatch/internal/config"
	"github.com/negwatch/negwatch/internal/export"
	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/model"
	"github.com/negwatch/negwatch/internal/ui/configview"
	"github.com/negwatch/negwatch/internal/ui/filtersview"
	"github.com/negwatch/negwatch/internal/ui/gridview"
	"github.com/negwatch/negwatch/internal/ui/jobsview"
	"github.com/negwatch/negwatch/internal/ui/wizard"
	"github.com/negwatch/negwatch/internal/work"
)

// view identifies the active screen.
type view int

const (
	viewGrid view = iota
	viewFilters
	viewJobs
	viewConfig
	viewWizard
)

// jobsRefreshInterval drives the jobs view snapshot refresh while it is open.
const jobsRefreshInterval = 500 * time.Millisecond

// AppConfig carries the command factories the App needs. The App never holds
// the store or the API client directly; everything arrives via messages.
type AppConfig struct {
	Cfg     config.Config
	DataDir string
	Pool    *work.Pool

	LoadModes        func() tea.Cmd
	SaveModes        func(grid.ModeSet) tea.Cmd
	StartTournament  func(model.TournamentConfig) tea.Cmd
	WriteExport      func(filename, contents string) tea.Cmd
	BuildCache       func() tea.Cmd
	ClearCache       func() tea.Cmd
	DeletePreset     func(id string) tea.Cmd
	SetDefaultPreset func(id string) tea.Cmd
	DuplicatePreset  func(id string) tea.Cmd
	ExportPresets    func() tea.Cmd
	LoadScenarios    func() tea.Cmd
	LoadNegotiators  func() tea.Cmd
	LoadHistory      func() tea.Cmd
	RecalcStats      func(scenarioID string) tea.Cmd
	BackupSettings   func() tea.Cmd
	ResetSettings    func() tea.Cmd
}

// bannerLevel selects the feedback bar color.
type bannerLevel int

const (
	bannerNone bannerLevel = iota
	bannerSuccess
	bannerWarning
	bannerError
)

// App is the root Bubble Tea model.
type App struct {
	cfg AppConfig

	view        view
	gridView    gridview.Model
	filtersView filtersview.Model
	jobsView    jobsview.Model
	configView  configview.Model
	wizardView  wizard.Model

	bannerText  string
	bannerLevel bannerLevel

	width  int
	height int
	ready  bool
}

// NewApp creates the root model with all sub-views.
func NewApp(cfg AppConfig) App {
	return App{
		cfg:         cfg,
		gridView:    gridview.New(grid.DefaultModeSet()),
		filtersView: filtersview.New(),
		jobsView:    jobsview.New(cfg.Pool),
		configView:  configview.New(cfg.Cfg, cfg.DataDir),
		wizardView:  wizard.New(),
	}
}

// Init loads persisted state and the server enumerations.
func (a App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.cfg.LoadModes != nil {
		cmds = append(cmds, a.cfg.LoadModes())
	}
	if a.cfg.LoadScenarios != nil {
		cmds = append(cmds, a.cfg.LoadScenarios())
	}
	if a.cfg.LoadNegotiators != nil {
		cmds = append(cmds, a.cfg.LoadNegotiators())
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the active view.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		contentHeight := a.height - 2
		a.gridView.SetSize(a.width, contentHeight)
		a.filtersView.SetSize(a.width, contentHeight)
		a.jobsView.SetSize(a.width, contentHeight)
		a.configView.SetSize(a.width, contentHeight)
		return a, nil

	case ModesLoadedMsg:
		a.gridView.SetModes(msg.Modes)
		return a, nil

	case TournamentMsg:
		a.gridView.ApplyEvent(msg.TournamentID, msg.Event)
		switch msg.Event.Kind {
		case model.EventComplete:
			a.setBanner(bannerSuccess, "Tournament complete")
		case model.EventError:
			a.setBanner(bannerError, "Tournament failed: "+msg.Event.Message)
		}
		return a, nil

	case StreamClosedMsg:
		if a.gridView.Running() {
			a.setBanner(bannerWarning, "Tournament stream closed")
		}
		return a, nil

	case TournamentStartedMsg:
		if msg.Err != nil {
			a.setBanner(bannerError, "Start failed: "+msg.Err.Error())
		} else {
			a.setBanner(bannerSuccess, "Tournament "+msg.TournamentID+" started")
			a.view = viewGrid
		}
		return a, nil

	case CacheStatusMsg:
		a.configView.SetCacheStatus(msg.Status, msg.Err)
		return a, nil

	case CacheActionMsg:
		if msg.Err != nil {
			a.setBanner(bannerError, "Cache "+msg.Action+" failed: "+msg.Err.Error())
		} else {
			a.setBanner(bannerSuccess, "Cache "+msg.Action+" requested")
		}
		return a, nil

	case PresetsMsg:
		if msg.Err != nil {
			a.setBanner(bannerWarning, "Filter refresh failed: "+msg.Err.Error())
			return a, nil
		}
		a.filtersView.SetPresets(msg.Presets, msg.Stale)
		return a, nil

	case PresetActionMsg:
		if msg.Err != nil {
			a.setBanner(bannerError, "Preset "+msg.Action+" failed: "+msg.Err.Error())
		} else {
			a.setBanner(bannerSuccess, "Preset "+msg.Action+" done")
		}
		return a, nil

	case ScenariosMsg:
		if msg.Err != nil {
			a.setBanner(bannerWarning, "Scenario list failed: "+msg.Err.Error())
			return a, nil
		}
		a.wizardView.SetScenarios(msg.Scenarios)
		return a, nil

	case NegotiatorsMsg:
		if msg.Err != nil {
			a.setBanner(bannerWarning, "Negotiator list failed: "+msg.Err.Error())
			return a, nil
		}
		a.wizardView.SetNegotiators(msg.Negotiators)
		return a, nil

	case HistoryMsg:
		if msg.Err != nil {
			a.setBanner(bannerWarning, "No saved tournament: "+msg.Err.Error())
			return a, nil
		}
		a.gridView.LoadHistory(msg.TournamentID, *msg.Init, msg.Negotiations)
		a.setBanner(bannerSuccess, "Loaded saved tournament "+msg.TournamentID)
		return a, nil

	case StatsMsg:
		if msg.Err != nil {
			a.setBanner(bannerError, "Stats for "+msg.ScenarioID+" failed: "+msg.Err.Error())
		} else {
			a.setBanner(bannerSuccess, "Stats ready for "+msg.ScenarioID)
		}
		return a, nil

	case SettingsBackupMsg:
		if msg.Err != nil {
			a.setBanner(bannerError, "Settings backup failed: "+msg.Err.Error())
		} else {
			a.setBanner(bannerSuccess, "Settings saved to "+msg.Path)
		}
		return a, nil

	case SettingsResetMsg:
		if msg.Err != nil {
			a.setBanner(bannerError, "Settings reset failed: "+msg.Err.Error())
		} else {
			a.setBanner(bannerSuccess, "Server settings reset to defaults")
		}
		return a, nil

	case ExportedMsg:
		if msg.Err != nil {
			a.setBanner(bannerError, "Export failed: "+msg.Err.Error())
		} else {
			a.setBanner(bannerSuccess, "Exported "+msg.Path)
		}
		return a, nil

	case JobEventMsg:
		if a.view == viewJobs {
			a.jobsView.Refresh()
		}
		if msg.Change == "failed" && msg.Job != nil && msg.Job.Err != nil {
			a.setBanner(bannerError, msg.Job.Description+" failed: "+msg.Job.Err.Error())
		}
		return a, nil

	case jobsTickMsg:
		if a.view != viewJobs {
			return a, nil
		}
		a.jobsView.Refresh()
		return a, jobsTick()

	case spinner.TickMsg:
		if a.view != viewJobs {
			return a, nil
		}
		s, cmd := a.jobsView.Spinner().Update(msg)
		a.jobsView.SetSpinner(s)
		return a, cmd
	}

	return a, nil
}

func jobsTick() tea.Cmd {
	return tea.Tick(jobsRefreshInterval, func(time.Time) tea.Msg {
		return jobsTickMsg{}
	})
}

// handleKey dispatches keyboard input per view. Any key clears the banner.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.bannerLevel = bannerNone
	a.bannerText = ""

	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.view {
	case viewGrid:
		return a.handleGridKey(msg)
	case viewFilters:
		return a.handleFiltersKey(msg)
	case viewJobs:
		return a.handleJobsKey(msg)
	case viewConfig:
		return a.handleConfigKey(msg)
	case viewWizard:
		return a.handleWizardKey(msg)
	}
	return a, nil
}

func (a App) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		mode := grid.AllModes[idx]
		if a.gridView.ToggleMode(mode) && a.cfg.SaveModes != nil {
			return a, a.cfg.SaveModes(a.gridView.Modes())
		}
		return a, nil

	case "]", "tab":
		a.gridView.NextTab()
		return a, nil
	case "[", "shift+tab":
		a.gridView.PrevTab()
		return a, nil

	case "e":
		return a.exportGrid(export.ScopeCurrent)
	case "E":
		return a.exportGrid(export.ScopeAll)

	case "r":
		// Reopen the last saved tournament, but never over a live one.
		if !a.gridView.Running() && a.cfg.LoadHistory != nil {
			return a, a.cfg.LoadHistory()
		}
		return a, nil

	case "n":
		a.wizardView.Reset()
		a.view = viewWizard
		var cmds []tea.Cmd
		if a.cfg.LoadScenarios != nil {
			cmds = append(cmds, a.cfg.LoadScenarios())
		}
		if a.cfg.LoadNegotiators != nil {
			cmds = append(cmds, a.cfg.LoadNegotiators())
		}
		return a, tea.Batch(cmds...)

	case "f":
		a.view = viewFilters
		return a, nil
	case "w":
		a.view = viewJobs
		a.jobsView.Refresh()
		return a, tea.Batch(jobsTick(), a.jobsView.Spinner().Tick)
	case "c":
		a.view = viewConfig
		return a, nil
	}
	return a, nil
}

func (a App) exportGrid(scope export.Scope) (tea.Model, tea.Cmd) {
	filename, contents, err := a.gridView.Export(scope)
	if err != nil {
		a.setBanner(bannerWarning, err.Error())
		return a, nil
	}
	if a.cfg.WriteExport == nil {
		return a, nil
	}
	return a, a.cfg.WriteExport(filename, contents)
}

func (a App) handleFiltersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.view = viewGrid
		return a, nil
	case "q":
		return a, tea.Quit
	case "j", "down":
		a.filtersView.CursorDown()
	case "k", "up":
		a.filtersView.CursorUp()
	case "s":
		if p := a.filtersView.Selected(); p != nil && a.cfg.SetDefaultPreset != nil {
			return a, a.cfg.SetDefaultPreset(p.ID)
		}
	case "u":
		if p := a.filtersView.Selected(); p != nil && a.cfg.DuplicatePreset != nil {
			return a, a.cfg.DuplicatePreset(p.ID)
		}
	case "d":
		if id, confirmed := a.filtersView.RequestDelete(); confirmed && a.cfg.DeletePreset != nil {
			return a, a.cfg.DeletePreset(id)
		}
	case "e":
		if a.cfg.ExportPresets != nil {
			return a, a.cfg.ExportPresets()
		}
	default:
		a.filtersView.CancelDelete()
	}
	return a, nil
}

func (a App) handleJobsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.view = viewGrid
	case "q":
		return a, tea.Quit
	case "x":
		a.jobsView.ClearHistory()
	}
	return a, nil
}

func (a App) handleConfigKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.view = viewGrid
		a.configView.CancelClear()
	case "q":
		return a, tea.Quit
	case "b":
		if a.cfg.BuildCache != nil {
			return a, a.cfg.BuildCache()
		}
	case "x":
		if a.configView.RequestClear() && a.cfg.ClearCache != nil {
			return a, a.cfg.ClearCache()
		}
	case "s":
		if a.cfg.BackupSettings != nil {
			return a, a.cfg.BackupSettings()
		}
	case "R":
		if a.configView.RequestReset() && a.cfg.ResetSettings != nil {
			return a, a.cfg.ResetSettings()
		}
	default:
		a.configView.CancelClear()
	}
	return a, nil
}

func (a App) handleWizardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !a.wizardView.Back() {
			a.view = viewGrid
		}
	case "j", "down":
		a.wizardView.CursorDown()
	case "k", "up":
		a.wizardView.CursorUp()
	case " ":
		a.wizardView.ToggleSelection()
	case "h", "-":
		a.wizardView.Adjust(-1)
	case "l", "+":
		a.wizardView.Adjust(1)
	case "s":
		if s := a.wizardView.ScenarioUnderCursor(); s != nil && a.cfg.RecalcStats != nil {
			return a, a.cfg.RecalcStats(s.Path)
		}
	case "enter":
		if a.wizardView.Step() == wizard.StepConfirm {
			a.view = viewGrid
			if a.cfg.StartTournament != nil {
				return a, a.cfg.StartTournament(a.wizardView.Config())
			}
			return a, nil
		}
		a.wizardView.Next()
	}
	return a, nil
}

func (a *App) setBanner(level bannerLevel, text string) {
	a.bannerLevel = level
	a.bannerText = text
}

// View renders the active screen plus the banner and status bar.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var content string
	switch a.view {
	case viewGrid:
		content = a.gridView.View()
	case viewFilters:
		content = a.filtersView.View()
	case viewJobs:
		content = a.jobsView.View()
	case viewConfig:
		content = a.configView.View()
	case viewWizard:
		content = a.wizardView.View()
	}

	banner := ""
	if a.bannerLevel != bannerNone {
		style := BannerSuccess
		switch a.bannerLevel {
		case bannerWarning:
			style = BannerWarning
		case bannerError:
			style = BannerError
		}
		banner = style.Width(a.width).Render(a.bannerText) + "\n"
	}

	return content + "\n" + banner + a.statusBar()
}

func (a App) statusBar() string {
	hints := []string{
		StatusBarKey.Render("n") + StatusBarText.Render(":new"),
		StatusBarKey.Render("r") + StatusBarText.Render(":reopen"),
		StatusBarKey.Render("1-5") + StatusBarText.Render(":modes"),
		StatusBarKey.Render("[]") + StatusBarText.Render(":tabs"),
		StatusBarKey.Render("e/E") + StatusBarText.Render(":export"),
		StatusBarKey.Render("f") + StatusBarText.Render(":filters"),
		StatusBarKey.Render("w") + StatusBarText.Render(":jobs"),
		StatusBarKey.Render("c") + StatusBarText.Render(":config"),
		StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
	}
	return StatusBar.Width(a.width).Render(strings.Join(hints, "  "))
}
