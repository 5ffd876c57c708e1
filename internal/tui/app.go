// Package tui provides the interactive Bubble Tea dashboard for runway.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the ledger finishes loading.
type DataLoadedMsg struct {
	Transactions []model.Transaction
	Files        int
	Accounts     int
	ParseErrors  int
	LoadTime     time.Duration
	Err          error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg DataLoadedMsg

// Options carries the command-line inputs of the dashboard. Nil or zero
// fields fall back to the config file.
type Options struct {
	DataDir         string
	Horizon         int
	Cadence         forecast.Cadence
	StartingBalance *float64
	Seed            *uint64
	NoCache         bool
}

// App is the root Bubble Tea model.
type App struct {
	// Ledger
	txs         []model.Transaction
	fileCount   int
	accounts    int
	parseErrors int
	loaded      bool
	loadTime    time.Duration
	loadErr     error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Forecast inputs
	horizon         int
	cadence         forecast.Cadence
	startingBalance float64
	balanceOverride *float64 // --starting-balance, wins over config
	source          forecast.Source

	// Forecast outputs, rebuilt by recompute
	result      *model.RollingForecastResult
	risk        forecast.RiskAnalysis
	scenarios   []forecast.ScenarioResult
	forecastErr error
	periodTable table.Model

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	settings  settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues // shared with the form across model copies
	needSetup bool

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	dataDir string
	noCache bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	headerHeight     = 2 // tab bar + forecast info row
	statusHeight     = 1
	minContentHeight = 5

	minRefreshInterval = 10 * time.Second
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabForecast
	tabConfidence
	tabRisk
	tabSettings
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates the dashboard model.
func NewApp(opts Options) App {
	cfg := loadConfigOrDefault()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefreshInterval {
		refreshInterval = time.Minute
	}

	a := App{
		needSetup:       !config.Exists(),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		horizon:         cfg.General.DefaultHorizon,
		startingBalance: cfg.Forecast.StartingBalance,
		balanceOverride: opts.StartingBalance,
		dataDir:         opts.DataDir,
		noCache:         opts.NoCache,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
		periodTable:     newPeriodTable(),
	}
	if a.dataDir == "" {
		a.dataDir = cfg.DataDir()
	}
	if opts.Horizon != 0 {
		a.horizon = opts.Horizon
	}
	a.cadence = opts.Cadence
	if a.cadence == "" {
		a.cadence, _ = forecast.ParseCadence(cfg.General.Cadence)
	}
	if opts.StartingBalance != nil {
		a.startingBalance = *opts.StartingBalance
	}

	seed := opts.Seed
	if seed == nil {
		seed = cfg.Forecast.Seed
	}
	if seed != nil {
		a.source = forecast.NewLockedSource(forecast.NewSeededSource(*seed))
	} else {
		a.source = forecast.NewLockedSource(forecast.NewRandomSource())
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.dataDir, a.noCache, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// recompute rebuilds the forecast from the loaded ledger and current inputs.
func (a *App) recompute() {
	cfg := loadConfigOrDefault()

	balance := a.startingBalance
	req, err := pipeline.ForecastRequest(a.txs, pipeline.RequestOptions{
		Build: pipeline.BuildOptions{
			Cadence:            a.cadence,
			Periods:            cfg.General.HistoryPeriods,
			EstimateVolatility: true,
		},
		Horizon:         a.horizon,
		StartingBalance: &balance,
		Seasonality:     cfg.General.Seasonality,
	})
	if err != nil {
		a.forecastErr = err
		a.result = nil
		return
	}

	engine := forecast.New(cfg.ForecastConfig(),
		forecast.WithSource(a.source),
		forecast.WithLogger(forecast.DiscardLogger()),
	)
	res, err := engine.Run(req)
	if err != nil {
		a.forecastErr = err
		a.result = nil
		return
	}

	a.forecastErr = nil
	a.result = res
	a.risk = forecast.AnalyzeRisk(res)
	a.scenarios, err = engine.RunScenarios(res, cfg.ScenarioSpecs())
	if err != nil {
		a.scenarios = nil
	}
	a.syncPeriodTable()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.syncPeriodTable()
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabForecast {
				a.periodTable.MoveUp(1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabForecast {
				a.periodTable.MoveDown(1)
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.applyLoad(msg)
		a.loaded = true
		a.recompute()

		if a.needSetup {
			vals := SetupValuesFrom(loadConfigOrDefault())
			vals.DataDir = a.dataDir
			a.setupVals = &vals
			a.setupForm = NewSetupForm(len(a.txs), a.dataDir, a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.dataDir, a.noCache))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		if msg.Err == nil {
			a.applyLoad(DataLoadedMsg(msg))
			a.recompute()
		} else {
			a.loadErr = msg.Err
			a.lastRefresh = time.Now()
		}
		return a, nil
	}

	// Forward cursor blinks and the like to the setup form.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a *App) applyLoad(msg DataLoadedMsg) {
	a.txs = msg.Transactions
	a.fileCount = msg.Files
	a.accounts = msg.Accounts
	a.parseErrors = msg.ParseErrors
	a.loadTime = msg.LoadTime
	a.loadErr = msg.Err
	a.lastRefresh = time.Now()
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabForecast:
		switch key {
		case "j", "k", "up", "down", "pgup", "pgdown", "g", "G", "home", "end", "ctrl+d", "ctrl+u":
			var cmd tea.Cmd
			a.periodTable, cmd = a.periodTable.Update(msg)
			return a, cmd
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.noCache)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		_ = config.Save(cfg)
		return a, nil
	case "H":
		if a.horizon == forecast.ShortTerm.Horizon {
			a.horizon = forecast.LongTerm.Horizon
		} else {
			a.horizon = forecast.ShortTerm.Horizon
		}
		a.recompute()
		return a, nil
	case "M":
		if a.cadence == forecast.Monthly {
			a.cadence = forecast.Weekly
		} else {
			a.cadence = forecast.Monthly
		}
		a.recompute()
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		prevDir := a.dataDir
		a.settings.saveErr = a.saveSetupConfig()
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		if a.dataDir != prevDir && !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.noCache)
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) contentHeight() int {
	return max(minContentHeight, a.height-headerHeight-statusHeight)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(5, a.height)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  runway needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ runway"))
	b.WriteString(subtitleStyle.Render(" · Rolling Cash Forecast"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing ledger files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Scanning " + a.dataDir + "..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

type keyBinding struct{ key, desc string }

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	section := func(title string, bindings []keyBinding) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, bind := range bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section("Navigation", []keyBinding{
		{"o f c k x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move through periods / settings"},
		{"g G", "First / Last period"},
	})
	section("Forecast", []keyBinding{
		{"H", "Toggle 13 / 52 period horizon"},
		{"M", "Toggle weekly / monthly cadence"},
		{"r", "Reload ledger"},
		{"R", "Toggle auto-refresh"},
	})
	section("General", []keyBinding{
		{"Enter", "Edit setting"},
		{"Esc", "Cancel"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	info := pill.Render(" ") + accent.Render(fmt.Sprintf("%d %s", a.horizon, a.cadence))
	if a.result != nil {
		info += pill.Render(" │ from ") + accent.Render(a.result.StartDate.Format(time.DateOnly))
	}
	info += pill.Render(" │ opening ") + accent.Render(cli.FormatMoney(a.startingBalance))
	info += pill.Render(fmt.Sprintf(" │ %s transactions ", cli.FormatNumber(int64(len(a.txs)))))

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(info)

	status := components.RenderStatusBar(w, components.StatusInfo{
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	})

	contentH := a.contentHeight()

	var content string
	switch {
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	case a.result == nil:
		content = a.renderNoForecast(cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabForecast:
		content = a.renderForecastTab(cw)
	case a.activeTab == tabConfidence:
		content = a.renderConfidenceTab(cw, contentH)
	case a.activeTab == tabRisk:
		content = a.renderRiskTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, status)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderNoForecast(cw int) string {
	t := theme.Active
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	switch {
	case a.loadErr != nil:
		b.WriteString(warn.Render("Ledger could not be loaded: " + a.loadErr.Error()))
	case a.forecastErr != nil:
		b.WriteString(warn.Render("Forecast failed: " + a.forecastErr.Error()))
	default:
		b.WriteString(warn.Render("No forecast yet."))
	}
	b.WriteString("\n\n")
	b.WriteString(muted.Render("Ledger directory: " + a.dataDir))
	return components.ContentCard("Forecast unavailable", b.String(), cw)
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadLedger loads transactions, preferring the SQLite ledger and falling
// back to a full parse.
func loadLedger(dir string, noCache bool, progressFn pipeline.ProgressFunc) DataLoadedMsg {
	start := time.Now()

	if !noCache {
		if ledger, err := store.Open(pipeline.LedgerPath()); err == nil {
			cr, loadErr := pipeline.LoadWithCache(dir, ledger, progressFn)
			_ = ledger.Close()
			if loadErr == nil {
				return loadedMsg(&cr.LoadResult, time.Since(start))
			}
		}
	}

	result, err := pipeline.Load(dir, progressFn)
	if err != nil {
		return DataLoadedMsg{LoadTime: time.Since(start), Err: err}
	}
	return loadedMsg(result, time.Since(start))
}

func loadedMsg(r *pipeline.LoadResult, elapsed time.Duration) DataLoadedMsg {
	return DataLoadedMsg{
		Transactions: r.Transactions,
		Files:        r.TotalFiles,
		Accounts:     r.AccountCount,
		ParseErrors:  r.ParseErrors,
		LoadTime:     elapsed,
	}
}

// loadDataCmd loads the ledger in a background goroutine, streaming
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(dir string, noCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send so workers never stall on the UI.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			sub <- loadLedger(dir, noCache, progressFn)
		}()
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads the ledger without progress reporting.
func refreshDataCmd(dir string, noCache bool) tea.Cmd {
	return func() tea.Msg {
		return RefreshDataMsg(loadLedger(dir, noCache, nil))
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at column x, or -1. Hitboxes follow the
// widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}
