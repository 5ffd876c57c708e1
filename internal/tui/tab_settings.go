package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldBalance = iota
	settingsFieldHorizon
	settingsFieldCadence
	settingsFieldSeasonality
	settingsFieldHistory
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldBalance:
		ti.Placeholder = "100000"
		ti.SetValue(strconv.FormatFloat(a.startingBalance, 'f', -1, 64))
	case settingsFieldHorizon:
		ti.Placeholder = "13 or 52"
		ti.SetValue(strconv.Itoa(a.horizon))
	case settingsFieldCadence:
		ti.Placeholder = "weekly or monthly"
		ti.SetValue(string(a.cadence))
	case settingsFieldSeasonality:
		ti.Placeholder = strings.Join(config.ProfileNames(), ", ")
		ti.SetValue(cfg.General.Seasonality)
	case settingsFieldHistory:
		ti.Placeholder = "12 (periods of history per series)"
		ti.SetValue(strconv.Itoa(cfg.General.HistoryPeriods))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.saveErr = a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value, applies it to the running
// dashboard and persists it.
func (a *App) settingsSave() error {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	rerun := false

	switch a.settings.cursor {
	case settingsFieldBalance:
		v, err := parseAmount(val)
		if err != nil {
			return err
		}
		cfg.Forecast.StartingBalance = v
		a.startingBalance = v
		rerun = true
	case settingsFieldHorizon:
		h, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("horizon: %w", err)
		}
		if _, ok := cfg.ForecastConfig().Variant(h); !ok {
			return fmt.Errorf("%w: %d", forecast.ErrUnsupportedHorizon, h)
		}
		cfg.General.DefaultHorizon = h
		a.horizon = h
		rerun = true
	case settingsFieldCadence:
		c, err := forecast.ParseCadence(val)
		if err != nil {
			return err
		}
		cfg.General.Cadence = string(c)
		a.cadence = c
		rerun = true
	case settingsFieldSeasonality:
		name := config.NormalizeProfileName(val)
		if _, ok := config.SeasonalityProfile(name, a.cadence); !ok {
			return fmt.Errorf("unknown seasonality profile %q", val)
		}
		cfg.General.Seasonality = name
		rerun = true
	case settingsFieldHistory:
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return fmt.Errorf("history periods must be a positive integer")
		}
		cfg.General.HistoryPeriods = n
		rerun = true
	case settingsFieldTheme:
		if !theme.Known(val) {
			return fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("auto refresh: %w", err)
		}
		cfg.TUI.AutoRefresh = b
		a.autoRefresh = b
	case settingsFieldRefreshInterval:
		sec, err := strconv.Atoi(val)
		if err != nil || time.Duration(sec)*time.Second < minRefreshInterval {
			return fmt.Errorf("refresh interval must be at least %s", minRefreshInterval)
		}
		cfg.TUI.RefreshIntervalSec = sec
		a.refreshInterval = time.Duration(sec) * time.Second
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	if rerun {
		a.recompute()
	} else {
		a.syncPeriodTable()
	}
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	balance := cli.FormatMoney(a.startingBalance)
	if a.balanceOverride != nil {
		balance += " (flag)"
	}
	fields := []struct{ label, value string }{
		{"Starting Balance", balance},
		{"Horizon", fmt.Sprintf("%d periods", a.horizon)},
		{"Cadence", string(a.cadence)},
		{"Seasonality", cfg.General.Seasonality},
		{"History Periods", strconv.Itoa(cfg.General.HistoryPeriods)},
		{"Theme", cfg.Appearance.Theme},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", a.refreshInterval.String()},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			row := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(row)
			if pad := innerW - lipgloss.Width(row); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		form.WriteString("\n")
		form.WriteString(warnStyle.Render("Not saved: " + a.settings.saveErr.Error()))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	info := []struct{ label, value string }{
		{"Ledger directory:", a.dataDir},
		{"Transactions:", cli.FormatNumber(int64(len(a.txs)))},
		{"Files / accounts:", fmt.Sprintf("%d / %d", a.fileCount, a.accounts)},
		{"Malformed rows:", cli.FormatNumber(int64(a.parseErrors))},
		{"Load time:", fmt.Sprintf("%.1fs", a.loadTime.Seconds())},
		{"Config file:", config.Path()},
		{"Ledger database:", pipeline.LedgerPath()},
	}
	var infoBody strings.Builder
	for i, row := range info {
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", row.label)))
		infoBody.WriteString(valueStyle.Render(truncStr(row.value, innerW-18)))
		if i < len(info)-1 {
			infoBody.WriteString("\n")
		}
	}

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("Ledger", infoBody.String(), cw)
}
