package cmd

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/tui"
	"github.com/theirongolddev/runway/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive forecast dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	var cadence forecast.Cadence
	if flagCadence != "" {
		c, err := forecast.ParseCadence(flagCadence)
		if err != nil {
			return err
		}
		cadence = c
	}

	opts := tui.Options{
		DataDir:         dataDir(cfg),
		Horizon:         flagHorizon,
		Cadence:         cadence,
		StartingBalance: startingBalanceOverride(cmd),
		NoCache:         flagNoCache,
	}
	if cmd.Flags().Changed("seed") {
		seed := flagSeed
		opts.Seed = &seed
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
