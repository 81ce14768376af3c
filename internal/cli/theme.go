package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/config"
	"github.com/existflow/taskdeck/internal/kv"
)

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the color theme",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Println(cfg.Theme)
		return nil
	}

	switch args[0] {
	case config.ThemeLight, config.ThemeDark:
		cfg.Theme = args[0]
	default:
		return fmt.Errorf("unknown theme %q, expected light or dark", args[0])
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	// The TUI reads the preference from the state store, so both go
	// together
	if state, err := kv.OpenDefault(); err == nil {
		_ = state.Set(kv.KeyThemePreference, cfg.Theme)
	}

	fmt.Printf("✓ Theme set to %s\n", cfg.Theme)
	return nil
}
