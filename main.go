package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"fitagent/internal/auth"
	"fitagent/internal/automation"
	"fitagent/internal/config"
	"fitagent/internal/provider"
	"fitagent/internal/provider/fitzone"
	"fitagent/internal/provider/pulse"
	"fitagent/internal/runner"
	"fitagent/internal/schedule"
	"fitagent/internal/store"
	"fitagent/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var userID int64

	root := &cobra.Command{
		Use:           "fitagent",
		Short:         "Local fitness automation agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(userID)
		},
	}
	root.PersistentFlags().Int64Var(&userID, "user", 1, "user id to operate as")

	root.AddCommand(newScheduleCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newConnectCmd())

	return root
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Expand action rules into events and purge expired ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			svc := schedule.NewService(db)
			now := time.Now()

			created, err := svc.ExpandRules(now)
			if err != nil {
				return fmt.Errorf("expanding rules: %w", err)
			}
			purged, err := svc.GarbageCollect(now)
			if err != nil {
				return fmt.Errorf("collecting expired events: %w", err)
			}

			fmt.Printf("Created %d event(s), purged %d expired event(s).\n", created, purged)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <provider>",
		Short: "Execute pending action events for one provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil || cfg == nil {
				return err
			}

			db, err := store.Open()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			prov, err := buildProvider(args[0], db, cfg)
			if err != nil {
				return err
			}

			r := runner.New(db, prov, runner.Config{
				WindowEnd: time.Duration(cfg.Runner.WindowHours) * time.Hour,
				Parallel:  cfg.Runner.Parallel,
				Logger:    log.New(os.Stderr, "", log.LstdFlags),
			})

			summary, err := r.Run(cmd.Context(), time.Now())
			if err != nil {
				return fmt.Errorf("running %s: %w", prov.Name(), err)
			}

			fmt.Printf("Fetched %d event(s): %d succeeded, %d disabled, %d left pending.\n",
				summary.Fetched, summary.Succeeded, summary.Disabled, summary.Pending)
			return nil
		},
	}
}

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <user-id>",
		Short: "Link a user's tracker account via OAuth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			cfg, err := loadConfig()
			if err != nil || cfg == nil {
				return err
			}

			db, err := store.Open()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			return connect(cmd.Context(), db, cfg, userID)
		},
	}
}

// loadConfig loads and validates the config file. A nil config with a
// nil error means setup instructions were printed; the caller exits.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your tracker API credentials.")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil, nil
	}

	return cfg, nil
}

func buildProvider(name string, db *store.DB, cfg *config.Config) (provider.Provider, error) {
	switch name {
	case "fitzone":
		driver := automation.NewRemoteDriver(cfg.FitZone.WebDriverURL)
		return fitzone.New(driver, cfg.FitZone.BaseURL, *cfg.FitZone.Headless), nil
	case "pulsetrack":
		return pulse.New(db, newOAuthConfig(cfg), ""), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (available: fitzone, pulsetrack)", name)
	}
}

func newOAuthConfig(cfg *config.Config) *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Tracker.ClientID,
		ClientSecret: cfg.Tracker.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})
}

func connect(ctx context.Context, db *store.DB, cfg *config.Config, userID int64) error {
	result, err := auth.Authenticate(ctx, newOAuthConfig(cfg))
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	trackerAuth := &store.TrackerAuth{
		UserID:       userID,
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}
	if err := db.SaveTrackerAuth(trackerAuth); err != nil {
		return fmt.Errorf("saving tracker auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("User %d connected as athlete %d.\n", userID, result.AthleteID)
	return nil
}

func runTUI(userID int64) error {
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	app := tui.NewApp(db, userID)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
