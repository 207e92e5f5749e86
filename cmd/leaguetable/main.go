package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/derekprior/leaguetable/internal/config"
	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/season"
	"github.com/derekprior/leaguetable/internal/store"
)

const defaultConfigFile = "league.yaml"

var (
	configFile string
	logLevel   string
	caller     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leaguetable",
		Short: "League tables, promotion and relegation, and fixture scheduling",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&caller, "as", "", "Act as this user (default: the configured league owner)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter league.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	leagueCmd := &cobra.Command{Use: "league", Short: "Manage the league"}
	leagueCmd.AddCommand(&cobra.Command{
		Use:          "create",
		Short:        "Create the configured league in the database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), runCreateLeague)
		},
	})

	teamCmd := &cobra.Command{Use: "team", Short: "Manage teams"}
	teamCmd.AddCommand(&cobra.Command{
		Use:          "add <division> <name>",
		Short:        "Add a team to a division before the first season",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			division, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("division must be a number, got %q", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runAddTeam(ctx, a, division, args[1])
			})
		},
	})

	seasonCmd := &cobra.Command{Use: "season", Short: "Manage seasons"}
	seasonCmd.AddCommand(&cobra.Command{
		Use:          "advance",
		Short:        "Start the next season, applying promotion and relegation",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), runAdvanceSeason)
		},
	})

	matchweekCmd := &cobra.Command{Use: "matchweek", Short: "Manage matchweeks"}
	matchweekCmd.AddCommand(&cobra.Command{
		Use:          "advance",
		Short:        "Move on to the next matchweek",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), runAdvanceMatchweek)
		},
	})

	resultCmd := &cobra.Command{Use: "result", Short: "Enter results"}
	resultCmd.AddCommand(&cobra.Command{
		Use:          "record <fixture-id> <home-goals> <away-goals>",
		Short:        "Record the score of a fixture",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("home goals must be a number, got %q", args[1])
			}
			away, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("away goals must be a number, got %q", args[2])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runRecordResult(ctx, a, args[0], home, away)
			})
		},
	})

	var tableSeason, tableDivision int
	tableCmd := &cobra.Command{Use: "table", Short: "League tables"}
	showCmd := &cobra.Command{
		Use:          "show",
		Short:        "Print the standings",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runShowTable(ctx, a, tableSeason, tableDivision)
			})
		},
	}
	showCmd.Flags().IntVar(&tableSeason, "season", -1, "Season to show (default: current)")
	showCmd.Flags().IntVar(&tableDivision, "division", 0, "Division to show (default: all)")
	tableCmd.AddCommand(showCmd)

	fixturesCmd := &cobra.Command{Use: "fixtures", Short: "List, export and validate fixtures"}

	var listMatchweek int
	listCmd := &cobra.Command{
		Use:          "list",
		Short:        "List the fixtures of a matchweek",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runListFixtures(ctx, a, listMatchweek)
			})
		},
	}
	listCmd.Flags().IntVar(&listMatchweek, "matchweek", 0, "Matchweek to list (default: current)")

	var exportPath string
	exportCmd := &cobra.Command{
		Use:          "export",
		Short:        "Export fixtures and standings to an Excel workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runExport(ctx, a, exportPath)
			})
		},
	}
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "fixtures.xlsx", "Output Excel file path")

	validateCmd := &cobra.Command{
		Use:          "validate <fixtures.xlsx>",
		Short:        "Check an exported workbook is a complete double round-robin",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
	fixturesCmd.AddCommand(listCmd, exportCmd, validateCmd)

	var addr string
	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve the league over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runServe(ctx, a, addr)
			})
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	rootCmd.AddCommand(initCmd, leagueCmd, teamCmd, seasonCmd, matchweekCmd, resultCmd, tableCmd, fixturesCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles what every league command needs.
type app struct {
	cfg   *config.Config
	store *store.Store
	svc   *season.Service
	log   zerolog.Logger
}

// caller returns the identity mutating commands act as.
func (a *app) caller() string {
	if caller != "" {
		return caller
	}
	return a.cfg.League.Owner
}

// league finds the configured league in the database.
func (a *app) league(ctx context.Context) (league.League, error) {
	l, err := a.store.FindByName(ctx, a.cfg.League.Name)
	if err != nil {
		return league.League{}, fmt.Errorf("%w (run `leaguetable league create` first)", err)
	}
	return l, nil
}

func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q", logLevel)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().
		Logger(), nil
}

func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var opts []season.Option
	if cfg.ShuffleFixtures {
		opts = append(opts, season.WithShuffle(cfg.Seed))
	}
	a := &app{
		cfg:   cfg,
		store: st,
		svc:   season.NewService(st, logger, opts...),
		log:   logger,
	}
	return fn(ctx, a)
}
