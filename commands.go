package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/borgmon/lightwalker/pkg/calendar"
	"github.com/borgmon/lightwalker/pkg/catalog"
	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/config"
	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/planner"
	"github.com/borgmon/lightwalker/pkg/store"
)

const appID = "io.lightwalker.app"

type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lightwalker",
		Short:         "Plan your day on a scrolling timeline of habits borrowed from role models",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			lw, err := newLightwalker(cmd.Context(), app.NewWithID(appID), cfg)
			if err != nil {
				return err
			}
			lw.run()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ~/.config/lightwalker/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newSeedCmd(opts),
		newSearchCmd(opts),
		newSuggestCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newStatsCmd(opts),
		newActivitiesCmd(opts),
		newRoleModelsCmd(opts),
	)
	return root
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	loader := config.NewLoader()
	if opts.configFile != "" {
		loader.SetConfigFile(opts.configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       os.Stderr,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	if used := loader.ConfigFileUsed(); used != "" {
		logging.Info().Str("file", used).Msg("Loaded config")
	}
	return cfg, nil
}

// openDatabase opens the catalog and seeds it on first use.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.Database.Path == "" {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
	}
	database, err := db.Open(ctx, cfg.DatabasePath(), cfg.Database.BusyTimeoutMs)
	if err != nil {
		return nil, err
	}
	if _, err := catalog.Seed(ctx, database, false); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

// withPlanner runs fn against a planner without reminders. When prefs is
// non-nil today's saved timeline is loaded first. The context carries a
// logger tagged with the command name.
func withPlanner(cmd *cobra.Command, opts *rootOptions, prefs store.Preferences, fn func(context.Context, *config.Config, *planner.Planner) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	ctx := logging.WithContext(cmd.Context(), logging.Component("cli").With().Str("command", cmd.CommandPath()).Logger())
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	p, err := planner.New(planner.Deps{DB: database, Prefs: prefs})
	if err != nil {
		return err
	}
	if err := p.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, cfg, p)
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in role models and activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Database.Path == "" {
				if err := cfg.EnsureDirectories(); err != nil {
					return err
				}
			}
			database, err := db.Open(cmd.Context(), cfg.DatabasePath(), cfg.Database.BusyTimeoutMs)
			if err != nil {
				return err
			}
			defer database.Close()

			result, err := catalog.Seed(cmd.Context(), database, reset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d role models and %d activities (%d already present)\n",
				result.RoleModels, result.Templates, result.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "replace built-in rows, keeping user preferences")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find role-model traits matching a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, opts, nil, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				results, err := p.Search(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SCORE\tROLE MODEL\tTRAIT\tDESCRIPTION")
				for _, r := range results {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Score, r.Attribute.RoleModelName, r.Attribute.Name, r.Attribute.Description)
				}
				return w.Flush()
			})
		},
	}
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var roleModels []string
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List activities for today, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, opts, nil, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				if err := p.SelectRoleModels(ctx, roleModels...); err != nil {
					return err
				}
				activities, err := p.Suggestions(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SOURCE\tACTIVITY\tCATEGORY\tDURATION\tPOINTS")
				for _, a := range activities {
					fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%d\n", a.Source, a.Icon, a.Title, a.Category, clock.FormatDuration(a.DurationMin), a.Points)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringSliceVar(&roleModels, "role-model", nil, "role-model slug to draw activities from (repeatable)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write today's timeline as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := app.NewWithID(appID).Preferences()
			return withPlanner(cmd, opts, prefs, func(ctx context.Context, cfg *config.Config, p *planner.Planner) error {
				var w io.Writer = cmd.OutOrStdout()
				if out != "" && out != "-" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", out, err)
					}
					defer f.Close()
					w = f
				}
				settings := store.LoadNotificationSettings(prefs, cfg.NotificationDefaults())
				activities := p.Activities()
				if err := calendar.Export(w, time.Now(), activities, settings.ShowMinutesBefore); err != nil {
					return err
				}
				logger := logging.FromContext(ctx)
				logger.Info().Int("activities", len(activities)).Str("out", out).Msg("Timeline exported")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.ics|url>",
		Short: "Add today's events from an iCalendar file or feed to the timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := app.NewWithID(appID).Preferences()
			return withPlanner(cmd, opts, prefs, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				logger := logging.FromContext(ctx)
				activities, err := readCalendar(ctx, args[0], time.Now())
				if err != nil {
					return err
				}
				added := 0
				for _, a := range activities {
					if err := p.Add(a); err != nil {
						logger.Warn().Err(err).Str("title", a.Title).Str("at", a.ScheduledTime).Msg("Skipped calendar event")
						fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s at %s: %v\n", a.Title, a.ScheduledTime, err)
						continue
					}
					added++
				}
				logger.Info().Str("source", args[0]).Int("added", added).Int("events", len(activities)).Msg("Calendar imported")
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d events\n", added, len(activities))
				return nil
			})
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show points and streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, opts, nil, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				stats, err := p.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Today: %d points from %d activities\nTotal: %d points\nStreak: %d days\n",
					stats.PointsToday, stats.CompletionsToday, stats.TotalPoints, stats.Streak)

				done, err := p.CompletedToday(ctx)
				if err != nil {
					return err
				}
				for _, c := range done {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s  +%d\n", c.CompletedAt.Local().Format("15:04"), c.Title, c.Points)
				}
				return nil
			})
		},
	}
}

func newActivitiesCmd(opts *rootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List catalog activities, most used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, opts, nil, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				var (
					templates []models.ActivityTemplate
					err       error
				)
				if category == "" {
					templates, err = p.Templates(ctx)
				} else {
					c := models.ParseCategory(category)
					if c == models.CategoryOther {
						return fmt.Errorf("unknown category %q", category)
					}
					templates, err = p.TemplatesInCategory(ctx, c)
				}
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tACTIVITY\tCATEGORY\tDURATION\tPOINTS\tUSED")
				for _, t := range templates {
					fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%d\t%d\n", t.ID, t.Icon, t.Title, t.Category, t.Duration, t.Points, t.TimesUsed)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list one category, e.g. mindfulness")
	return cmd
}

func newRoleModelsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role-models",
		Short: "List, show and edit role models",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List role models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, opts, nil, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				roleModels, err := p.RoleModels(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SLUG\tNAME\tERA")
				for _, rm := range roleModels {
					fmt.Fprintf(w, "%s\t%s\t%s\n", rm.Slug, rm.Name, rm.Era)
				}
				return w.Flush()
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show a role model and its traits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, opts, nil, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				rm, err := p.RoleModel(ctx, args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				printRoleModel(cmd.OutOrStdout(), rm)
				return nil
			})
		},
	}

	var name, era, description string
	edit := &cobra.Command{
		Use:   "edit <slug>",
		Short: "Change a role model's name, era or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, opts, nil, func(ctx context.Context, _ *config.Config, p *planner.Planner) error {
				rm, err := p.RoleModel(ctx, args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if cmd.Flags().Changed("name") {
					rm.Name = name
				}
				if cmd.Flags().Changed("era") {
					rm.Era = era
				}
				if cmd.Flags().Changed("description") {
					rm.Description = description
				}
				updated, err := p.UpdateRoleModel(ctx, rm)
				if err != nil {
					return err
				}
				printRoleModel(cmd.OutOrStdout(), updated)
				return nil
			})
		},
	}
	edit.Flags().StringVar(&name, "name", "", "display name")
	edit.Flags().StringVar(&era, "era", "", "era, e.g. 121 to 180 AD")
	edit.Flags().StringVar(&description, "description", "", "one-paragraph description")

	cmd.AddCommand(list, show, edit)
	return cmd
}

func printRoleModel(w io.Writer, rm models.RoleModel) {
	fmt.Fprintf(w, "%s (%s)\n%s\n", rm.Name, rm.Era, rm.Description)
	if len(rm.CoreValues) > 0 {
		fmt.Fprintf(w, "Values: %s\n", strings.Join(rm.CoreValues, ", "))
	}
	for _, attr := range rm.Attributes {
		fmt.Fprintf(w, "  %s: %s\n", attr.Name, attr.Description)
	}
}

func readCalendar(ctx context.Context, source string, day time.Time) ([]models.TimelineActivity, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "webcal://") {
		url := strings.Replace(source, "webcal://", "https://", 1)
		return calendar.Fetch(ctx, &http.Client{Timeout: 30 * time.Second}, url, day)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer f.Close()
	return calendar.Import(f, day)
}
