// Package main implements the promptlib CLI for working with the prompt library from a terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dsjohal14/promptlib/internal/library"
	"github.com/dsjohal14/promptlib/internal/libs/config"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/pii"
	"github.com/dsjohal14/promptlib/internal/scope/riskscan"
	"github.com/dsjohal14/promptlib/internal/scope/search"
	"github.com/dsjohal14/promptlib/internal/scope/seed"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs. Commands that touch the store
// open it lazily through withStore.
type app struct {
	cfg *config.Config
	out io.Writer
}

func rootCmd() *cobra.Command {
	a := &app{out: os.Stdout}
	var logLevel string

	cmd := &cobra.Command{
		Use:           "promptlib",
		Short:         "Prompt library CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			obs.InitLogger(logLevel)
			a.cfg = cfg
			a.out = cmd.OutOrStdout()
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")

	cmd.AddCommand(
		a.searchCmd(),
		a.tagsCmd(),
		a.piiCmd(),
		a.seedCmd(),
		a.migrateCmd(),
		a.scanCmd(),
	)
	return cmd
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(store db.Storage) error) error {
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := db.Open(openCtx, a.cfg, obs.Logger("cli"))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) searchCmd() *cobra.Command {
	var (
		q     search.Query
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search published prompts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Search = args[0]
			}
			return a.withStore(cmd.Context(), func(store db.Storage) error {
				results, err := library.New(store, nil).Search(cmd.Context(), q)
				if err != nil {
					return err
				}
				if limit > 0 && len(results) > limit {
					results = results[:limit]
				}
				for _, p := range results {
					fav := " "
					if p.IsFavorite {
						fav = "*"
					}
					fmt.Fprintf(a.out, "%s %s  [%s] %s\n", fav, p.ID, p.Category, p.Title)
				}
				fmt.Fprintf(a.out, "%d result(s)\n", len(results))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&q.Category, "category", "", "Only prompts in this category")
	cmd.Flags().StringSliceVar(&q.Tags, "tag", nil, "Only prompts carrying one of these tags (repeatable)")
	cmd.Flags().BoolVar(&q.OnlyFavorites, "favorites", false, "Only favorite prompts")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results to print (0 for all)")
	return cmd
}

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag of the published library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store db.Storage) error {
				tags, err := library.New(store, nil).Tags(cmd.Context())
				if err != nil {
					return err
				}
				for _, tag := range tags {
					fmt.Fprintln(a.out, tag)
				}
				return nil
			})
		},
	}
}

func (a *app) piiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pii [text]",
		Short: "Detect personal data in text, read from stdin when no argument is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}

			detections := pii.Detect(text)
			if warning := pii.Warning(detections); warning != "" {
				fmt.Fprintln(a.out, warning)
			}
			fmt.Fprintf(a.out, "risk: %s\n", pii.LevelOf(detections))
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML fixture into the store, skipping existing entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.SeedFile
			}
			fixture, err := seed.Load(file)
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store db.Storage) error {
				res, err := seed.Apply(cmd.Context(), store, fixture)
				if err != nil {
					return err
				}
				if len(res.Errors) > 0 {
					fmt.Fprintf(os.Stderr, "seed finished with errors:\n  %s\n", strings.Join(res.Errors, "\n  "))
				}
				return a.printJSON(res)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixture path; defaults to SEED_FILE or the embedded fixture")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			version, err := db.Migrate(a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "schema at version %d\n", version)
			return nil
		},
	}
}

func (a *app) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one risk scan and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store db.Storage) error {
				rep, err := riskscan.New(store, nil).Run(cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(rep)
			})
		},
	}
}
