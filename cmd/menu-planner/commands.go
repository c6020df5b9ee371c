package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menu-planner/internal/app"
	"menu-planner/internal/database"
	"menu-planner/internal/shared"
	"menu-planner/internal/shopping"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := database.NewDB(cfg.DatabasePath, logger)
			if err != nil {
				return err
			}
			logger.Info("database is up to date", zap.String("path", cfg.DatabasePath))
			return db.Close()
		},
	}
}

func regenerateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "regenerate <menu-id>",
		Short: "Rebuild a menu's shopping list from its recipes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			menuID, err := shared.ParseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				list, err := a.Shopping.Regenerate(ctx, menuID)
				if err != nil {
					return err
				}
				return printList(cmd.OutOrStdout(), list, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

func showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <menu-id>",
		Short: "Print a menu's stored shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			menuID, err := shared.ParseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				list, err := a.Shopping.Fetch(ctx, menuID)
				if err != nil {
					return err
				}
				return printList(cmd.OutOrStdout(), list, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

func clipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clip <url>",
		Short: "Import a recipe from a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Clipper.ClipURL(ctx, args[0])
				if err != nil {
					return err
				}
				verb := "updated"
				if res.Created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s recipe %d %q (%s)\n", verb, res.Recipe.ID, res.Recipe.Title, res.Method)
				return nil
			})
		},
	}
}

func importGhostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-ghost",
		Short: "Copy recipe posts from the Ghost blog into the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cfg.GhostEnabled() {
				return fmt.Errorf("GHOST_API_URL is not configured")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Importer.ImportGhostRecipes(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, created %d, updated %d, skipped %d, failed %d\n",
					report.Fetched, report.Created, report.Updated, report.Skipped, report.Failed)
				return nil
			})
		},
	}
}

func metricsCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old AI usage records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				affected, err := a.Metrics.Cleanup(ctx, days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "keep records for the last N days")
	return cmd
}

func printList(w io.Writer, list shopping.Grouped, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if list.Count() == 0 {
		_, err := fmt.Fprintln(w, "(empty shopping list)")
		return err
	}
	for _, grp := range list {
		fmt.Fprintf(w, "%s\n", grp.Category)
		for _, it := range grp.Items {
			box := "[ ]"
			if it.IsChecked {
				box = "[x]"
			}
			line := fmt.Sprintf("  %s %s", box, it.IngredientName)
			if it.Quantity != "" {
				line += "  " + it.Quantity
			}
			if it.Notes != "" {
				line += "  (" + it.Notes + ")"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(w, "%d items\n", list.Count())
	return nil
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Archive the recipe catalog as JSON files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.ExportRecipes(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d recipes to %s\n", n, args[0])
				return nil
			})
		},
	}
}

func importFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-files <dir>",
		Short: "Load a recipe archive written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.ImportRecipeFiles(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "read %d, created %d, updated %d, failed %d\n",
					report.Fetched, report.Created, report.Updated, report.Failed)
				return nil
			})
		},
	}
}
