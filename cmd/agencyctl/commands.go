package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zatekoja/agencysite/backend/internal/adapters/database"
	"github.com/zatekoja/agencysite/backend/internal/catalog"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

// dbOpener connects to the database on demand so commands that do not need
// it, like catalog lookup, run without one
type dbOpener func(ctx context.Context) (*postgres.Client, error)

func postgresOpener(cfg *config.Config) dbOpener {
	return func(context.Context) (*postgres.Client, error) {
		return postgres.NewClient(&cfg.Database)
	}
}

func newRootCmd(open dbOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "agencyctl",
		Short:         "Maintenance tasks for the agency backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(open), newQuotesCmd(open), newCatalogCmd())
	return root
}

// --- migrate ---

func newMigrateCmd(open dbOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(fn func(context.Context, *postgres.Client) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			client, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()
			return fn(cmd.Context(), client)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *postgres.Client) error {
				return postgres.MigrateUp(ctx, c.DB())
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *postgres.Client) error {
				return postgres.MigrateDown(ctx, c.DB())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations are applied",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *postgres.Client) error {
				return postgres.MigrationStatus(ctx, c.DB())
			}),
		},
	)
	return cmd
}

// --- quotes ---

func newQuotesCmd(open dbOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Inspect quote requests",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List quote requests, newest first",
		Long: `List quote requests, newest first.

Examples:
  agencyctl quotes list
  agencyctl quotes list --status pending --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")

			filter := repositories.QuoteFilter{Status: entities.QuoteStatus(strings.ToLower(status)), Limit: limit}
			if filter.Status != "" && !filter.Status.Valid() {
				return fmt.Errorf("unknown quote status %q", status)
			}

			client, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			quotes, err := database.NewQuoteAdapter(client).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printQuotes(cmd.OutOrStdout(), quotes)
		},
	}
	list.Flags().String("status", "", "only quotes with this status")
	list.Flags().Int("limit", 50, "maximum number of quotes to list")

	cmd.AddCommand(list)
	return cmd
}

func printQuotes(out io.Writer, quotes []*entities.QuoteRequest) error {
	if len(quotes) == 0 {
		_, err := fmt.Fprintln(out, "no quotes found")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REFERENCE\tSTATUS\tCATEGORY\tBUDGET\tEMAIL\tCREATED")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Reference, q.Status, q.ServiceCategory, q.Budget, q.Email, q.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// --- catalog ---

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query the service catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <identifier>",
		Short: "Resolve an id, path or keyword to a service",
		Long: `Resolve an id, path or keyword to a service.

Examples:
  agencyctl catalog lookup web-development
  agencyctl catalog lookup /services/branding
  agencyctl catalog lookup logo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			svc, tier, ok := catalog.Lookup(args[0])
			if !ok {
				fmt.Fprintf(out, "no service matches %q\n", args[0])
				if suggestions := catalog.Suggest(args[0], 3); len(suggestions) > 0 {
					fmt.Fprintln(out, "did you mean:")
					for _, s := range suggestions {
						fmt.Fprintf(out, "  %s (%s)\n", s.ID, s.Title)
					}
				}
				return fmt.Errorf("service not found")
			}

			fmt.Fprintf(out, "%s\t%s\n", svc.ID, svc.Title)
			fmt.Fprintf(out, "category:\t%s\n", svc.Category)
			fmt.Fprintf(out, "match:\t%s\n", tier)
			fmt.Fprintf(out, "from:\t$%d, about %d weeks\n", svc.StartingPrice, svc.DeliveryWeeks)
			return nil
		},
	})
	return cmd
}
