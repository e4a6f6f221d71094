package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/sheet"
	"github.com/yanizio/venuedesk/internal/venue"
)

func newVenueCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venue",
		Short: "Manage venues",
		Long: `Manage venues and their private submission links.

Available subcommands:
  create - Add a venue
  list   - List venues with their links
  link   - Print one venue's link
  delete - Remove a venue and everything submitted for it
  import - Create venues from an XLSX roster`,
	}
	cmd.AddCommand(
		newVenueCreateCmd(open),
		newVenueListCmd(open),
		newVenueLinkCmd(open),
		newVenueDeleteCmd(open),
		newVenueImportCmd(open),
	)
	return cmd
}

func newVenueCreateCmd(open opener) *cobra.Command {
	var in venue.CreateInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a venue and print its submission link",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, _ []string, e *env) error {
			v, err := e.venues.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.Link(e.baseURL))
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "venue name (required)")
	cmd.Flags().StringVar(&in.Slug, "slug", "", "URL slug (derived from the name when empty)")
	cmd.Flags().StringVar(&in.PIN, "pin", "", "optional 4-digit PIN")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newVenueListCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List venues with their links",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, _ []string, e *env) error {
			rows, err := e.venues.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSLUG\tPIN\tCREATED\tLINK")
			for i := range rows {
				v := &rows[i]
				pin := "-"
				if v.HasPIN() {
					pin = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					v.Name, v.Slug, pin, v.CreatedAt.Format(time.DateOnly), v.Link(e.baseURL))
			}
			return tw.Flush()
		}),
	}
}

func newVenueLinkCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "link <slug>",
		Short: "Print a venue's submission link",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, e *env) error {
			v, err := e.venues.BySlug(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.Link(e.baseURL))
			return nil
		}),
	}
}

func newVenueDeleteCmd(open opener) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Remove a venue and all of its submissions",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, e *env) error {
			if !yes {
				return errors.New("deleting a venue also deletes its submissions; pass --yes to confirm")
			}
			v, err := e.venues.BySlug(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := e.venues.Delete(cmd.Context(), v.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", v.Name, v.Slug)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func newVenueImportCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster.xlsx>",
		Short: "Create venues from an XLSX roster",
		Long: `Create one venue per row of the first sheet.

The header row names the columns: name (required), slug, and pin.  Rows
that fail (bad PIN, taken slug) are reported and skipped; the rest are
created.  One "name<TAB>link" line is printed per created venue.`,
		Args: cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, e *env) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := sheet.ReadVenues(f)
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			var failed int
			for i, in := range rows {
				v, err := e.venues.Create(cmd.Context(), in)
				if err != nil {
					failed++
					fmt.Fprintf(errOut, "row %d (%s): %v\n", i+2, in.Name, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", v.Name, v.Link(e.baseURL))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d venue(s) not imported", failed, len(rows))
			}
			return nil
		}),
	}
}

/*──────────────────────────── token ───────────────────────────────────────*/

func newTokenCmd(open opener) *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an admin session token for local development",
		Long: `Sign a session token with auth.jwt_secret.

Set the printed value as the venuedesk_session cookie to reach /admin
without the hosted auth provider.  The address must still pass
auth.admin_emails when that list is set.`,
		Args: cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, _ []string, e *env) error {
			tok, err := e.signer.Sign(auth.User{ID: "intakectl:" + email, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "staff e-mail address (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
