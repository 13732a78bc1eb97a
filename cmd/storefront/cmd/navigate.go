package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/router"
)

func newNavigateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <path>",
		Short: "Run the navigation guard for a page",
		Long: `Resolve a storefront page, apply the navigation guard for the stored
session and print where navigation ends up.

Example:
  storefront navigate /cart
  # guests are sent to /login?redirect=%2Fcart`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nav, err := e.app.Navigator.Push(args[0])
			if err != nil {
				return err
			}
			return e.print(nav, func(w io.Writer) {
				fmt.Fprintf(w, "%s -> %s (%s)\n", nav.Requested, nav.Location.FullPath, nav.Guard.Action)
				fmt.Fprintln(w, nav.Location.Title)
			})
		},
	}
}

func newRoutesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			routes := e.app.Navigator.Router().Routes()
			return e.print(routes, func(w io.Writer) {
				table(w, "PATH\tNAME\tVIEW\tACCESS\tTITLE", func(tw *tabwriter.Writer) {
					printRoutes(tw, "", routes)
				})
			})
		},
	}
}

func printRoutes(tw *tabwriter.Writer, indent string, routes []router.Route) {
	for _, r := range routes {
		access := "public"
		switch {
		case r.Meta.RequiresAuth:
			access = "auth"
		case r.Meta.RequiresGuest:
			access = "guest"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\n", indent, r.Path, r.Name, r.View, access, r.Meta.Title)
		printRoutes(tw, indent+"  ", r.Children)
	}
}
