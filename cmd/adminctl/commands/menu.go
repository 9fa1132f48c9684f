package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/navigation"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMenuCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List the platform modules the signed-in user may open",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			u, err := s.client.CurrentUser()
			if errors.Is(err, errors.ErrNotFound) {
				return pkgerrors.New("not logged in, run adminctl login")
			}
			if err != nil {
				return err
			}

			visible := navigation.Filter(navigation.DefaultMenu(), u)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), visible)
			}
			printMenu(cmd.OutOrStdout(), visible, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the menu as JSON")
	return cmd
}

func printMenu(w io.Writer, items []navigation.Item, depth int) {
	for _, item := range items {
		indent := strings.Repeat("  ", depth)
		if item.Path != "" {
			fmt.Fprintf(w, "%s%-24s %s\n", indent, item.Title, item.Path)
		} else {
			fmt.Fprintf(w, "%s%s\n", indent, item.Title)
		}
		printMenu(w, item.Children, depth+1)
	}
}
