package cli

import (
	"fmt"

	"github.com/alexanderramin/mediantree/internal/cli/formatter"
	"github.com/alexanderramin/mediantree/internal/service"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var opts service.ImportOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project from a Jira CSV export or a JSON/YAML task list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d task(s) into %s\n", res.TaskCount, formatter.Bold(res.Snapshot.Name))
			if len(res.Reattached) > 0 {
				fmt.Fprintln(out, formatter.StyleYellow.Render(fmt.Sprintf(
					"%d task(s) referenced a missing parent and were attached to the project root.", len(res.Reattached))))
			}
			fmt.Fprintln(out, formatter.FormatProjectTree(res.Snapshot))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Project name (default: from the file)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "csv, json, or yaml (default: from the extension)")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "Overwrite an existing project of the same name")

	return cmd
}
