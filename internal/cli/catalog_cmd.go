package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/cli/formatter"
)

// errNoStore is returned by catalog import when the catalog is file-backed.
var errNoStore = errors.New("catalog import needs the SQLite store; unset MIRRORER_CATALOG")

func newCatalogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Import, validate and describe catalog files",
	}
	cmd.AddCommand(
		newCatalogImportCmd(app),
		newCatalogValidateCmd(),
		newCatalogSchemaCmd(),
	)
	return cmd
}

func newCatalogImportCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON catalog file into the local store",
		Long: `Import validates a catalog file and writes every user into the SQLite
store in one transaction. Users whose id already exists are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Import == nil {
				return errNoStore
			}
			res, err := app.Import.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s Imported %d user(s) from %s\n", formatter.StyleOk.Render("✔"), res.Users, args[0])
			fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("  %d replaced, %d history item(s), %d exposure item(s), %d cached output(s)",
				res.Replaced, res.HistoryItems, res.ExposureItems, res.ModelOutputs)))
			return nil
		},
	}
	addJSONFlag(cmd.Flags(), &asJSON)
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if errs := catalog.Validate(f); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(w, "%s %v\n", formatter.StyleErr.Render("✖"), e)
				}
				return fmt.Errorf("%s: %d validation error(s)", args[0], len(errs))
			}
			users := 0
			for _, d := range f.Domains {
				users += len(d.Users)
			}
			fmt.Fprintf(w, "%s %s is valid (%d domain(s), %d user(s))\n",
				formatter.StyleOk.Render("✔"), args[0], len(f.Domains), users)
			return nil
		},
	}
}

func newCatalogSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of catalog files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := catalog.Schema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
