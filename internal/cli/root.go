// Package cli implements the mirrorer command tree: catalog browsing,
// prompt inspection, simulation runs and the HTTP server entry point.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/service"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

// App holds the collaborators used by CLI commands.
type App struct {
	Users        catalog.Provider
	Simulations  service.SimulationService
	Orchestrator *simulation.Orchestrator
	Logger       *slog.Logger

	// Import is nil when the catalog is read straight from a JSON file.
	Import service.ImportService

	// HTTPAddr is the default listen address for serve.
	HTTPAddr string

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// NewRootCmd creates the top-level "mirrorer" command and registers all
// subcommands against the provided App. In a terminal the bare command
// picks a user and opens the run view.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "mirrorer",
		Short: "Simulate catalog users' choices across several language models",
		Long: `mirrorer builds a decision prompt from a catalog user's profile, history and
exposure list, sends it to every configured backend and compares the
interpreted choices side by side.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return cmd.Help()
			}
			return runPickAndSimulate(cmd, app)
		},
	}

	root.AddCommand(
		newUsersCmd(app),
		newShowCmd(app),
		newPromptCmd(app),
		newInterpretCmd(app),
		newSimulateCmd(app),
		newBackendsCmd(app),
		newCatalogCmd(app),
		newServeCmd(app),
	)

	return root
}
