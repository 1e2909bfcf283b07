package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/mirrorer/internal/cli/formatter"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

type backendStatus struct {
	Name             string `json:"name"`
	Role             string `json:"role"`
	Engine           string `json:"engine"`
	Model            string `json:"model"`
	CacheKey         string `json:"cache_key"`
	FallbackEligible bool   `json:"fallback_eligible"`
	Available        bool   `json:"available"`
}

func newBackendsCmd(app *App) *cobra.Command {
	var (
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List configured backends and check that they are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backends := app.Orchestrator.Backends()
			available := probeBackends(cmd.Context(), backends, timeout)

			if asJSON {
				out := make([]backendStatus, len(backends))
				for i, b := range backends {
					out[i] = backendStatus{
						Name:             b.Name,
						Role:             string(b.Role),
						Engine:           string(b.Engine),
						Model:            b.Model,
						CacheKey:         b.CacheKey,
						FallbackEligible: b.FallbackEligible,
						Available:        available[i],
					}
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBackends(backends, available))
			return nil
		},
	}
	addJSONFlag(cmd.Flags(), &asJSON)
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "how long each availability probe may take")
	return cmd
}

// probeBackends checks every backend concurrently.
func probeBackends(ctx context.Context, backends []simulation.Backend, timeout time.Duration) []bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	available := make([]bool, len(backends))
	var g errgroup.Group
	for i, b := range backends {
		g.Go(func() error {
			available[i] = b.Client.Available(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return available
}
