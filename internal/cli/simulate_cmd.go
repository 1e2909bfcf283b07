package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/mirrorer/internal/cli/formatter"
	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/prompt"
	"github.com/alexanderramin/mirrorer/internal/service"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

type simulateOptions struct {
	promptFile string
	edit       bool
	backends   []string
	asJSON     bool
}

type simulateOutput struct {
	UserID  string                  `json:"user_id"`
	Prompt  string                  `json:"prompt"`
	Slots   []simulation.SlotUpdate `json:"slots"`
	Summary simulation.RunSummary   `json:"summary"`
}

func newSimulateCmd(app *App) *cobra.Command {
	var opts simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate [user-id]",
		Short: "Run a user's prompt against every backend",
		Long: `Simulate sends the user's prompt to every configured backend at once and
shows each interpreted choice as it arrives. In a terminal the run view
lets you move between users (n/p), re-run (r) and quit (q); otherwise one
line is printed per backend as it settles.

Without a user id, a terminal session asks for one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, app, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.promptFile, "prompt-file", "", "send this file (or - for stdin) instead of the built prompt")
	cmd.Flags().BoolVar(&opts.edit, "edit", false, "edit the prompt before running (terminal only)")
	addBackendsFlag(cmd.Flags(), &opts.backends)
	addJSONFlag(cmd.Flags(), &opts.asJSON)
	return cmd
}

func runSimulate(cmd *cobra.Command, app *App, args []string, opts simulateOptions) error {
	ctx := cmd.Context()
	interactive := app.interactive() && !opts.asJSON

	orch, err := app.Orchestrator.Select(opts.backends)
	if err != nil {
		return err
	}
	if opts.edit && !interactive {
		return errors.New("--edit needs an interactive terminal")
	}

	var u *domain.User
	switch {
	case len(args) == 1:
		u, err = app.Users.GetUser(ctx, args[0])
	case interactive:
		u, err = pickFromCatalog(cmd, app)
	default:
		return errors.New("a user id is required when not running in a terminal")
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	promptText := ""
	if opts.promptFile != "" {
		if promptText, err = readInput(cmd.InOrStdin(), opts.promptFile); err != nil {
			return err
		}
	}
	if opts.edit {
		if promptText == "" {
			promptText = prompt.Build(u)
		}
		if promptText, err = editPrompt(promptText); err != nil {
			return err
		}
	}

	if interactive {
		return runInteractive(cmd, app, orch, u, promptText)
	}
	return runStreaming(cmd, app, u, promptText, opts)
}

// runStreaming prints each slot as it settles, or one JSON document at the end.
func runStreaming(cmd *cobra.Command, app *App, u *domain.User, promptText string, opts simulateOptions) error {
	w := cmd.OutOrStdout()
	var slots []simulation.SlotUpdate

	res, err := app.Simulations.Simulate(cmd.Context(), service.SimulateRequest{
		UserID:   u.ID(),
		Prompt:   promptText,
		Backends: opts.backends,
	}, func(su simulation.SlotUpdate) {
		if opts.asJSON {
			slots = append(slots, su)
			return
		}
		fmt.Fprintln(w, formatter.FormatSlotLine(su, u))
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		return writeJSON(w, simulateOutput{
			UserID:  u.ID(),
			Prompt:  res.Prompt,
			Slots:   slots,
			Summary: res.Summary,
		})
	}
	fmt.Fprintln(w, formatter.FormatRunSummary(res.Summary))
	return nil
}

// runInteractive opens the run view over the users of u's domain.
func runInteractive(cmd *cobra.Command, app *App, orch *simulation.Orchestrator, u *domain.User, promptText string) error {
	ctx := cmd.Context()
	users, err := app.Users.ListUsers(ctx, string(u.Profile.Domain))
	if err != nil {
		return err
	}
	current := indexOfUser(users, u.ID())
	if len(users) == 0 || users[current].ID() != u.ID() {
		users = append([]*domain.User{u}, users...)
		current = 0
	}

	session := simulation.NewSession(orch, app.logger())
	view := newRunView(ctx, session, users, current, promptText)
	_, err = tea.NewProgram(view, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout())).Run()
	session.Invalidate()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// pickFromCatalog walks the domain and user pickers.
func pickFromCatalog(cmd *cobra.Command, app *App) (*domain.User, error) {
	ctx := cmd.Context()
	dom, err := pickDomain(ctx, app.Users)
	if err != nil {
		return nil, err
	}
	users, err := app.Users.ListUsers(ctx, dom)
	if err != nil {
		return nil, err
	}
	i, err := pickUser(users)
	if err != nil {
		return nil, err
	}
	return users[i], nil
}

// runPickAndSimulate is the bare "mirrorer" flow in a terminal: pick a
// user, optionally edit the prompt, then open the run view.
func runPickAndSimulate(cmd *cobra.Command, app *App) error {
	u, err := pickFromCatalog(cmd, app)
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	promptText := ""
	edit, err := confirmEdit()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}
	if edit {
		promptText, err = editPrompt(prompt.Build(u))
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(promptText) == "" {
			promptText = ""
		}
	}
	return runInteractive(cmd, app, app.Orchestrator, u, promptText)
}
