package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/cli/formatter"
	"github.com/alexanderramin/mirrorer/internal/domain"
)

// errCatalogEmpty is returned by the pickers when there is nothing to pick.
var errCatalogEmpty = errors.New("the catalog has no users; run 'mirrorer catalog import <file>' first")

// mirrorerHuhTheme returns a huh theme using the formatter palette.
func mirrorerHuhTheme() *huh.Theme {
	t := huh.ThemeBase()
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	t.Focused.Title = fg(formatter.ColorTitle).Bold(true)
	t.Focused.Description = fg(formatter.ColorMuted)
	t.Focused.SelectSelector = fg(formatter.ColorTitle)
	t.Focused.SelectedOption = fg(formatter.ColorOk)
	t.Focused.UnselectedOption = fg(formatter.ColorText)
	t.Focused.FocusedButton = fg(formatter.ColorText).Background(formatter.ColorTitle).Padding(0, 1)
	t.Focused.BlurredButton = fg(formatter.ColorMuted).Padding(0, 1)
	t.Focused.TextInput.Cursor = fg(formatter.ColorTitle)
	t.Focused.TextInput.Text = fg(formatter.ColorText)
	t.Focused.TextInput.Placeholder = fg(formatter.ColorMuted)

	t.Blurred.Title = fg(formatter.ColorMuted)
	t.Blurred.SelectSelector = fg(formatter.ColorMuted)
	t.Blurred.SelectedOption = fg(formatter.ColorMuted)
	t.Blurred.UnselectedOption = fg(formatter.ColorMuted)
	t.Blurred.TextInput.Text = fg(formatter.ColorMuted)

	return t
}

func runForm(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(mirrorerHuhTheme()).
		WithShowHelp(false).
		Run()
}

// userOptions labels each user with its name and exposure size.
func userOptions(users []*domain.User) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(users))
	for _, u := range users {
		label := fmt.Sprintf("%s (%s) · %d candidates", domain.OrPlaceholder(u.Profile.Name), u.ID(), len(u.Exposure))
		options = append(options, huh.NewOption(label, u.ID()))
	}
	return options
}

// pickDomain asks for a domain, skipping the question when there is only one.
func pickDomain(ctx context.Context, users catalog.Provider) (string, error) {
	domains, err := users.Domains(ctx)
	if err != nil {
		return "", err
	}
	switch len(domains) {
	case 0:
		return "", errCatalogEmpty
	case 1:
		return domains[0], nil
	}

	picked := domains[0]
	options := make([]huh.Option[string], 0, len(domains))
	for _, d := range domains {
		options = append(options, huh.NewOption(d, d))
	}
	err = runForm(huh.NewSelect[string]().
		Title("Which domain?").
		Options(options...).
		Value(&picked))
	return picked, err
}

// pickUser asks for a user among users and returns its index.
func pickUser(users []*domain.User) (int, error) {
	if len(users) == 0 {
		return 0, errCatalogEmpty
	}
	id := users[0].ID()
	err := runForm(huh.NewSelect[string]().
		Title("Which user?").
		Options(userOptions(users)...).
		Height(12).
		Value(&id))
	if err != nil {
		return 0, err
	}
	return indexOfUser(users, id), nil
}

// confirmEdit asks whether the prompt should be edited before running.
func confirmEdit() (bool, error) {
	edit := false
	err := runForm(huh.NewConfirm().
		Title("Edit the prompt before running?").
		Affirmative("Edit").
		Negative("Run as built").
		Value(&edit))
	return edit, err
}

// editPrompt opens text in a multi-line editor and returns the result.
func editPrompt(text string) (string, error) {
	err := runForm(huh.NewText().
		Title("Prompt").
		Description("Changes apply to this run only.").
		Lines(20).
		CharLimit(0).
		Value(&text))
	return text, err
}

func indexOfUser(users []*domain.User, id string) int {
	for i, u := range users {
		if u.ID() == id {
			return i
		}
	}
	return 0
}
