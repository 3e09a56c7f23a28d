package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// taskdeskHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func taskdeskHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.MultiSelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorGreen).SetString("[x] ")
	t.Focused.UnselectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorDim).SetString("[ ] ")
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(formatter.ColorRed).SetString(" *")

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// newForm applies the shared theme to a form.
func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(taskdeskHuhTheme()).WithShowHelp(false)
}

// wizardSelect creates a single-select form.
func wizardSelect[V comparable](title string, options []huh.Option[V], result *V) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewSelect[V]().
				Title(title).
				Options(options...).
				Value(result),
		),
	)
}

// wizardInputText creates a huh form for a single text input. check may be nil.
func wizardInputText(title, placeholder string, check func(string) error, result *string) *huh.Form {
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(result)
	if check != nil {
		input = input.Validate(check)
	}
	return newForm(huh.NewGroup(input))
}

// wizardConfirm creates a huh form for a yes/no confirmation.
func wizardConfirm(title, description string, result *bool) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	)
}

// statusOptions lists an enum's values as select options.
func statusOptions[S ~string](values []S, label func(S) string) []huh.Option[S] {
	opts := make([]huh.Option[S], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(label(v), v)
	}
	return opts
}

// ── pickers ──────────────────────────────────────────────────────────────────

// pickerCmd loads options in the background, then pushes a select wizard.
// An empty option list shows emptyMsg instead.
func pickerCmd[V comparable](state *SharedState, title, emptyMsg string,
	load func(context.Context) ([]huh.Option[V], error), result *V, done func() tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := state.RequestContext()
		defer cancel()
		opts, err := load(ctx)
		if err != nil {
			return cmdOutputMsg{output: formatter.Error(err)}
		}
		if len(opts) == 0 {
			return cmdOutputMsg{output: formatter.StyleYellow.Render(emptyMsg)}
		}
		return pushViewMsg{view: newWizardView(state, title, wizardSelect(title, opts, result), done)}
	}
}

func projectOptions(app *App) func(context.Context) ([]huh.Option[int64], error) {
	return func(ctx context.Context) ([]huh.Option[int64], error) {
		projects, err := app.API.Projects.All(ctx, table.Filters{"active": "true"})
		if err != nil {
			return nil, err
		}
		opts := make([]huh.Option[int64], len(projects))
		for i := range projects {
			opts[i] = huh.NewOption(projects[i].Label(), projects[i].ID)
		}
		return opts, nil
	}
}

func requesterOptions(app *App) func(context.Context) ([]huh.Option[int64], error) {
	return func(ctx context.Context) ([]huh.Option[int64], error) {
		requesters, err := app.API.Requesters.All(ctx, table.Filters{"active": "true"})
		if err != nil {
			return nil, err
		}
		opts := make([]huh.Option[int64], len(requesters))
		for i, r := range requesters {
			label := r.Name
			if r.Department != "" {
				label += " (" + r.Department + ")"
			}
			opts[i] = huh.NewOption(label, r.ID)
		}
		return opts, nil
	}
}

// quoteOptions offers "None" first; its value is zero.
func quoteOptions(app *App) func(context.Context) ([]huh.Option[int64], error) {
	return func(ctx context.Context) ([]huh.Option[int64], error) {
		quotes, err := app.API.Quotes.All(ctx, nil)
		if err != nil {
			return nil, err
		}
		opts := []huh.Option[int64]{huh.NewOption("None", int64(0))}
		for _, q := range quotes {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s · %s", q.Number, formatter.Truncate(q.Description, 40)), q.ID))
		}
		return opts, nil
	}
}

// openTaskOptions lists tasks that can still receive deliveries.
func openTaskOptions(app *App) func(context.Context) ([]huh.Option[int64], error) {
	return func(ctx context.Context) ([]huh.Option[int64], error) {
		q := table.NewQuery(100)
		q.Sort = table.Sort{{Field: "code", Direction: table.Asc}}
		page, err := app.API.Tasks.List(ctx, q)
		if err != nil {
			return nil, err
		}
		var opts []huh.Option[int64]
		for i := range page.Content {
			t := &page.Content[i]
			if t.Status == domain.TaskDone || t.Status == domain.TaskCancelled {
				continue
			}
			opts = append(opts, huh.NewOption(t.DisplayID()+"  "+formatter.Truncate(t.Title, 50), t.ID))
		}
		return opts, nil
	}
}

// ── validators ───────────────────────────────────────────────────────────────

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	_, err := domain.ParseOptionalDate(strings.TrimSpace(s))
	return err
}

func validatePeriod(s string) error {
	y, m, err := parsePeriod(s)
	if err != nil {
		return err
	}
	return domain.Validate(domain.BillingPeriodInput{ProjectID: 1, Year: y, Month: m})
}

// ── shared flows ─────────────────────────────────────────────────────────────

// confirmCmd asks question, then runs fn as a background action.
func confirmCmd(state *SharedState, title, question string, fn func(context.Context) (string, error)) tea.Cmd {
	var ok bool
	return startWizardCmd(state, title, wizardConfirm(question, "", &ok), func() tea.Cmd {
		if !ok {
			return outputCmd(formatter.Dim("Cancelled."))
		}
		return actionCmd(state, fn)
	})
}

// doneMark prefixes a success message.
func doneMark(msg string) string {
	return formatter.StyleGreen.Render("✔") + " " + msg
}
