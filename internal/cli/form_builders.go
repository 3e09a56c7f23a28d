package cli

import (
	"strings"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/charmbracelet/huh"
)

// dateInput returns a huh.Input for an optional date field with YYYY-MM-DD validation.
func dateInput(title, placeholder string, value *string) *huh.Input {
	if placeholder == "" {
		placeholder = "2025-06-30"
	}
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(value).
		Validate(validateOptionalDate)
}

// loginForm collects credentials; the password is masked.
func loginForm(in *domain.LoginInput) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&in.Username).
				Validate(domain.Check("username", "required,max=100")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&in.Password).
				Validate(domain.Check("password", "required,min=6,max=200")),
		),
	)
}

// taskDraft holds task form state as the form widgets see it.
type taskDraft struct {
	title, description, link, due string
	priority                      domain.Priority
	flow                          domain.FlowType
	project, requester, quote     int64
}

func newTaskDraft(in domain.TaskInput) *taskDraft {
	d := &taskDraft{
		title:       in.Title,
		description: in.Description,
		link:        in.Link,
		priority:    in.Priority,
		flow:        in.FlowType,
		project:     in.ProjectID,
		requester:   in.RequesterID,
	}
	if d.priority == "" {
		d.priority = domain.PriorityMedium
	}
	if d.flow == "" {
		d.flow = domain.FlowOperational
	}
	if in.QuoteID != nil {
		d.quote = *in.QuoteID
	}
	if in.DueDate != nil {
		d.due = in.DueDate.String()
	}
	return d
}

// input converts the draft and validates it.
func (d *taskDraft) input() (domain.TaskInput, error) {
	due, err := domain.ParseOptionalDate(strings.TrimSpace(d.due))
	if err != nil {
		return domain.TaskInput{}, err
	}
	in := domain.TaskInput{
		Title:       strings.TrimSpace(d.title),
		Description: strings.TrimSpace(d.description),
		Priority:    d.priority,
		FlowType:    d.flow,
		ProjectID:   d.project,
		RequesterID: d.requester,
		Link:        strings.TrimSpace(d.link),
		DueDate:     due,
	}
	if d.quote > 0 {
		q := d.quote
		in.QuoteID = &q
	}
	return in, domain.Validate(in)
}

// taskOptions are the reference lists a task form chooses from.
type taskOptions struct {
	projects, requesters, quotes []huh.Option[int64]
}

// taskForm edits every task field. The flow type is fixed once a task exists.
func taskForm(d *taskDraft, opts taskOptions, editing bool) *huh.Form {
	flow := huh.NewSelect[domain.FlowType]().
		Title("Flow").
		Options(
			huh.NewOption("Operational", domain.FlowOperational),
			huh.NewOption("Development", domain.FlowDevelopment),
		).
		Value(&d.flow)

	details := []huh.Field{
		huh.NewInput().
			Title("Title").
			Value(&d.title).
			Validate(domain.Check("title", "required,min=3,max=200")),
		huh.NewText().
			Title("Description").
			Value(&d.description).
			Validate(domain.Check("description", "max=4000")),
		huh.NewSelect[domain.Priority]().
			Title("Priority").
			Options(statusOptions(domain.Priorities, func(p domain.Priority) string { return string(p) })...).
			Value(&d.priority),
	}
	if !editing {
		details = append(details, flow)
	}

	return newForm(
		huh.NewGroup(details...),
		huh.NewGroup(
			huh.NewSelect[int64]().Title("Project").Options(opts.projects...).Value(&d.project),
			huh.NewSelect[int64]().Title("Requester").Options(opts.requesters...).Value(&d.requester),
			huh.NewSelect[int64]().Title("Quote").Options(opts.quotes...).Value(&d.quote),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Link").
				Placeholder("https://").
				Value(&d.link).
				Validate(domain.Check("link", "omitempty,url,max=500")),
			dateInput("Due Date (YYYY-MM-DD, blank for none)", "", &d.due),
		),
	)
}

// itemDraft collects one delivery item across the wizard steps.
type itemDraft struct {
	title, notes        string
	kind                domain.FlowType
	procedure, env      string
	repo, branch, prURL string
	version             string
}

func (d *itemDraft) input() domain.DeliveryItemInput {
	in := domain.DeliveryItemInput{Title: strings.TrimSpace(d.title), Notes: strings.TrimSpace(d.notes)}
	switch d.kind {
	case domain.FlowDevelopment:
		in.Detail = domain.DevelopmentItem{
			Repository:     strings.TrimSpace(d.repo),
			Branch:         strings.TrimSpace(d.branch),
			PullRequestURL: strings.TrimSpace(d.prURL),
			Version:        strings.TrimSpace(d.version),
		}
	default:
		in.Detail = domain.OperationalItem{
			Procedure:   strings.TrimSpace(d.procedure),
			Environment: strings.TrimSpace(d.env),
		}
	}
	return in
}

func itemInfoForm(d *itemDraft) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Item title").
				Value(&d.title).
				Validate(domain.Check("title", "required,max=200")),
			huh.NewInput().
				Title("Notes").
				Value(&d.notes).
				Validate(domain.Check("notes", "max=2000")),
			huh.NewSelect[domain.FlowType]().
				Title("Kind").
				Options(
					huh.NewOption("Operational", domain.FlowOperational),
					huh.NewOption("Development", domain.FlowDevelopment),
				).
				Value(&d.kind),
		),
	)
}

// itemDetailForm asks for the fields of the chosen kind only.
func itemDetailForm(d *itemDraft) *huh.Form {
	if d.kind == domain.FlowDevelopment {
		return newForm(
			huh.NewGroup(
				huh.NewInput().Title("Repository").Value(&d.repo).
					Validate(domain.Check("repository", "required,max=200")),
				huh.NewInput().Title("Branch").Value(&d.branch).
					Validate(domain.Check("branch", "omitempty,max=255,excludesall= ~^:?*[\\")),
				huh.NewInput().Title("Pull request URL").Placeholder("https://").Value(&d.prURL).
					Validate(domain.Check("pull request", "omitempty,url")),
				huh.NewInput().Title("Version").Value(&d.version).
					Validate(domain.Check("version", "max=50")),
			),
		)
	}
	return newForm(
		huh.NewGroup(
			huh.NewText().Title("Procedure").Value(&d.procedure).
				Validate(domain.Check("procedure", "required,max=500")),
			huh.NewInput().Title("Environment").Placeholder("production").Value(&d.env).
				Validate(domain.Check("environment", "max=100")),
		),
	)
}
