package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type taskSection int

const (
	sectionAttachments taskSection = iota
	sectionDeliveries
)

type taskDetailLoadedMsg struct {
	view        *taskDetailView
	task        *domain.Task
	attachments []domain.Attachment
	deliveries  []domain.Delivery
	err         error
}

func (taskDetailLoadedMsg) broadcast() {}

// taskDetailView shows one task with its attachments and deliveries.
type taskDetailView struct {
	state   *SharedState
	taskID  int64
	task    *domain.Task
	atts    []domain.Attachment
	dels    []domain.Delivery
	section taskSection
	cursor  [2]int
	loading bool
	err     error
}

func newTaskDetailView(state *SharedState, taskID int64) *taskDetailView {
	return &taskDetailView{state: state, taskID: taskID, loading: true}
}

func (v *taskDetailView) ID() ViewID { return ViewTaskDetail }

func (v *taskDetailView) Title() string {
	if v.task != nil {
		return v.task.DisplayID()
	}
	return fmt.Sprintf("#%d", v.taskID)
}

func (v *taskDetailView) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "section")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "status")),
	}
	if v.section == sectionAttachments {
		return append(hints,
			key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
			key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "download")),
			key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete file")),
		)
	}
	return append(hints,
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new delivery")),
	)
}

func (v *taskDetailView) Init() tea.Cmd {
	return v.load()
}

func (v *taskDetailView) load() tea.Cmd {
	app := v.state.App
	id := v.taskID
	return func() tea.Msg {
		ctx, cancel := v.state.RequestContext()
		defer cancel()

		t, err := app.API.Tasks.Get(ctx, id)
		if err != nil {
			return taskDetailLoadedMsg{view: v, err: err}
		}
		atts, err := app.API.Attachments.List(ctx, id)
		if err != nil {
			return taskDetailLoadedMsg{view: v, err: err}
		}
		dels, err := taskDeliveries(ctx, app, t)
		if err != nil {
			return taskDetailLoadedMsg{view: v, err: err}
		}
		return taskDetailLoadedMsg{view: v, task: t, attachments: atts, deliveries: dels}
	}
}

// taskDeliveries finds the task's group in the grouped listing.
func taskDeliveries(ctx context.Context, app *App, t *domain.Task) ([]domain.Delivery, error) {
	q := table.NewQuery(50)
	q.Filters = table.Filters{"task.code": t.Code}
	page, err := app.API.Deliveries.ListGrouped(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, g := range page.Content {
		if g.Task.ID == t.ID {
			return g.Deliveries, nil
		}
	}
	return nil, nil
}

func (v *taskDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDetailLoadedMsg:
		if msg.view != v {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.task, v.atts, v.dels = msg.task, msg.attachments, msg.deliveries
			v.cursor[sectionAttachments] = min(v.cursor[sectionAttachments], max(len(v.atts)-1, 0))
			v.cursor[sectionDeliveries] = min(v.cursor[sectionDeliveries], max(len(v.dels)-1, 0))
		}
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *taskDetailView) handleKey(msg tea.KeyMsg) tea.Cmd {
	n := len(v.atts)
	if v.section == sectionDeliveries {
		n = len(v.dels)
	}
	switch msg.String() {
	case "tab":
		v.section = 1 - v.section
	case "up", "k":
		if v.cursor[v.section] > 0 {
			v.cursor[v.section]--
		}
	case "down", "j":
		if v.cursor[v.section] < n-1 {
			v.cursor[v.section]++
		}
	case "r":
		return v.load()
	}
	if v.task == nil {
		return nil
	}

	switch msg.String() {
	case "e":
		return taskFormCmd(v.state, v.task)
	case "t":
		return taskStatusCmd(v.state, *v.task)
	}

	if v.section == sectionAttachments {
		switch msg.String() {
		case "u":
			return uploadCmd(v.state, v.task)
		case "g":
			if a, ok := v.selectedAttachment(); ok {
				return downloadCmd(v.state, a)
			}
		case "D":
			if a, ok := v.selectedAttachment(); ok {
				return deleteAttachmentCmd(v.state, a)
			}
		}
		return nil
	}

	switch msg.String() {
	case "enter":
		if i := v.cursor[sectionDeliveries]; i < len(v.dels) {
			return pushView(newDeliveryDetailView(v.state, v.dels[i].ID))
		}
	case "n":
		return newDeliveryWizard(v.state, v.task.ID)
	}
	return nil
}

func (v *taskDetailView) selectedAttachment() (domain.Attachment, bool) {
	i := v.cursor[sectionAttachments]
	if i >= len(v.atts) {
		return domain.Attachment{}, false
	}
	return v.atts[i], true
}

func (v *taskDetailView) View() string {
	if v.loading && v.task == nil {
		return "\n  " + formatter.Dim("Loading task...")
	}
	if v.err != nil {
		return "\n" + indent(errorOutput(v.err), "  ")
	}

	var b strings.Builder
	b.WriteString("\n" + indent(formatTask(v.task), "  ") + "\n")

	b.WriteString(v.sectionHeader("Attachments", sectionAttachments, len(v.atts)))
	if len(v.atts) == 0 {
		b.WriteString("  " + formatter.Dim("No attachments.") + "\n")
	}
	for i, a := range v.atts {
		line := fmt.Sprintf("%s  %s  %s", a.FileName, formatter.Dim(formatter.FormatBytes(a.Size)),
			formatter.Dim(a.UploadedBy+" · "+formatter.HumanTimestamp(a.UploadedAt)))
		b.WriteString(v.row(sectionAttachments, i, line))
	}

	b.WriteString("\n" + v.sectionHeader("Deliveries", sectionDeliveries, len(v.dels)))
	if len(v.dels) == 0 {
		b.WriteString("  " + formatter.Dim("No deliveries.") + "\n")
	}
	for i, d := range v.dels {
		line := fmt.Sprintf("#%d %s  %s  %s", d.ID, d.Title, formatter.DeliveryStatusPill(d.Status),
			formatter.Dim(itemCountLabel(d.ItemCount)))
		b.WriteString(v.row(sectionDeliveries, i, line))
	}
	return b.String()
}

func (v *taskDetailView) sectionHeader(title string, s taskSection, n int) string {
	label := fmt.Sprintf("%s (%d)", title, n)
	if v.section == s {
		return "  " + formatter.StyleHeader.Render(label) + "\n"
	}
	return "  " + formatter.Dim(label) + "\n"
}

func (v *taskDetailView) row(s taskSection, i int, line string) string {
	if v.section == s && v.cursor[s] == i {
		return "  " + formatter.StyleGreen.Render("▸ ") + line + "\n"
	}
	return "    " + line + "\n"
}

// ── attachment flows ─────────────────────────────────────────────────────────

func uploadCmd(state *SharedState, t *domain.Task) tea.Cmd {
	var path string
	check := func(s string) error {
		return domain.Validate(domain.AttachmentUpload{TaskID: t.ID, Path: expandHome(s)})
	}
	form := wizardInputText("File to attach to "+t.DisplayID(), "~/report.pdf", check, &path)
	return startWizardCmd(state, "Upload", form, func() tea.Cmd {
		up := domain.AttachmentUpload{TaskID: t.ID, Path: expandHome(path)}
		return tea.Batch(
			loadingCmd("Uploading "+filepath.Base(up.Path)+"..."),
			actionCmd(state, func(ctx context.Context) (string, error) {
				a, err := state.App.API.Attachments.Upload(ctx, up)
				if err != nil {
					return "", err
				}
				return doneMark(fmt.Sprintf("Uploaded %s (%s)", a.FileName, formatter.FormatBytes(a.Size))), nil
			}),
		)
	})
}

func downloadCmd(state *SharedState, a domain.Attachment) tea.Cmd {
	dir := "."
	form := wizardInputText("Save "+a.FileName+" to directory", ".", nil, &dir)
	return startWizardCmd(state, "Download", form, func() tea.Cmd {
		target := expandHome(domain.Coalesce(strings.TrimSpace(dir), "."))
		return tea.Batch(
			loadingCmd("Downloading "+a.FileName+"..."),
			actionCmd(state, func(ctx context.Context) (string, error) {
				path, err := state.App.API.Attachments.DownloadTo(ctx, a, target)
				if err != nil {
					return "", err
				}
				return doneMark("Saved " + path), nil
			}),
		)
	})
}

func deleteAttachmentCmd(state *SharedState, a domain.Attachment) tea.Cmd {
	return confirmCmd(state, "Delete File", fmt.Sprintf("Delete %s?", a.FileName),
		func(ctx context.Context) (string, error) {
			if err := state.App.API.Attachments.Delete(ctx, a.ID); err != nil {
				return "", err
			}
			return doneMark("Deleted " + a.FileName), nil
		})
}
