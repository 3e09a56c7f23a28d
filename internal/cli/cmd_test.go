package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/config"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/service"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/alexanderramin/taskdesk/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv is an App wired to a fake backend and an in-memory store.
type testEnv struct {
	app     *App
	backend *testutil.FakeBackend
	store   *testutil.TestStore
}

func newTestEnv(t *testing.T, opts ...testutil.BackendOption) *testEnv {
	t.Helper()
	backend := testutil.NewFakeBackend(t, opts...)
	store := testutil.NewTestStore(t)

	cfg := api.Config{BaseURL: backend.URL(), Timeout: 2 * time.Second}
	anon := api.New(api.NewClient(cfg, nil, nil))
	tokens := service.NewTokenSource(store.Sessions, anon.Auth)
	authed := api.New(api.NewClient(cfg, tokens, nil))
	profile := api.NewProfileCache(authed.Profile.Me, time.Minute)

	app := &App{
		API:      authed,
		Sessions: service.NewSessionService(authed.Auth, store.Sessions, store.UoW, tokens, profile),
		Profile:  profile,
		Prefs:    store.Prefs,
		UI: config.UIConfig{
			PageSize:  10,
			PageSizes: []int{5, 10, 25},
		},
		RequestTimeout: 5 * time.Second,
		HistoryPath:    filepath.Join(t.TempDir(), "history"),
	}
	return &testEnv{app: app, backend: backend, store: store}
}

func (e *testEnv) signIn(t *testing.T) *testEnv {
	t.Helper()
	_, err := e.app.Sessions.Login(context.Background(), domain.LoginInput{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	return e
}

// testApp is a signed-in App over reference data and a few tasks.
func testApp(t *testing.T) *App {
	t.Helper()
	return newTestEnv(t, testutil.WithReferenceData(), testutil.WithTasks(3)).signIn(t).app
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// --- Root command ---

func TestRootCmd_NoArgs_ShowsHelpOffTerminal(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "taskdesk")
	assert.Contains(t, output, "deliveries")
}

func TestRootCmd_TUIUsesRunProgram(t *testing.T) {
	app := testApp(t)
	started := false
	app.RunProgram = func(m tea.Model) error {
		_, ok := m.(appModel)
		started = ok
		return nil
	}

	_, err := executeCmd(t, app, "tui")
	require.NoError(t, err)
	assert.True(t, started)
}

// --- Session commands ---

func TestLoginCmd_WithFlags(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "login", "-u", "ana", "-p", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as")

	out, err = executeCmd(t, env.app, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ana")
}

func TestLoginCmd_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "login", "-u", "ana", "-p", "wrong-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestLoginCmd_MissingPasswordOffTerminal(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "login", "-u", "ana")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestLogoutCmd(t *testing.T) {
	env := newTestEnv(t).signIn(t)

	_, err := executeCmd(t, env.app, "logout")
	require.NoError(t, err)

	_, err = executeCmd(t, env.app, "tasks", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "sign in with: taskdesk login", ErrorHint(err))
}

// --- Tasks ---

func TestTasksList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TSK-1")
	assert.Contains(t, out, "Task 03")
	assert.Contains(t, out, "3 records")
}

func TestTasksList_FilterAndSort(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "tasks", "list", "--filter", "title=02", "--sort", "title,desc")
	require.NoError(t, err)
	assert.Contains(t, out, "Task 02")
	assert.NotContains(t, out, "Task 01")
}

func TestTasksList_RejectsUnknownColumns(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "tasks", "list", "--filter", "secret=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot filter by")

	_, err = executeCmd(t, app, "tasks", "list", "--sort", "flowType")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot sort by")
}

func TestTasksList_InvalidDateFilterNeverReachesBackend(t *testing.T) {
	env := newTestEnv(t, testutil.WithTasks(3)).signIn(t)
	env.backend.ResetRequests()

	_, err := executeCmd(t, env.app, "tasks", "list", "--filter", "dueDate=garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter dueDate")
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
	assert.Empty(t, env.backend.RequestsTo("GET", "/tasks"))
}

func TestCheckFilterValue(t *testing.T) {
	tests := []struct {
		name    string
		kind    table.FilterKind
		value   string
		wantErr bool
	}{
		{"number", table.FilterNumber, "2025", false},
		{"number blank", table.FilterNumber, "  ", false},
		{"number with letters", table.FilterNumber, "20x5", true},
		{"date", table.FilterDate, "2025-03-14", false},
		{"date blank", table.FilterDate, "", false},
		{"date garbage", table.FilterDate, "garbage", true},
		{"date partial", table.FilterDate, "2025-03", true},
		{"text accepts anything", table.FilterText, "garbage", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFilterValue(tt.kind, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTasksList_EmptyPage(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "tasks", "list", "--filter", "title=nothing-matches")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestTaskCreateShowAndDelete(t *testing.T) {
	env := newTestEnv(t, testutil.WithReferenceData()).signIn(t)

	out, err := executeCmd(t, env.app, "tasks", "create",
		"--title", "Rotate certificates", "--flow", "operational",
		"--project", "1", "--requester", "2", "--due", "2025-06-30")
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	page, err := env.app.API.Tasks.List(context.Background(), table.NewQuery(10))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	created := page.Content[0]
	assert.Equal(t, domain.FlowOperational, created.FlowType)

	_, err = executeCmd(t, env.app, "task", "show", created.Code)
	require.Error(t, err, "codes are not ids")

	out, err = executeCmd(t, env.app, "task", "show", itoa(created.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Rotate certificates")
	assert.Contains(t, out, "OPS")

	_, err = executeCmd(t, env.app, "task", "delete", itoa(created.ID))
	require.Error(t, err, "delete needs --yes off a terminal")

	_, err = executeCmd(t, env.app, "task", "delete", itoa(created.ID), "--yes")
	require.NoError(t, err)
	_, ok := env.backend.Task(created.ID)
	assert.False(t, ok)
}

func TestTaskCreate_ValidatesBeforeSending(t *testing.T) {
	env := newTestEnv(t, testutil.WithReferenceData()).signIn(t)
	env.backend.ResetRequests()

	_, err := executeCmd(t, env.app, "tasks", "create", "--title", "ab", "--flow", "operational",
		"--project", "1", "--requester", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Empty(t, env.backend.RequestsTo("POST", "/tasks"))
}

func TestTaskStatus(t *testing.T) {
	env := newTestEnv(t, testutil.WithTasks(1)).signIn(t)

	out, err := executeCmd(t, env.app, "task", "status", "1", "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "In Progress")

	task, ok := env.backend.Task(1)
	require.True(t, ok)
	assert.Equal(t, domain.TaskInProgress, task.Status)

	_, err = executeCmd(t, env.app, "task", "status", "1", "someday")
	assert.Error(t, err)
}

// --- Attachments ---

func TestAttachmentUploadListDownload(t *testing.T) {
	env := newTestEnv(t, testutil.WithTasks(1)).signIn(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello attachment"), 0o600))

	out, err := executeCmd(t, env.app, "files", "upload", "1", src)
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")

	out, err = executeCmd(t, env.app, "files", "list", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")

	atts, err := env.app.API.Attachments.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, atts, 1)

	target := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(target, 0o700))
	_, err = executeCmd(t, env.app, "files", "download", "1", itoa(atts[0].ID), "--dir", target)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(target, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello attachment", string(data))
}

// --- Deliveries ---

func TestDeliveriesList_ShowsEveryDeliveryAndMismatch(t *testing.T) {
	env := newTestEnv(t).signIn(t)
	task := testutil.NewTestTask("Release 2.0")
	env.backend.SeedTasks(task)
	d1 := testutil.NewTestDelivery(task, "Backend")
	d2 := testutil.NewTestDelivery(task, "Frontend")
	env.backend.SeedGroup(testutil.NewTestGroup(task, 3, d1, d2))

	out, err := executeCmd(t, env.app, "deliveries", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend")
	assert.Contains(t, out, "Frontend")
	assert.Contains(t, out, "3 deliveries")
	assert.Contains(t, out, "backend reports 3 deliveries, 2 listed")
}

func TestDeliveryCreateAndShow(t *testing.T) {
	env := newTestEnv(t, testutil.WithTasks(1)).signIn(t)

	out, err := executeCmd(t, env.app, "delivery", "create", "--task", "1", "--title", "Sprint 12",
		"--dev", "Login page|web-app|feature/login|https://git.example.com/pr/7",
		"--ops", "Migrate|run migration 42|staging")
	require.NoError(t, err)
	assert.Contains(t, out, "with 2 items")

	page, err := env.app.API.Deliveries.ListGrouped(context.Background(), table.NewQuery(10))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Len(t, page.Content[0].Deliveries, 1)
	id := page.Content[0].Deliveries[0].ID

	out, err = executeCmd(t, env.app, "delivery", "show", itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Sprint 12")
	assert.Contains(t, out, "feature/login")
	assert.Contains(t, out, "run migration 42")
	assert.Contains(t, out, "0/2")
}

func TestItemRendering_UnknownKind(t *testing.T) {
	it := domain.DeliveryItem{ID: 7, UnknownFlow: "RESEARCH", Notes: "kept"}

	assert.Contains(t, itemSummary(it.Detail), "unknown kind")
	assert.Contains(t, itemFields(it), [2]string{"Kind", `unknown kind "RESEARCH"`})
}

func TestDeliveryCreate_RejectsInvalidItem(t *testing.T) {
	env := newTestEnv(t, testutil.WithTasks(1)).signIn(t)

	_, err := executeCmd(t, env.app, "delivery", "create", "--task", "1", "--title", "Sprint 12",
		"--dev", "Login page|web-app|feature/login|not a url")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

// --- Items ---

func TestItemPatchCommands(t *testing.T) {
	env := newTestEnv(t, testutil.WithTasks(1)).signIn(t)
	task, _ := env.backend.Task(1)
	dev := testutil.NewDevItem("API", "feature/api")
	ops := testutil.NewOpsItem("Deploy", "production")
	env.backend.SeedDelivery(testutil.NewTestDelivery(task, "Sprint", testutil.WithItems(dev, ops)))

	_, err := executeCmd(t, env.app, "item", "status", itoa(dev.ID), "done")
	require.NoError(t, err)
	_, err = executeCmd(t, env.app, "item", "branch", itoa(dev.ID), "release/1.0")
	require.NoError(t, err)

	got, ok := env.backend.Item(dev.ID)
	require.True(t, ok)
	assert.Equal(t, domain.ItemDone, got.Status)
	assert.Equal(t, "release/1.0", got.Detail.(domain.DevelopmentItem).Branch)

	_, err = executeCmd(t, env.app, "item", "branch", itoa(ops.ID), "main")
	require.Error(t, err, "operational items have no branch")
}

// --- Billing ---

func TestBillingLifecycle(t *testing.T) {
	env := newTestEnv(t, testutil.WithReferenceData()).signIn(t)

	out, err := executeCmd(t, env.app, "billing", "create", "--project", "1", "--period", "2025-03")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-03")

	page, err := env.app.API.Billing.List(context.Background(), table.NewQuery(10))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	id := itoa(page.Content[0].ID)

	out, err = executeCmd(t, env.app, "billing", "close", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Closed billing period 2025-03")

	_, err = executeCmd(t, env.app, "billing", "close", id)
	assert.Error(t, err, "closing twice conflicts")

	out, err = executeCmd(t, env.app, "billing", "reopen", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened")

	dir := t.TempDir()
	out, err = executeCmd(t, env.app, "billing", "report", id, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestBillingCreate_InvalidPeriod(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "billing", "create", "--project", "1", "--period", "2025-13")
	require.Error(t, err)

	_, err = executeCmd(t, app, "billing", "create", "--project", "1", "--period", "March")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM")
}

// --- Reference data ---

func TestCatalogLists(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "OPS")
	assert.Contains(t, out, "Beta Billing")

	out, err = executeCmd(t, app, "quotes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Q-2025-001")

	out, err = executeCmd(t, app, "requesters", "list", "--filter", "department=fin")
	require.NoError(t, err)
	assert.Contains(t, out, "Bruno Lima")
	assert.NotContains(t, out, "Ana Souza")
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
