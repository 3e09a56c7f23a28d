package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/repository"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// tableAction is a view-specific key on a table. rec is nil when the table
// has no rows.
type tableAction[T any] struct {
	binding key.Binding
	run     func(rec *T) tea.Cmd
}

// tableSpec describes one server-backed table view.
type tableSpec[T any] struct {
	id      ViewID
	title   string
	prefKey string
	noun    string
	columns []table.Column[T]
	fetch   func(context.Context, table.Query) (*domain.Page[T], error)

	// open runs on enter; nil disables it.
	open func(T) tea.Cmd
	// detail renders a pane under the table for the cursor row.
	detail  func(T) string
	actions []tableAction[T]
}

// pageLoadedMsg delivers one fetch result to the view that issued it.
type pageLoadedMsg[T any] struct {
	view   *tableView[T]
	ticket table.Ticket
	query  table.Query
	page   *domain.Page[T]
	err    error
}

func (pageLoadedMsg[T]) broadcast() {}

// filterDebounceMsg fires once typing in the filter prompt has paused.
type filterDebounceMsg[T any] struct {
	view *tableView[T]
	seq  int
}

func (filterDebounceMsg[T]) broadcast() {}

// tableView is a paginated, sortable and filterable list over one backend
// resource. The Controller owns column state and the filter buffer; the view
// owns the query, fetches pages and mirrors results back.
type tableView[T any] struct {
	state *SharedState
	spec  tableSpec[T]
	ctrl  *table.Controller[T]
	query table.Query
	seq   *table.Sequencer

	rows     []T
	page     table.PageInfo
	cursor   int
	offset   int
	focusKey string
	loading  bool
	err      error
	spinner  spinner.Model

	filtering   bool
	filterKey   string
	filterInput textinput.Model
	filterErr   error
	pending     []table.Intent
	debounceSeq int
}

func newTableView[T any](state *SharedState, spec tableSpec[T]) *tableView[T] {
	ti := textinput.New()
	ti.Prompt = "filter ❯ "
	ti.PromptStyle = formatter.StyleHeader
	ti.CharLimit = 200

	v := &tableView[T]{
		state:       state,
		spec:        spec,
		ctrl:        table.New(spec.columns),
		query:       table.NewQuery(state.App.UI.PageSize),
		seq:         &table.Sequencer{},
		filterInput: ti,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(formatter.StyleHeader),
		),
	}
	if len(spec.columns) > 0 {
		v.focusKey = spec.columns[0].Key
	}
	return v
}

func (v *tableView[T]) ID() ViewID    { return v.spec.id }
func (v *tableView[T]) Title() string { return v.spec.title }

func (v *tableView[T]) ShortHelp() []key.Binding {
	var hints []key.Binding
	for _, a := range v.spec.actions {
		hints = append(hints, a.binding)
	}
	if v.spec.open != nil {
		hints = append(hints, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")))
	}
	return append(hints,
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[ ]", "page")),
		key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "size")),
		key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "columns")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	)
}

// CapturesInput keeps global keys away while the filter prompt is open.
func (v *tableView[T]) CapturesInput() bool { return v.filtering }

func (v *tableView[T]) Init() tea.Cmd {
	v.loadPrefs()
	return v.fetch()
}

// ── data ─────────────────────────────────────────────────────────────────────

// fetch requests the current query. A newer fetch supersedes this one.
func (v *tableView[T]) fetch() tea.Cmd {
	ticket, ctx := v.seq.Begin(context.Background())
	q := v.query
	fetchPage := v.spec.fetch
	timeout := v.state.Timeout()
	v.loading = true

	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		page, err := fetchPage(ctx, q)
		return pageLoadedMsg[T]{view: v, ticket: ticket, query: q, page: page, err: err}
	}
	return tea.Batch(load, v.spinner.Tick)
}

func (v *tableView[T]) loaded(msg pageLoadedMsg[T]) tea.Cmd {
	if !v.seq.Finish(msg.ticket) {
		return nil
	}
	v.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		v.err = msg.err
		return nil
	}
	v.err = nil

	info := api.PageInfo(msg.page)
	// Deleting the last rows of the last page leaves us past the end.
	if msg.page.Empty() && info.TotalPages > 0 && msg.query.Page >= info.TotalPages {
		v.query.Page = info.TotalPages - 1
		return v.fetch()
	}

	v.rows = msg.page.Content
	v.page = info
	v.ctrl.SyncPage(info)
	v.ctrl.SyncSort(v.query.Sort)
	if len(v.pending) == 0 && !v.filtering {
		v.ctrl.SyncFilters(v.query.Filters)
	}
	v.cursor = min(v.cursor, max(len(v.rows)-1, 0))
	return nil
}

// apply routes one controller intent: visibility is saved, filter edits
// wait for the debounce, everything else re-fetches at once.
func (v *tableView[T]) apply(in table.Intent) tea.Cmd {
	if in == nil {
		return nil
	}
	if !table.NeedsFetch(in) {
		v.savePrefs()
		return nil
	}
	if _, ok := in.(table.FiltersCleared); ok {
		v.pending = nil
		v.debounceSeq++
	}

	if d := v.state.App.UI.FilterDebounce(); table.Debounced(in) && d > 0 {
		v.pending = append(v.pending, in)
		v.debounceSeq++
		seq := v.debounceSeq
		return tea.Tick(d, func(time.Time) tea.Msg {
			return filterDebounceMsg[T]{view: v, seq: seq}
		})
	}

	v.query = v.query.Apply(in)
	switch in.(type) {
	case table.SortChanged, table.PageSizeChanged:
		v.savePrefs()
	}
	return v.fetch()
}

// flushFilters applies every buffered filter edit in one fetch.
func (v *tableView[T]) flushFilters() tea.Cmd {
	if len(v.pending) == 0 {
		return nil
	}
	for _, in := range v.pending {
		v.query = v.query.Apply(in)
	}
	v.pending = nil
	v.debounceSeq++
	return v.fetch()
}

// ── preferences ──────────────────────────────────────────────────────────────

func (v *tableView[T]) loadPrefs() {
	repo := v.state.App.Prefs
	if repo == nil || v.spec.prefKey == "" {
		return
	}
	ctx, cancel := v.state.RequestContext()
	defer cancel()

	p, err := repo.Get(ctx, v.spec.prefKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			v.state.App.logger().Warn("load table prefs", "view", v.spec.prefKey, "error", err)
		}
		return
	}
	v.ctrl.SetHidden(p.Hidden)
	if p.PageSize > 0 {
		v.query.Size = p.PageSize
	}
	if sf, ok := table.ParseSort(p.SortField + "," + p.SortDir); ok {
		if col, ok := v.ctrl.Column(sf.Field); ok && col.Sortable {
			v.query.Sort = table.Sort{sf}
			v.ctrl.SyncSort(v.query.Sort)
		}
	}
	v.ensureFocus()
}

func (v *tableView[T]) savePrefs() {
	repo := v.state.App.Prefs
	if repo == nil || v.spec.prefKey == "" {
		return
	}
	p := &domain.TablePrefs{
		View:     v.spec.prefKey,
		Hidden:   v.ctrl.Hidden(),
		PageSize: v.query.Size,
	}
	if active, ok := v.query.Sort.Active(); ok {
		p.SortField = active.Field
		p.SortDir = string(active.Direction)
	}
	ctx, cancel := v.state.RequestContext()
	defer cancel()
	if err := repo.Save(ctx, p); err != nil {
		v.state.App.logger().Warn("save table prefs", "view", v.spec.prefKey, "error", err)
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (v *tableView[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg[T]:
		if msg.view != v {
			return v, nil
		}
		return v, v.loaded(msg)

	case filterDebounceMsg[T]:
		if msg.view != v || msg.seq != v.debounceSeq {
			return v, nil
		}
		return v, v.flushFilters()

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case refreshViewMsg:
		return v, v.fetch()

	case tea.KeyMsg:
		if v.filtering {
			return v, v.updateFilter(msg)
		}
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *tableView[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	for _, a := range v.spec.actions {
		if key.Matches(msg, a.binding) {
			return a.run(v.selected())
		}
	}

	ui := v.state.App.UI
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.rows)-1 {
			v.cursor++
		}
	case "left", "h":
		v.moveFocus(-1)
	case "right", "l":
		v.moveFocus(1)
	case "[":
		if p := v.query.Page - 1; v.ctrl.CanGoTo(p) {
			return v.apply(v.ctrl.ChangePage(p))
		}
	case "]":
		if p := v.query.Page + 1; v.ctrl.CanGoTo(p) {
			return v.apply(v.ctrl.ChangePage(p))
		}
	case "+":
		if next := ui.NextPageSize(v.query.Size, 1); next != v.query.Size {
			return v.apply(v.ctrl.ChangePageSize(next))
		}
	case "-":
		if next := ui.NextPageSize(v.query.Size, -1); next != v.query.Size {
			return v.apply(v.ctrl.ChangePageSize(next))
		}
	case "s":
		return v.apply(v.ctrl.RequestSort(v.focusKey))
	case "/":
		return v.openFilter()
	case "x":
		if v.ctrl.ShowClear(v.focusKey) {
			return v.apply(v.ctrl.ClearFilter(v.focusKey))
		}
	case "X":
		if v.ctrl.HasActiveFilters() || len(v.query.Filters) > 0 {
			return v.apply(v.ctrl.ClearFilters())
		}
	case "v":
		return v.columnChooser()
	case "V":
		in := v.ctrl.ShowAllColumns()
		v.ensureFocus()
		return v.apply(in)
	case "H":
		in := v.ctrl.HideAllColumns()
		v.ensureFocus()
		return v.apply(in)
	case "r":
		return v.fetch()
	case "enter":
		if rec := v.selected(); rec != nil && v.spec.open != nil {
			return v.spec.open(*rec)
		}
	}
	return nil
}

// selected returns the cursor row, or nil on an empty page.
func (v *tableView[T]) selected() *T {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return nil
	}
	return &v.rows[v.cursor]
}

func (v *tableView[T]) moveFocus(step int) {
	cols := v.ctrl.VisibleColumns()
	idx := v.focusIndex(cols)
	if idx < 0 {
		v.ensureFocus()
		return
	}
	idx = (idx + step + len(cols)) % len(cols)
	v.focusKey = cols[idx].Key
}

func (v *tableView[T]) focusIndex(cols []table.Column[T]) int {
	for i, c := range cols {
		if c.Key == v.focusKey {
			return i
		}
	}
	return -1
}

// ensureFocus moves the focus off a hidden column.
func (v *tableView[T]) ensureFocus() {
	cols := v.ctrl.VisibleColumns()
	if v.focusIndex(cols) < 0 && len(cols) > 0 {
		v.focusKey = cols[0].Key
	}
}

// ── filter prompt ────────────────────────────────────────────────────────────

func (v *tableView[T]) openFilter() tea.Cmd {
	col, ok := v.ctrl.Column(v.focusKey)
	if !ok || !col.Filterable {
		return outputCmd(formatter.Dim(fmt.Sprintf("%s cannot be filtered.", col.Title)))
	}
	v.filtering = true
	v.filterKey = col.Key
	v.filterInput.Placeholder = filterPlaceholder(col.FilterKind)
	v.filterInput.SetValue(v.ctrl.Filter(col.Key))
	v.filterInput.CursorEnd()
	return v.filterInput.Focus()
}

func filterPlaceholder(kind table.FilterKind) string {
	switch kind {
	case table.FilterNumber:
		return "number"
	case table.FilterDate:
		return "YYYY-MM-DD"
	}
	return "text"
}

// updateFilter sends each valid edit through the debounce. A value that
// does not parse for the column's kind stays on screen with its error and
// reaches neither the query nor the backend.
func (v *tableView[T]) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		if v.filterErr != nil {
			return nil
		}
		v.closeFilter()
		return v.flushFilters()
	case tea.KeyEsc:
		v.cancelFilter()
		return nil
	}

	before := v.filterInput.Value()
	var cmd tea.Cmd
	v.filterInput, cmd = v.filterInput.Update(msg)
	after := v.filterInput.Value()
	if after == before {
		return cmd
	}
	col, _ := v.ctrl.Column(v.filterKey)
	if err := checkFilterValue(col.FilterKind, after); err != nil {
		v.filterErr = err
		v.dropPending(v.filterKey)
		return cmd
	}
	v.filterErr = nil
	return tea.Batch(cmd, v.apply(v.ctrl.SetFilter(v.filterKey, after)))
}

func (v *tableView[T]) closeFilter() {
	v.filtering = false
	v.filterErr = nil
	v.filterInput.Blur()
}

// cancelFilter closes the prompt and puts back the value in effect, so
// edits still waiting on the debounce are never sent.
func (v *tableView[T]) cancelFilter() {
	key := v.filterKey
	v.closeFilter()
	v.dropPending(key)
	v.ctrl.SetFilter(key, v.query.Filters[key])
}

// dropPending discards buffered edits of one filter. The debounce tick is
// invalidated once nothing is left to flush.
func (v *tableView[T]) dropPending(field string) {
	kept := v.pending[:0]
	for _, in := range v.pending {
		if fc, ok := in.(table.FilterChanged); ok && fc.Field == field {
			continue
		}
		kept = append(kept, in)
	}
	v.pending = kept
	if len(v.pending) == 0 {
		v.pending = nil
		v.debounceSeq++
	}
}

// ── column chooser ───────────────────────────────────────────────────────────

func (v *tableView[T]) columnChooser() tea.Cmd {
	var opts []huh.Option[string]
	var selected []string
	for _, c := range v.ctrl.Columns() {
		if c.Locked {
			continue
		}
		visible := !v.ctrl.IsHidden(c.Key)
		opts = append(opts, huh.NewOption(c.Title, c.Key).Selected(visible))
		if visible {
			selected = append(selected, c.Key)
		}
	}
	if len(opts) == 0 {
		return nil
	}
	form := newForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Visible columns").
			Options(opts...).
			Value(&selected),
	))
	return startWizardCmd(v.state, "Columns", form, func() tea.Cmd {
		return v.applyColumnChoice(selected)
	})
}

// applyColumnChoice toggles columns until the visible set matches selected.
func (v *tableView[T]) applyColumnChoice(selected []string) tea.Cmd {
	want := make(map[string]bool, len(selected))
	for _, k := range selected {
		want[k] = true
	}
	var last table.Intent
	for _, c := range v.ctrl.Columns() {
		if c.Locked {
			continue
		}
		if v.ctrl.IsHidden(c.Key) == want[c.Key] {
			last = v.ctrl.ToggleColumn(c.Key)
		}
	}
	v.ensureFocus()
	return v.apply(last)
}

// ── view ─────────────────────────────────────────────────────────────────────

func (v *tableView[T]) View() string {
	var b strings.Builder
	b.WriteString("\n")

	if summary := v.filterSummary(); summary != "" {
		b.WriteString("  " + summary + "\n\n")
	}

	if v.err != nil {
		b.WriteString(indent(errorOutput(v.err), "  ") + "\n\n")
	}

	switch {
	case len(v.rows) == 0 && v.loading:
		b.WriteString("  " + v.spinner.View() + " " + formatter.Dim("Loading "+v.spec.noun+"...") + "\n")
	case len(v.rows) == 0:
		b.WriteString("  " + formatter.Dim("No "+v.spec.noun+" found.") + "\n")
	default:
		b.WriteString(indent(v.renderTable(), "  "))
		footer := formatter.PageFooter(v.page)
		if v.loading {
			footer += "  " + v.spinner.View()
		}
		b.WriteString("\n  " + formatter.Dim(footer) + "\n")
	}

	if v.filtering {
		b.WriteString("\n  " + v.filterInput.View() + "\n")
		if v.filterErr != nil {
			b.WriteString("  " + formatter.StyleRed.Render(v.filterErr.Error()) + "\n")
		}
	}

	if rec := v.selected(); rec != nil && v.spec.detail != nil {
		if d := v.spec.detail(*rec); d != "" {
			b.WriteString("\n" + indent(d, "  ") + "\n")
		}
	}
	return b.String()
}

func (v *tableView[T]) renderTable() string {
	cols := v.ctrl.VisibleColumns()
	headers := make([]string, len(cols))
	for i, c := range cols {
		h := c.HeaderText() + formatter.SortMark(v.ctrl.Indicator(c.Key))
		if v.ctrl.ShowClear(c.Key) {
			h += " *"
		}
		headers[i] = h
	}

	start, end := v.window()
	rows := v.ctrl.Rows(v.rows[start:end])
	return formatter.RenderTableWith(headers, rows, formatter.TableOptions{
		Cursor:       v.cursor - start,
		FocusCol:     v.focusIndex(cols),
		MaxCellWidth: 40,
	})
}

// window keeps the cursor row on screen when the page is taller than the
// terminal.
func (v *tableView[T]) window() (start, end int) {
	n := len(v.rows)
	if v.state.Height <= 0 {
		return 0, n
	}
	height := max(v.state.ContentHeight()-10, 3)
	if n <= height {
		v.offset = 0
		return 0, n
	}
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+height {
		v.offset = v.cursor - height + 1
	}
	return v.offset, min(v.offset+height, n)
}

// filterSummary lists the filters in effect, in column order.
func (v *tableView[T]) filterSummary() string {
	active := v.ctrl.Filters().Active()
	if len(active) == 0 {
		return ""
	}
	keys := make([]string, 0, len(active))
	for k := range active {
		keys = append(keys, k)
	}
	order := make(map[string]int)
	for i, c := range v.ctrl.Columns() {
		order[c.Key] = i
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })

	parts := make([]string, len(keys))
	for i, k := range keys {
		title := k
		if c, ok := v.ctrl.Column(k); ok {
			title = c.Title
		}
		parts[i] = fmt.Sprintf("%s=%q", title, active[k])
	}
	return formatter.StyleYellow.Render("filters: ") + formatter.Dim(strings.Join(parts, "  ")) +
		formatter.Dim("  (x clears column, X clears all)")
}
