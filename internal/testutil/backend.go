package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

var fakeSigningKey = []byte("fake-backend-signing-key")

// RecordedRequest is one request the fake backend received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeBackend is an in-process stand-in for the REST backend. It keeps its
// records in memory, serves the paginated envelope, issues signed JWTs and
// records every request.
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	nextID      int64
	users       map[string]string
	profile     domain.UserProfile
	accessTTL   time.Duration
	revoked     map[string]bool
	refresh     map[string]string
	tasks       []domain.Task
	groups      []domain.DeliveryGroup
	deliveries  map[int64]*domain.Delivery
	items       map[int64][]domain.DeliveryItem
	projects    []domain.Project
	quotes      []domain.Quote
	requesters  []domain.Requester
	billing     []domain.BillingPeriod
	attachments map[int64][]domain.Attachment
	files       map[int64][]byte
	failures    map[string][]int
	delays      map[string]time.Duration
	requests    []RecordedRequest
}

type BackendOption func(*FakeBackend)

// WithUser registers a user that can sign in.
func WithUser(username, password string) BackendOption {
	return func(b *FakeBackend) {
		b.users[username] = password
		b.profile = domain.UserProfile{ID: 1, Username: username, FullName: strings.ToUpper(username[:1]) + username[1:], Roles: []string{"USER"}}
	}
}

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(d time.Duration) BackendOption {
	return func(b *FakeBackend) { b.accessTTL = d }
}

// WithTasks seeds n generated tasks.
func WithTasks(n int) BackendOption {
	return func(b *FakeBackend) {
		for i := 0; i < n; i++ {
			b.tasks = append(b.tasks, NewTestTask(fmt.Sprintf("Task %02d", i+1), WithTaskID(int64(i+1))))
		}
		b.nextID = int64(n) + 1000
	}
}

// WithReferenceData seeds projects, requesters and quotes.
func WithReferenceData() BackendOption {
	return func(b *FakeBackend) {
		b.projects = []domain.Project{
			{ID: 1, Code: "ALPHA", Name: "Alpha Portal", Client: "Acme", Active: true},
			{ID: 2, Code: "BETA", Name: "Beta Billing", Client: "Globex", Active: true},
		}
		b.requesters = []domain.Requester{
			{ID: 1, Name: "Ana Souza", Email: "ana@example.com", Department: "Ops", Active: true},
			{ID: 2, Name: "Bruno Lima", Email: "bruno@example.com", Department: "Finance", Active: true},
		}
		b.quotes = []domain.Quote{
			{ID: 1, Number: "Q-2025-001", ProjectID: 1, ProjectName: "Alpha Portal", Hours: 40, Amount: 4000, Currency: "BRL", Status: domain.QuoteApproved},
		}
	}
}

// NewFakeBackend starts the backend; it is closed when the test ends.
// The API root is URL().
func NewFakeBackend(t *testing.T, opts ...BackendOption) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		nextID:      1000,
		users:       map[string]string{},
		accessTTL:   time.Hour,
		revoked:     map[string]bool{},
		refresh:     map[string]string{},
		deliveries:  map[int64]*domain.Delivery{},
		items:       map[int64][]domain.DeliveryItem{},
		attachments: map[int64][]domain.Attachment{},
		files:       map[int64][]byte{},
		failures:    map[string][]int{},
		delays:      map[string]time.Duration{},
	}
	WithUser("ana", "secret123")(b)
	for _, opt := range opts {
		opt(b)
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API root to configure clients with.
func (b *FakeBackend) URL() string { return b.Server.URL + "/api" }

// Requests returns a copy of every recorded request.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// RequestsTo returns the recorded requests whose method and path match.
func (b *FakeBackend) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *FakeBackend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// FailNext makes the next len(statuses) requests to method+path answer with
// those statuses in order.
func (b *FakeBackend) FailNext(method, path string, statuses ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], statuses...)
}

// Delay holds every request to method+path for d.
func (b *FakeBackend) Delay(method, path string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delays[method+" "+path] = d
}

// IssueToken signs an access token for username, as a login would.
func (b *FakeBackend) IssueToken(username string) domain.TokenResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(username)
}

func (b *FakeBackend) issueLocked(username string) domain.TokenResponse {
	b.nextID++
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        strconv.FormatInt(b.nextID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.accessTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fakeSigningKey)
	if err != nil {
		panic(err)
	}
	refresh := fmt.Sprintf("refresh-%d", b.nextID)
	b.refresh[refresh] = username
	return domain.TokenResponse{
		AccessToken:  signed,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(b.accessTTL.Seconds()),
	}
}

// Revoke invalidates an access token.
func (b *FakeBackend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = true
}

func (b *FakeBackend) SeedTasks(tasks ...domain.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, tasks...)
}

// SeedDelivery stores d and its items and files it under its task's group.
func (b *FakeBackend) SeedDelivery(d domain.Delivery) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addDeliveryLocked(d)
}

// SeedGroup stores a group exactly as given, including a TotalDeliveries
// that may disagree with its list.
func (b *FakeBackend) SeedGroup(g domain.DeliveryGroup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range g.Deliveries {
		d := g.Deliveries[i]
		b.deliveries[d.ID] = &d
		b.items[d.ID] = append(b.items[d.ID], d.Items...)
	}
	b.groups = append(b.groups, g)
}

func (b *FakeBackend) SeedBilling(periods ...domain.BillingPeriod) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.billing = append(b.billing, periods...)
}

func (b *FakeBackend) SeedAttachment(a domain.Attachment, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attachments[a.TaskID] = append(b.attachments[a.TaskID], a)
	b.files[a.ID] = content
}

// Task returns the stored task with id.
func (b *FakeBackend) Task(id int64) (domain.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// Item returns the stored delivery item with id.
func (b *FakeBackend) Item(id int64) (domain.DeliveryItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, list := range b.items {
		for _, it := range list {
			if it.ID == id {
				return it, true
			}
		}
	}
	return domain.DeliveryItem{}, false
}

// ── routing ─────────────────────────────────────────────────────────────────

func (b *FakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/refresh", b.refreshToken)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)
			r.Post("/auth/logout", b.logout)
			r.Get("/users/me", b.me)

			r.Get("/tasks", b.listTasks)
			r.Post("/tasks", b.createTask)
			r.Get("/tasks/{id}", b.getTask)
			r.Put("/tasks/{id}", b.updateTask)
			r.Delete("/tasks/{id}", b.deleteTask)
			r.Patch("/tasks/{id}/status", b.taskStatus)
			r.Get("/tasks/{id}/attachments", b.listAttachments)
			r.Post("/tasks/{id}/attachments", b.uploadAttachment)
			r.Get("/attachments/{id}/download", b.downloadAttachment)
			r.Delete("/attachments/{id}", b.deleteAttachment)

			r.Get("/deliveries/grouped", b.listGroups)
			r.Post("/deliveries", b.createDelivery)
			r.Get("/deliveries/{id}", b.getDelivery)
			r.Patch("/deliveries/{id}/status", b.deliveryStatus)
			r.Get("/deliveries/{id}/items", b.listItems)
			r.Post("/deliveries/{id}/items", b.createItem)
			r.Patch("/delivery-items/{id}", b.patchItem)

			r.Get("/projects", listOf(b, func() []domain.Project { return b.projects }))
			r.Get("/projects/{id}", getOf(b, func() []domain.Project { return b.projects }, func(p domain.Project) int64 { return p.ID }))
			r.Get("/quotes", listOf(b, func() []domain.Quote { return b.quotes }))
			r.Get("/quotes/{id}", getOf(b, func() []domain.Quote { return b.quotes }, func(q domain.Quote) int64 { return q.ID }))
			r.Get("/requesters", listOf(b, func() []domain.Requester { return b.requesters }))
			r.Get("/requesters/{id}", getOf(b, func() []domain.Requester { return b.requesters }, func(q domain.Requester) int64 { return q.ID }))

			r.Get("/billing-periods", listOf(b, func() []domain.BillingPeriod { return b.billing }))
			r.Post("/billing-periods", b.createBilling)
			r.Get("/billing-periods/{id}", getOf(b, func() []domain.BillingPeriod { return b.billing }, func(p domain.BillingPeriod) int64 { return p.ID }))
			r.Post("/billing-periods/{id}/close", b.billingTransition(domain.BillingOpen, domain.BillingClosed))
			r.Post("/billing-periods/{id}/reopen", b.billingTransition(domain.BillingClosed, domain.BillingOpen))
			r.Get("/billing-periods/{id}/report", b.billingReport)
		})
	})
	return r
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		path := strings.TrimPrefix(r.URL.Path, "/api")

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		key := r.Method + " " + path
		delay := b.delays[key]
		status := 0
		if queued := b.failures[key]; len(queued) > 0 {
			status = queued[0]
			b.failures[key] = queued[1:]
		}
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeError(w, status, http.StatusText(status), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
			return fakeSigningKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		b.mu.Lock()
		revoked := b.revoked[raw]
		b.mu.Unlock()
		if err != nil || revoked {
			writeError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ── auth ────────────────────────────────────────────────────────────────────

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body", nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if pw, ok := b.users[in.Username]; !ok || pw != in.Password {
		writeError(w, http.StatusUnauthorized, "bad credentials", nil)
		return
	}
	writeJSON(w, http.StatusOK, b.issueLocked(in.Username))
}

func (b *FakeBackend) refreshToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.refresh[in.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "refresh token expired", nil)
		return
	}
	delete(b.refresh, in.RefreshToken)
	writeJSON(w, http.StatusOK, b.issueLocked(user))
}

func (b *FakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.Revoke(raw)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.profile)
}

// ── tasks ───────────────────────────────────────────────────────────────────

func (b *FakeBackend) listTasks(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	records := append([]domain.Task(nil), b.tasks...)
	b.mu.Unlock()
	servePage(w, r, records)
}

func (b *FakeBackend) taskIndexLocked(id int64) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (b *FakeBackend) getTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, b.tasks[i])
}

func checkTaskInput(w http.ResponseWriter, in domain.TaskInput) bool {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "must not be blank"
	}
	if in.ProjectID == 0 {
		fields["projectId"] = "is required"
	}
	if len(fields) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "invalid task", fields)
		return false
	}
	return true
}

func applyTaskInput(t *domain.Task, in domain.TaskInput) {
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.FlowType = in.FlowType
	t.RequesterID = in.RequesterID
	t.ProjectID = in.ProjectID
	t.QuoteID = in.QuoteID
	t.Link = in.Link
	t.DueDate = in.DueDate
	t.UpdatedAt = time.Now().UTC()
}

func (b *FakeBackend) createTask(w http.ResponseWriter, r *http.Request) {
	var in domain.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body", nil)
		return
	}
	if !checkTaskInput(w, in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	t := domain.Task{ID: b.nextID, Code: fmt.Sprintf("TSK-%d", b.nextID), Status: domain.TaskOpen, CreatedAt: time.Now().UTC()}
	applyTaskInput(&t, in)
	b.tasks = append(b.tasks, t)
	writeJSON(w, http.StatusCreated, t)
}

func (b *FakeBackend) updateTask(w http.ResponseWriter, r *http.Request) {
	var in domain.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body", nil)
		return
	}
	if !checkTaskInput(w, in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(pathID(r))
	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found", nil)
		return
	}
	applyTaskInput(&b.tasks[i], in)
	writeJSON(w, http.StatusOK, b.tasks[i])
}

func (b *FakeBackend) deleteTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(pathID(r))
	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found", nil)
		return
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) taskStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.TaskStatus `json:"status"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(pathID(r))
	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found", nil)
		return
	}
	if b.tasks[i].Status == domain.TaskCancelled || b.tasks[i].Status == domain.TaskDone {
		writeError(w, http.StatusConflict, fmt.Sprintf("task is %s", b.tasks[i].Status), nil)
		return
	}
	b.tasks[i].Status = in.Status
	writeJSON(w, http.StatusOK, b.tasks[i])
}

// ── attachments ─────────────────────────────────────────────────────────────

func (b *FakeBackend) listAttachments(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.attachments[pathID(r)]
	if list == nil {
		list = []domain.Attachment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *FakeBackend) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	taskID := pathID(r)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part", nil)
		return
	}
	defer file.Close()
	content, _ := io.ReadAll(file)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	a := domain.Attachment{
		ID:          b.nextID,
		TaskID:      taskID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(content)),
		UploadedBy:  b.profile.Username,
		UploadedAt:  time.Now().UTC(),
	}
	b.attachments[taskID] = append(b.attachments[taskID], a)
	b.files[a.ID] = content
	writeJSON(w, http.StatusCreated, a)
}

func (b *FakeBackend) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	content, ok := b.files[pathID(r)]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "attachment not found", nil)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (b *FakeBackend) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for taskID, list := range b.attachments {
		for i, a := range list {
			if a.ID == id {
				b.attachments[taskID] = append(list[:i], list[i+1:]...)
				delete(b.files, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "attachment not found", nil)
}

// ── deliveries ──────────────────────────────────────────────────────────────

func (b *FakeBackend) addDeliveryLocked(d domain.Delivery) {
	b.deliveries[d.ID] = &d
	b.items[d.ID] = append(b.items[d.ID], d.Items...)
	for i := range b.groups {
		if b.groups[i].Task.ID == d.TaskID {
			b.groups[i].Deliveries = append(b.groups[i].Deliveries, d)
			b.groups[i].TotalDeliveries++
			return
		}
	}
	summary := domain.TaskSummary{ID: d.TaskID, Code: d.TaskCode, Title: d.TaskTitle}
	if i := b.taskIndexLocked(d.TaskID); i >= 0 {
		t := b.tasks[i]
		summary = domain.TaskSummary{ID: t.ID, Code: t.Code, Title: t.Title, Status: t.Status, FlowType: t.FlowType}
	}
	b.groups = append(b.groups, domain.DeliveryGroup{Task: summary, Deliveries: []domain.Delivery{d}, TotalDeliveries: 1})
}

func (b *FakeBackend) listGroups(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	records := append([]domain.DeliveryGroup(nil), b.groups...)
	b.mu.Unlock()
	servePage(w, r, records)
}

func (b *FakeBackend) getDelivery(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.deliveries[id]
	if !ok {
		writeError(w, http.StatusNotFound, "delivery not found", nil)
		return
	}
	out := *d
	out.Items = b.items[id]
	out.ItemCount = len(out.Items)
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) createDelivery(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TaskID int64                 `json:"taskId"`
		Title  string                `json:"title"`
		Notes  string                `json:"notes"`
		Items  []domain.DeliveryItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(in.TaskID)
	if i < 0 {
		writeError(w, http.StatusUnprocessableEntity, "invalid delivery", map[string]string{"taskId": "unknown task"})
		return
	}
	b.nextID++
	d := domain.Delivery{
		ID:        b.nextID,
		TaskID:    in.TaskID,
		TaskCode:  b.tasks[i].Code,
		TaskTitle: b.tasks[i].Title,
		Title:     in.Title,
		Notes:     in.Notes,
		Status:    domain.DeliveryPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, item := range in.Items {
		b.nextID++
		item.ID = b.nextID
		item.DeliveryID = d.ID
		item.Status = domain.ItemPending
		d.Items = append(d.Items, item)
	}
	d.ItemCount = len(d.Items)
	b.addDeliveryLocked(d)
	writeJSON(w, http.StatusCreated, d)
}

func (b *FakeBackend) deliveryStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.DeliveryStatus `json:"status"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.deliveries[id]
	if !ok {
		writeError(w, http.StatusNotFound, "delivery not found", nil)
		return
	}
	d.Status = in.Status
	writeJSON(w, http.StatusOK, d)
}

func (b *FakeBackend) listItems(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.items[pathID(r)]
	if list == nil {
		list = []domain.DeliveryItem{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *FakeBackend) createItem(w http.ResponseWriter, r *http.Request) {
	deliveryID := pathID(r)
	var item domain.DeliveryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.deliveries[deliveryID]; !ok {
		writeError(w, http.StatusNotFound, "delivery not found", nil)
		return
	}
	b.nextID++
	item.ID = b.nextID
	item.DeliveryID = deliveryID
	item.Status = domain.ItemPending
	item.UpdatedAt = time.Now().UTC()
	b.items[deliveryID] = append(b.items[deliveryID], item)
	writeJSON(w, http.StatusCreated, item)
}

func (b *FakeBackend) patchItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var p domain.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for deliveryID, list := range b.items {
		for i := range list {
			if list[i].ID != id {
				continue
			}
			item := &b.items[deliveryID][i]
			if p.DevOnly() {
				dev, ok := item.Detail.(domain.DevelopmentItem)
				if !ok {
					writeError(w, http.StatusUnprocessableEntity, "branch and pull request apply to development items only", nil)
					return
				}
				if p.Branch != nil {
					dev.Branch = *p.Branch
				}
				if p.PullRequestURL != nil {
					dev.PullRequestURL = *p.PullRequestURL
				}
				item.Detail = dev
			}
			if p.Status != nil {
				item.Status = *p.Status
			}
			if p.Notes != nil {
				item.Notes = *p.Notes
			}
			item.UpdatedAt = time.Now().UTC()
			writeJSON(w, http.StatusOK, item)
			return
		}
	}
	writeError(w, http.StatusNotFound, "delivery item not found", nil)
}

// ── billing ─────────────────────────────────────────────────────────────────

func (b *FakeBackend) createBilling(w http.ResponseWriter, r *http.Request) {
	var in domain.BillingPeriodInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.billing {
		if p.ProjectID == in.ProjectID && p.Year == in.Year && p.Month == in.Month {
			writeError(w, http.StatusConflict, "billing period already exists", nil)
			return
		}
	}
	b.nextID++
	p := domain.BillingPeriod{ID: b.nextID, ProjectID: in.ProjectID, Year: in.Year, Month: in.Month, Status: domain.BillingOpen}
	for _, proj := range b.projects {
		if proj.ID == in.ProjectID {
			p.ProjectName = proj.Name
		}
	}
	b.billing = append(b.billing, p)
	writeJSON(w, http.StatusCreated, p)
}

func (b *FakeBackend) billingTransition(from, to domain.BillingStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.billing {
			if b.billing[i].ID != id {
				continue
			}
			if b.billing[i].Status != from {
				writeError(w, http.StatusConflict, fmt.Sprintf("billing period is already %s", b.billing[i].Status), nil)
				return
			}
			b.billing[i].Status = to
			if to == domain.BillingClosed {
				now := time.Now().UTC()
				b.billing[i].ClosedAt = &now
				b.billing[i].ClosedBy = b.profile.Username
			} else {
				b.billing[i].ClosedAt = nil
				b.billing[i].ClosedBy = ""
			}
			writeJSON(w, http.StatusOK, b.billing[i])
			return
		}
		writeError(w, http.StatusNotFound, "billing period not found", nil)
	}
}

func (b *FakeBackend) billingReport(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.billing {
		if p.ID == id {
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprintf(w, "%%PDF-1.4\n%% billing %s\n", p.Label())
			return
		}
	}
	writeError(w, http.StatusNotFound, "billing period not found", nil)
}

// ── generic listing ─────────────────────────────────────────────────────────

func listOf[T any](b *FakeBackend, records func() []T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		snapshot := append([]T(nil), records()...)
		b.mu.Unlock()
		servePage(w, r, snapshot)
	}
}

func getOf[T any](b *FakeBackend, records func() []T, idOf func(T) int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, rec := range records() {
			if idOf(rec) == id {
				writeJSON(w, http.StatusOK, rec)
				return
			}
		}
		writeError(w, http.StatusNotFound, "not found", nil)
	}
}

// servePage filters, sorts and slices records the way the backend does.
// Records are compared through their JSON form; dotted filter keys reach
// into nested objects. Filters match case-insensitive substrings.
func servePage[T any](w http.ResponseWriter, r *http.Request, records []T) {
	q := r.URL.Query()
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		data, _ := json.Marshal(rec)
		var m map[string]any
		_ = json.Unmarshal(data, &m)
		rows = append(rows, m)
	}

	for key, vals := range q {
		if key == "page" || key == "size" || key == "sort" || len(vals) == 0 {
			continue
		}
		want := strings.ToLower(vals[0])
		kept := rows[:0]
		for _, row := range rows {
			if strings.Contains(strings.ToLower(fmt.Sprint(lookup(row, key))), want) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	if s := q.Get("sort"); s != "" {
		field, dir, _ := strings.Cut(s, ",")
		sort.SliceStable(rows, func(i, j int) bool {
			c := compare(lookup(rows[i], field), lookup(rows[j], field))
			if dir == "desc" {
				return c > 0
			}
			return c < 0
		})
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 10
	}
	total := len(rows)
	totalPages := int(math.Ceil(float64(total) / float64(size)))
	start := page * size
	content := []map[string]any{}
	if page >= 0 && start < total {
		end := min(start+size, total)
		content = rows[start:end]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content":       content,
		"currentPage":   page,
		"totalPages":    totalPages,
		"pageSize":      size,
		"totalElements": total,
	})
}

func lookup(row map[string]any, key string) any {
	var cur any = row
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func compare(a, b any) int {
	fa, aNum := a.(float64)
	fb, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	body := map[string]any{"message": msg}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	writeJSON(w, status, body)
}
