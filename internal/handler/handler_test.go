package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
	"github.com/glowpoint/salon-scheduler/internal/cache"
	"github.com/glowpoint/salon-scheduler/internal/config"
	"github.com/glowpoint/salon-scheduler/internal/form"
	"github.com/glowpoint/salon-scheduler/internal/grid"
	"github.com/glowpoint/salon-scheduler/internal/handler"
	"github.com/glowpoint/salon-scheduler/internal/layout"
	"github.com/glowpoint/salon-scheduler/internal/router"
	"github.com/glowpoint/salon-scheduler/internal/selection"
)

const (
	testSecret = "test-secret"
	testCookie = "sessionid"
)

// wireAppointment is an appointment row as the remote booking API serves it.
type wireAppointment struct {
	ID              int       `json:"id"`
	AppointmentTime time.Time `json:"appointment_time"`
	EndTime         time.Time `json:"end_time"`
	Comment         string    `json:"comment"`
	ColumnID        int       `json:"column_id"`
	Salon           int       `json:"salon"`
	User            int       `json:"user"`
	Customer        int       `json:"customer"`
}

type wireCustomer struct {
	ID          int    `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Salon       int    `json:"salon,omitempty"`
}

// fakeUpstream emulates the remote booking API: in-memory rows, session
// cookie required on every call.
type fakeUpstream struct {
	mu           sync.Mutex
	appointments map[int]wireAppointment
	customers    map[int]wireCustomer
	nextID       int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		appointments: make(map[int]wireAppointment),
		customers:    make(map[int]wireCustomer),
		nextID:       100,
	}
}

func (f *fakeUpstream) addAppointment(a wireAppointment) {
	f.mu.Lock()
	f.appointments[a.ID] = a
	f.mu.Unlock()
}

func (f *fakeUpstream) addCustomer(c wireCustomer) {
	f.mu.Lock()
	f.customers[c.ID] = c
	f.mu.Unlock()
}

func (f *fakeUpstream) has(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.appointments[id]
	return ok
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(testCookie); err != nil {
		http.Error(w, `{"detail":"no session"}`, http.StatusForbidden)
		return
	}
	switch {
	case r.URL.Path == "/appointments/":
		f.serveAppointments(w, r)
	case strings.HasPrefix(r.URL.Path, "/appointments/"):
		f.serveAppointment(w, r)
	case r.URL.Path == "/customers/":
		f.serveCustomers(w, r)
	case strings.HasPrefix(r.URL.Path, "/customers/"):
		f.serveCustomer(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeUpstream) serveAppointments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		date := r.URL.Query().Get("date")
		out := []wireAppointment{}
		for _, a := range f.appointments {
			if date == "" || a.AppointmentTime.UTC().Format("2006-01-02") == date {
				out = append(out, a)
			}
		}
		json.NewEncoder(w).Encode(out)
	case http.MethodPost:
		var a wireAppointment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, `{"detail":"bad payload"}`, http.StatusBadRequest)
			return
		}
		f.nextID++
		a.ID = f.nextID
		f.appointments[a.ID] = a
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(a)
	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func (f *fakeUpstream) serveAppointment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/appointments/"), "/"))
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var patch struct {
			AppointmentTime *time.Time `json:"appointment_time"`
			EndTime         *time.Time `json:"end_time"`
			Comment         *string    `json:"comment"`
			ColumnID        *int       `json:"column_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, `{"detail":"bad payload"}`, http.StatusBadRequest)
			return
		}
		if patch.AppointmentTime != nil {
			a.AppointmentTime = *patch.AppointmentTime
		}
		if patch.EndTime != nil {
			a.EndTime = *patch.EndTime
		}
		if patch.Comment != nil {
			a.Comment = *patch.Comment
		}
		if patch.ColumnID != nil {
			a.ColumnID = *patch.ColumnID
		}
		f.appointments[id] = a
		json.NewEncoder(w).Encode(a)
	case http.MethodDelete:
		delete(f.appointments, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func (f *fakeUpstream) serveCustomers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		out := []wireCustomer{}
		for _, c := range f.customers {
			out = append(out, c)
		}
		json.NewEncoder(w).Encode(out)
	case http.MethodPost:
		var c wireCustomer
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, `{"detail":"bad payload"}`, http.StatusBadRequest)
			return
		}
		f.nextID++
		c.ID = f.nextID
		f.customers[c.ID] = c
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(c)
	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func (f *fakeUpstream) serveCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/customers/"), "/"))
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(c)
}

// env is one wired service instance over a fake upstream.
type env struct {
	e        *echo.Echo
	upstream *fakeUpstream
}

func newEnv(t *testing.T) *env {
	t.Helper()

	upstream := newFakeUpstream()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL, testCookie)
	coordinator := cache.New(client, time.Minute)
	engine := layout.New(grid.Default)
	forms := form.NewManager(client, coordinator, grid.Default)
	selections := selection.NewManager(client, coordinator)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterCalendar(e, router.Handlers{
		Calendar:     handler.NewCalendarHandler(coordinator, engine, 5),
		Appointments: handler.NewAppointmentHandler(forms, client, coordinator),
		Selection:    handler.NewSelectionHandler(selections, client, coordinator),
		Customers:    handler.NewCustomerHandler(client),
	}, testSecret, testCookie, config.RateLimitConfig{}, nil)

	return &env{e: e, upstream: upstream}
}

func sessionToken(t *testing.T, userID, salonID int) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"salon": salonID,
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// do issues a request against the wired echo instance. An empty token means
// an anonymous request.
func (ev *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	ev.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts
}

func TestHealth(t *testing.T) {
	ev := newEnv(t)
	rec := ev.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestCalendarDay_RendersPositionedSlots(t *testing.T) {
	ev := newEnv(t)
	ev.upstream.addAppointment(wireAppointment{
		ID:              42,
		AppointmentTime: mustTime(t, "2025-08-01T09:00:00Z"),
		EndTime:         mustTime(t, "2025-08-01T10:00:00Z"),
		ColumnID:        2,
		Salon:           3,
		User:            7,
		Customer:        11,
		Comment:         "color + cut",
	})
	token := sessionToken(t, 7, 3)

	rec := ev.do(t, http.MethodGet, "/v1/calendar/day?date=2025-08-01", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["date"] != "2025-08-01" {
		t.Fatalf("date = %v", resp["date"])
	}
	if got := resp["rows"].(float64); got != 56 {
		t.Fatalf("rows = %v, want 56", got)
	}
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	slot := items[0].(map[string]interface{})
	if slot["start_row"].(float64) != 9 {
		t.Errorf("start_row = %v, want 9", slot["start_row"])
	}
	if slot["row_span"].(float64) != 4 {
		t.Errorf("row_span = %v, want 4", slot["row_span"])
	}
	if slot["column"].(float64) != 2 {
		t.Errorf("column = %v, want 2", slot["column"])
	}
	if slot["color_index"].(float64) != 42%8 {
		t.Errorf("color_index = %v, want %d", slot["color_index"], 42%8)
	}
	if slot["title"] != "color + cut" {
		t.Errorf("title = %v", slot["title"])
	}
	if _, ok := resp["alert"]; ok {
		t.Errorf("unexpected alert on clean fetch: %v", resp["alert"])
	}
}

func TestCalendarDay_RequiresSession(t *testing.T) {
	ev := newEnv(t)
	rec := ev.do(t, http.MethodGet, "/v1/calendar/day?date=2025-08-01", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCalendarDay_RejectsMalformedDate(t *testing.T) {
	ev := newEnv(t)
	token := sessionToken(t, 7, 3)
	rec := ev.do(t, http.MethodGet, "/v1/calendar/day?date=01-08-2025", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitFlow_CreatesAppointment(t *testing.T) {
	ev := newEnv(t)
	ev.upstream.addCustomer(wireCustomer{ID: 11, FullName: "Dana Fox", PhoneNumber: "555-0101"})
	token := sessionToken(t, 7, 3)

	rec := ev.do(t, http.MethodPatch, "/v1/appointments/form", token, map[string]interface{}{
		"customer": 11,
		"date":     "2025-08-01",
		"start":    "09:00",
		"column":   2,
		"comment":  "balayage",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch form status = %d body = %s", rec.Code, rec.Body.String())
	}
	state := decode(t, rec)["state"].(map[string]interface{})
	if state["end"] != "10:00" {
		t.Fatalf("derived end = %v, want 10:00", state["end"])
	}

	rec = ev.do(t, http.MethodPost, "/v1/appointments", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d body = %s", rec.Code, rec.Body.String())
	}
	apt := decode(t, rec)["appointment"].(map[string]interface{})
	if apt["date"] != "2025-08-01" || apt["start_time"] != "09:00" || apt["end_time"] != "10:00" {
		t.Fatalf("created appointment = %v", apt)
	}
	if !ev.upstream.has(int(apt["id"].(float64))) {
		t.Fatalf("appointment %v not stored upstream", apt["id"])
	}

	// The form resets after a successful submit.
	rec = ev.do(t, http.MethodGet, "/v1/appointments/form", token, nil)
	state = decode(t, rec)["state"].(map[string]interface{})
	if state["date"] != "" || state["customer"].(float64) != 0 {
		t.Fatalf("form not reset: %v", state)
	}

	// The new appointment shows up on the calendar without any manual
	// cache work: invalidation rides the mutation.
	rec = ev.do(t, http.MethodGet, "/v1/calendar/day?date=2025-08-01", token, nil)
	items := decode(t, rec)["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("calendar items after submit = %d, want 1", len(items))
	}
}

func TestSubmit_MissingCustomerIsLocal(t *testing.T) {
	ev := newEnv(t)
	token := sessionToken(t, 7, 3)

	ev.do(t, http.MethodPatch, "/v1/appointments/form", token, map[string]interface{}{
		"date":  "2025-08-01",
		"start": "09:00",
	})
	rec := ev.do(t, http.MethodPost, "/v1/appointments", token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if alert := decode(t, rec)["alert"]; alert != "please select a customer" {
		t.Fatalf("alert = %v", alert)
	}
}

func TestSelectionFlow_OpenCloseDelete(t *testing.T) {
	ev := newEnv(t)
	ev.upstream.addAppointment(wireAppointment{
		ID:              42,
		AppointmentTime: mustTime(t, "2025-08-01T09:00:00Z"),
		EndTime:         mustTime(t, "2025-08-01T10:00:00Z"),
		ColumnID:        1,
		Customer:        11,
	})
	ev.upstream.addCustomer(wireCustomer{ID: 11, FullName: "Dana Fox", PhoneNumber: "555-0101"})
	token := sessionToken(t, 7, 3)

	rec := ev.do(t, http.MethodPost, "/v1/selection/open", token, map[string]interface{}{
		"appointment_id": 42,
		"date":           "2025-08-01",
		"anchor":         map[string]float64{"top": 120, "left": 80, "width": 200, "height": 64},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("open status = %d body = %s", rec.Code, rec.Body.String())
	}
	sel := decode(t, rec)
	if cust := sel["customer"].(map[string]interface{}); cust["full_name"] != "Dana Fox" {
		t.Fatalf("customer = %v", cust)
	}
	if sel["color_index"].(float64) != 42%8 {
		t.Fatalf("color_index = %v", sel["color_index"])
	}

	rec = ev.do(t, http.MethodGet, "/v1/selection", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current status = %d", rec.Code)
	}

	rec = ev.do(t, http.MethodPost, "/v1/selection/close", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("close status = %d", rec.Code)
	}
	rec = ev.do(t, http.MethodGet, "/v1/selection", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("current after close status = %d, want 204", rec.Code)
	}

	// Re-open and delete through the modal.
	ev.do(t, http.MethodPost, "/v1/selection/open", token, map[string]interface{}{
		"appointment_id": 42,
		"date":           "2025-08-01",
	})
	rec = ev.do(t, http.MethodPost, "/v1/selection/delete", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d body = %s", rec.Code, rec.Body.String())
	}
	if ev.upstream.has(42) {
		t.Fatal("appointment still stored upstream after delete")
	}
	rec = ev.do(t, http.MethodGet, "/v1/selection", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("selection still open after delete: %d", rec.Code)
	}
}

func TestSelectionDelete_NothingOpen(t *testing.T) {
	ev := newEnv(t)
	token := sessionToken(t, 7, 3)
	rec := ev.do(t, http.MethodPost, "/v1/selection/delete", token, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSelectionOpen_UnknownAppointment(t *testing.T) {
	ev := newEnv(t)
	token := sessionToken(t, 7, 3)
	rec := ev.do(t, http.MethodPost, "/v1/selection/open", token, map[string]interface{}{
		"appointment_id": 999,
		"date":           "2025-08-01",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCustomers_ListAndCreate(t *testing.T) {
	ev := newEnv(t)
	ev.upstream.addCustomer(wireCustomer{ID: 11, FullName: "Dana Fox", PhoneNumber: "555-0101"})
	token := sessionToken(t, 7, 3)

	rec := ev.do(t, http.MethodGet, "/v1/customers", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	customers := decode(t, rec)["customers"].([]interface{})
	if len(customers) != 1 {
		t.Fatalf("customers = %d, want 1", len(customers))
	}

	rec = ev.do(t, http.MethodPost, "/v1/customers", token, map[string]string{
		"full_name":    "Robin Vale",
		"phone_number": "555-0102",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	cust := decode(t, rec)["customer"].(map[string]interface{})
	if cust["full_name"] != "Robin Vale" {
		t.Fatalf("customer = %v", cust)
	}

	rec = ev.do(t, http.MethodPost, "/v1/customers", token, map[string]string{"full_name": "No Phone"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("create without phone status = %d, want 422", rec.Code)
	}
}

func TestUpdateAppointment_InvalidatesCalendar(t *testing.T) {
	ev := newEnv(t)
	ev.upstream.addAppointment(wireAppointment{
		ID:              42,
		AppointmentTime: mustTime(t, "2025-08-01T09:00:00Z"),
		EndTime:         mustTime(t, "2025-08-01T10:00:00Z"),
		ColumnID:        1,
		Customer:        11,
	})
	token := sessionToken(t, 7, 3)

	// Warm the cache first.
	ev.do(t, http.MethodGet, "/v1/calendar/day?date=2025-08-01", token, nil)

	newStart := "2025-08-01T11:00:00Z"
	newEnd := "2025-08-01T12:00:00Z"
	rec := ev.do(t, http.MethodPatch, "/v1/appointments/42", token, map[string]string{
		"appointment_time": newStart,
		"end_time":         newEnd,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = ev.do(t, http.MethodGet, "/v1/calendar/day?date=2025-08-01", token, nil)
	items := decode(t, rec)["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}
	slot := items[0].(map[string]interface{})
	if slot["start_time"] != "11:00" {
		t.Fatalf("start_time after reschedule = %v, want 11:00", slot["start_time"])
	}
}

func TestDeleteAppointment_Direct(t *testing.T) {
	ev := newEnv(t)
	ev.upstream.addAppointment(wireAppointment{
		ID:              42,
		AppointmentTime: mustTime(t, "2025-08-01T09:00:00Z"),
		EndTime:         mustTime(t, "2025-08-01T10:00:00Z"),
	})
	token := sessionToken(t, 7, 3)

	rec := ev.do(t, http.MethodDelete, "/v1/appointments/42?date=2025-08-01", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d body = %s", rec.Code, rec.Body.String())
	}
	if ev.upstream.has(42) {
		t.Fatal("appointment still stored upstream")
	}

	rec = ev.do(t, http.MethodDelete, "/v1/appointments/42?date=2025-08-01", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}
