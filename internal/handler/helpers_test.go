package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	appmw "github.com/prodline/internal/middleware"
	"github.com/prodline/internal/model"
	"github.com/prodline/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter mounts routes behind the session middleware, mirroring how
// the app wires handlers.
func newTestRouter(sessions *store.SessionStore, register func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(appmw.Session(sessions))
	register(r)
	return r
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(sessions *store.SessionStore, user model.SessionUser) *http.Cookie {
	token := sessions.Create(user)
	return &http.Cookie{Name: appmw.SessionCookieName, Value: token}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (body %q)", err, rr.Body.String())
	}
	return body
}

// fakeUserStore implements the user store surfaces the handlers need.
type fakeUserStore struct {
	rows    []model.User
	hashes  map[int64]string
	updates map[int64]store.UserUpdate
	resets  map[int64]string
	nextID  int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		hashes:  make(map[int64]string),
		updates: make(map[int64]store.UserUpdate),
		resets:  make(map[int64]string),
		nextID:  1,
	}
}

func (f *fakeUserStore) add(u model.User, hash string) {
	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.rows = append(f.rows, u)
	f.hashes[u.ID] = hash
}

func (f *fakeUserStore) List(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*model.User, string, error) {
	for _, u := range f.rows {
		if u.Username == username {
			row := u
			return &row, f.hashes[u.ID], nil
		}
	}
	return nil, "", store.ErrNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, username, passwordHash, station, operator string, role model.Role) (int64, error) {
	u := model.User{
		ID:       f.nextID,
		Username: username,
		Station:  station,
		Operator: operator,
		Role:     role,
		IsActive: 1,
	}
	f.nextID++
	f.rows = append(f.rows, u)
	f.hashes[u.ID] = passwordHash
	return u.ID, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id int64, upd store.UserUpdate) error {
	for i, u := range f.rows {
		if u.ID == id {
			if upd.Station != nil {
				u.Station = *upd.Station
			}
			if upd.Operator != nil {
				u.Operator = *upd.Operator
			}
			if upd.Role != nil {
				u.Role = *upd.Role
			}
			if upd.IsActive != nil {
				u.IsActive = *upd.IsActive
			}
			f.rows[i] = u
			f.updates[id] = upd
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	for _, u := range f.rows {
		if u.ID == id {
			f.hashes[id] = passwordHash
			f.resets[id] = passwordHash
			return nil
		}
	}
	return store.ErrNotFound
}

// fakeReportStore records inserts and the last filter it was asked to list.
type fakeReportStore struct {
	inserted   []model.Report
	lastFilter store.ReportFilter
	listed     bool
	rows       []model.Report
}

func (f *fakeReportStore) Insert(ctx context.Context, r *model.Report) error {
	r.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *r)
	return nil
}

func (f *fakeReportStore) List(ctx context.Context, filter store.ReportFilter) ([]model.Report, error) {
	f.lastFilter = filter
	f.listed = true
	return f.rows, nil
}

// fakeOrderStore serves orders from a map keyed by order number.
type fakeOrderStore struct {
	orders map[string]model.Order
}

func (f *fakeOrderStore) GetByNo(ctx context.Context, orderNo string) (*model.Order, error) {
	if o, ok := f.orders[orderNo]; ok {
		return &o, nil
	}
	return nil, store.ErrNotFound
}
