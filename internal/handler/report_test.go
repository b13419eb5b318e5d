package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	appmw "github.com/prodline/internal/middleware"
	"github.com/prodline/internal/model"
	"github.com/prodline/internal/store"
)

func newReportFixture() (*fakeReportStore, *store.SessionStore, http.Handler) {
	reports := &fakeReportStore{}
	sessions := store.NewSessionStore()
	h := NewReportHandler(testLogger(), reports)
	router := newTestRouter(sessions, func(r chi.Router) {
		r.Use(appmw.RequireAuth)
		r.Post("/api/report", h.Submit)
		r.Get("/api/reports", h.List)
		r.Post("/api/reports/clear", h.Clear)
	})
	return reports, sessions, router
}

var operatorSession = model.SessionUser{
	ID: 5, Username: "alice", Station: "line-1", Operator: "alice-op", Role: model.RoleEditor,
}

var adminSession = model.SessionUser{
	ID: 1, Username: "root", Station: "office", Operator: "root-op", Role: model.RoleAdmin,
}

func TestSubmit_TakesStationAndOperatorFromSession(t *testing.T) {
	reports, sessions, router := newReportFixture()

	req := jsonRequest(http.MethodPost, "/api/report", map[string]any{
		"orderNo":    "WO-100",
		"itemName":   "widget",
		"itemNo":     "W-1",
		"goodNumber": 12,
		"badNumber":  0,
	})
	req.AddCookie(sessionCookie(sessions, operatorSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if len(reports.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(reports.inserted))
	}
	got := reports.inserted[0]
	if got.Station != "line-1" || got.Operator != "alice-op" {
		t.Errorf("station/operator must come from the session, got %+v", got)
	}
	if got.GoodQty != 12 || got.BadQty != 0 {
		t.Errorf("quantities = %d/%d, want 12/0", got.GoodQty, got.BadQty)
	}
}

func TestSubmit_RejectsNegativeQuantity(t *testing.T) {
	reports, sessions, router := newReportFixture()

	req := jsonRequest(http.MethodPost, "/api/report", map[string]any{
		"orderNo":    "WO-100",
		"itemName":   "widget",
		"itemNo":     "W-1",
		"goodNumber": -1,
		"badNumber":  0,
	})
	req.AddCookie(sessionCookie(sessions, operatorSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(reports.inserted) != 0 {
		t.Error("no row may be inserted on validation failure")
	}
}

func TestSubmit_RejectsQuantityAboveInt64(t *testing.T) {
	reports, sessions, router := newReportFixture()

	// 1e19 > max int64; a naive float-to-int conversion would wrap it
	// negative and slip past the sign check.
	req := jsonRequest(http.MethodPost, "/api/report", map[string]any{
		"orderNo":    "WO-100",
		"itemName":   "widget",
		"itemNo":     "W-1",
		"goodNumber": 1e19,
		"badNumber":  0,
	})
	req.AddCookie(sessionCookie(sessions, operatorSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(reports.inserted) != 0 {
		t.Error("no row may be inserted on validation failure")
	}
}

func TestSubmit_RejectsUnknownBodyField(t *testing.T) {
	reports, sessions, router := newReportFixture()

	req := jsonRequest(http.MethodPost, "/api/report", map[string]any{
		"orderNo":    "WO-100",
		"itemName":   "widget",
		"itemNo":     "W-1",
		"goodNumber": 1,
		"badNumber":  0,
		"operator":   "bob",
	})
	req.AddCookie(sessionCookie(sessions, operatorSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest || len(reports.inserted) != 0 {
		t.Errorf("status = %d inserts = %d, want 400 and none", rr.Code, len(reports.inserted))
	}
}

func TestSubmit_RejectsMissingQuantity(t *testing.T) {
	reports, sessions, router := newReportFixture()

	req := jsonRequest(http.MethodPost, "/api/report", map[string]any{
		"orderNo":  "WO-100",
		"itemName": "widget",
		"itemNo":   "W-1",
		// goodNumber/badNumber absent
	})
	req.AddCookie(sessionCookie(sessions, operatorSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest || len(reports.inserted) != 0 {
		t.Errorf("status = %d inserts = %d, want 400 and none", rr.Code, len(reports.inserted))
	}
}

func TestSubmit_RejectsBlankRequiredFields(t *testing.T) {
	reports, sessions, router := newReportFixture()

	req := jsonRequest(http.MethodPost, "/api/report", map[string]any{
		"orderNo":    "WO-100",
		"itemName":   "   ",
		"itemNo":     "W-1",
		"goodNumber": 1,
		"badNumber":  0,
	})
	req.AddCookie(sessionCookie(sessions, operatorSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest || len(reports.inserted) != 0 {
		t.Errorf("status = %d inserts = %d, want 400 and none", rr.Code, len(reports.inserted))
	}
}

func TestList_NonAdmin_FiltersAreIgnored(t *testing.T) {
	reports, sessions, router := newReportFixture()

	// A non-admin trying to read someone else's historical rows.
	req := httptest.NewRequest(http.MethodGet,
		"/api/reports?operator=bob&from=2000-01-01&to=2099-12-31&station=line-9", nil)
	req.AddCookie(sessionCookie(sessions, operatorSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	f := reports.lastFilter
	if f.OperatorExact != "alice-op" {
		t.Errorf("OperatorExact = %q, want the session operator", f.OperatorExact)
	}
	if !f.Today {
		t.Error("filter must be scoped to the current date")
	}
	if f.Operator != "" || f.From != "" || f.To != "" || f.Station != "" {
		t.Errorf("client filters must be ignored for non-admins, got %+v", f)
	}
	if f.Limit != 2000 {
		t.Errorf("Limit = %d, want 2000", f.Limit)
	}
}

func TestList_Admin_FiltersHonored(t *testing.T) {
	reports, sessions, router := newReportFixture()

	req := httptest.NewRequest(http.MethodGet,
		"/api/reports?from=2026-01-01&to=2026-01-31&station=line&operator=ali&order_no=WO&item_name=widget", nil)
	req.AddCookie(sessionCookie(sessions, adminSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	want := store.ReportFilter{
		From: "2026-01-01", To: "2026-01-31",
		Station: "line", Operator: "ali", OrderNo: "WO", ItemName: "widget",
		Limit: store.DefaultReportLimit,
	}
	if reports.lastFilter != want {
		t.Errorf("filter = %+v, want %+v", reports.lastFilter, want)
	}
}

func TestList_Admin_BadDate_Returns400(t *testing.T) {
	reports, sessions, router := newReportFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/reports?from=January", nil)
	req.AddCookie(sessionCookie(sessions, adminSession))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if reports.listed {
		t.Error("store must not be queried with an invalid date")
	}
}

func TestClear_AlwaysForbidden(t *testing.T) {
	reports, sessions, router := newReportFixture()

	for _, sess := range []model.SessionUser{operatorSession, adminSession} {
		req := jsonRequest(http.MethodPost, "/api/reports/clear", nil)
		req.AddCookie(sessionCookie(sessions, sess))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("role %s: status = %d, want 403", sess.Role, rr.Code)
		}
	}
	if reports.listed || len(reports.inserted) != 0 {
		t.Error("clear must never touch the report store")
	}
}
