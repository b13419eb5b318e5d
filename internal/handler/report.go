package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	appmw "github.com/prodline/internal/middleware"
	"github.com/prodline/internal/model"
	"github.com/prodline/internal/store"
)

const operatorListLimit = 2000

type reportStore interface {
	Insert(ctx context.Context, r *model.Report) error
	List(ctx context.Context, f store.ReportFilter) ([]model.Report, error)
}

// ReportHandler handles report submission and listing.
type ReportHandler struct {
	BaseHandler
	reports reportStore
}

func NewReportHandler(logger *slog.Logger, reports reportStore) *ReportHandler {
	return &ReportHandler{BaseHandler: BaseHandler{Logger: logger}, reports: reports}
}

// Submit appends one report row. Station and operator always come from the
// session snapshot, never from the request body, so a caller cannot
// attribute work to someone else.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := appmw.SessionFromContext(r.Context())
	if !ok {
		h.failResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req struct {
		OrderNo    string      `json:"orderNo"`
		ItemName   string      `json:"itemName"`
		ItemNo     string      `json:"itemNo"`
		GoodNumber json.Number `json:"goodNumber"`
		BadNumber  json.Number `json:"badNumber"`
	}
	if err := h.readJSON(w, r, &req); err != nil {
		h.failResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.OrderNo = strings.TrimSpace(req.OrderNo)
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.ItemNo = strings.TrimSpace(req.ItemNo)
	if req.OrderNo == "" || req.ItemName == "" || req.ItemNo == "" {
		h.failResponse(w, r, http.StatusBadRequest, "orderNo, itemName and itemNo are required")
		return
	}

	goodQty, err := parseQty(req.GoodNumber)
	if err != nil {
		h.failResponse(w, r, http.StatusBadRequest, "goodNumber must be a non-negative number")
		return
	}
	badQty, err := parseQty(req.BadNumber)
	if err != nil {
		h.failResponse(w, r, http.StatusBadRequest, "badNumber must be a non-negative number")
		return
	}

	report := &model.Report{
		Station:  sess.Station,
		OrderNo:  req.OrderNo,
		ItemName: req.ItemName,
		ItemNo:   req.ItemNo,
		Operator: sess.Operator,
		GoodQty:  goodQty,
		BadQty:   badQty,
	}
	if err := h.reports.Insert(r.Context(), report); err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.okResponse(w, r, nil)
}

// parseQty accepts a non-negative finite number. Zero is valid. Values at or
// above 1<<63 are rejected before the int64 conversion, which would otherwise
// wrap them negative.
func parseQty(n json.Number) (int64, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f < 0 || f >= 1<<63 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("quantity out of range")
	}
	return int64(f), nil
}

// List returns report rows. Admins may filter; everyone else is locked to
// their own operator's rows from today, whatever query parameters they send.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := appmw.SessionFromContext(r.Context())
	if !ok {
		h.failResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var filter store.ReportFilter
	if sess.Role == model.RoleAdmin {
		q := r.URL.Query()
		from, err := parseDate(q.Get("from"))
		if err != nil {
			h.failResponse(w, r, http.StatusBadRequest, "from must be a date of the form 2006-01-02")
			return
		}
		to, err := parseDate(q.Get("to"))
		if err != nil {
			h.failResponse(w, r, http.StatusBadRequest, "to must be a date of the form 2006-01-02")
			return
		}
		filter = store.ReportFilter{
			From:     from,
			To:       to,
			Station:  q.Get("station"),
			Operator: q.Get("operator"),
			OrderNo:  q.Get("order_no"),
			ItemName: q.Get("item_name"),
			Limit:    store.DefaultReportLimit,
		}
	} else {
		filter = store.ReportFilter{
			OperatorExact: sess.Operator,
			Today:         true,
			Limit:         operatorListLimit,
		}
	}

	rows, err := h.reports.List(r.Context(), filter)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.okResponse(w, r, envelope{"rows": rows})
}

// Clear is permanently disabled: report rows are never deleted through the
// API, regardless of caller role.
func (h *ReportHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.failResponse(w, r, http.StatusForbidden, "clearing reports is disabled")
}

func parseDate(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return "", err
	}
	return v, nil
}
