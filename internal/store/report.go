package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prodline/internal/model"
)

// DefaultReportLimit caps unfiltered/admin report listings.
const DefaultReportLimit = 5000

type ReportStore struct {
	pool *pgxpool.Pool
}

func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Insert appends a report row with a server-assigned timestamp and fills in
// the generated id and report_time.
func (s *ReportStore) Insert(ctx context.Context, r *model.Report) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reports (station, order_no, item_name, item_no, operator, good_qty, bad_qty, report_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING id, report_time`,
		r.Station, r.OrderNo, r.ItemName, r.ItemNo, r.Operator, r.GoodQty, r.BadQty,
	).Scan(&r.ID, &r.ReportTime)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ReportFilter describes an ANDed set of optional report predicates.
// Station/Operator/OrderNo/ItemName are case-insensitive substring matches;
// OperatorExact is an exact match; From/To are inclusive bounds on the date
// part of report_time, of the form "2006-01-02". Today restricts rows to the
// database's current date, so the day boundary follows one clock regardless
// of the application server's timezone.
type ReportFilter struct {
	From          string
	To            string
	Today         bool
	Station       string
	Operator      string
	OperatorExact string
	OrderNo       string
	ItemName      string
	Limit         int
}

// buildReportQuery assembles the SELECT from an ordered list of
// (predicate clause, bound argument) pairs built from present-only fields.
// User input is only ever bound, never interpolated.
func buildReportQuery(f ReportFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.From != "" {
		add("report_time::date >= $%d::date", f.From)
	}
	if f.To != "" {
		add("report_time::date <= $%d::date", f.To)
	}
	if f.Today {
		clauses = append(clauses, "report_time::date = CURRENT_DATE")
	}
	if f.Station != "" {
		add("station ILIKE $%d", contains(f.Station))
	}
	if f.Operator != "" {
		add("operator ILIKE $%d", contains(f.Operator))
	}
	if f.OperatorExact != "" {
		add("operator = $%d", f.OperatorExact)
	}
	if f.OrderNo != "" {
		add("order_no ILIKE $%d", contains(f.OrderNo))
	}
	if f.ItemName != "" {
		add("item_name ILIKE $%d", contains(f.ItemName))
	}

	query := `SELECT id, station, order_no, item_name, item_no, operator, good_qty, bad_qty, report_time FROM reports`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args))

	return query, args
}

// contains builds a literal ILIKE contains-pattern: LIKE metacharacters in
// the input are escaped so they match themselves.
func contains(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns reports matching the filter, newest-first.
func (s *ReportStore) List(ctx context.Context, f ReportFilter) ([]model.Report, error) {
	query, args := buildReportQuery(f)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(&r.ID, &r.Station, &r.OrderNo, &r.ItemName, &r.ItemNo,
			&r.Operator, &r.GoodQty, &r.BadQty, &r.ReportTime); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
