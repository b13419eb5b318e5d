package model

import "time"

// Report is one submission of good/bad unit counts against an order.
// Rows are insert-only; there is no update or delete path.
type Report struct {
	ID         int64     `json:"id"`
	Station    string    `json:"station"`
	OrderNo    string    `json:"order_no"`
	ItemName   string    `json:"item_name"`
	ItemNo     string    `json:"item_no"`
	Operator   string    `json:"operator"`
	GoodQty    int64     `json:"good_qty"`
	BadQty     int64     `json:"bad_qty"`
	ReportTime time.Time `json:"report_time"`
}
