package model

// Order is a manufacturing work order. Rows are populated by an upstream
// process; this service only reads them.
type Order struct {
	OrderNo  string `json:"order_no"`
	ItemName string `json:"item_name"`
	ItemNo   string `json:"item_no"`
	OrderQty int64  `json:"order_qty"`
}
