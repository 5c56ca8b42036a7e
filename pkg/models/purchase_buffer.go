package models

import (
	"kitting/pkg/metadata"

	"github.com/shopspring/decimal"
)

// PurchaseBuffer is the per-order-line override of a bill of relations.
// It is merged into the persistent bill exactly once, on order
// confirmation, and carries a finalized flag so a second merge is a
// no-op.
type PurchaseBuffer struct {
	ID          int          `json:"id" db:"id"`
	OrderLineID int          `json:"order_line_id" db:"order_line_id"`
	ProductID   int          `json:"product_id" db:"principal_product_id"`
	Finalized   bool         `json:"finalized" db:"finalized"`
	Lines       []BufferLine `json:"lines"`
}

type BufferLine struct {
	ID              int                 `json:"id" db:"id"`
	BufferID        int                 `json:"buffer_id" db:"buffer_id"`
	Kind            metadata.SupplyKind `json:"kind" db:"kind"`
	TargetProductID int                 `json:"target_product_id" db:"target_product_id"`
	Qty             decimal.Decimal     `json:"qty" db:"qty"`
	Unit            string              `json:"unit" db:"unit"`
}
