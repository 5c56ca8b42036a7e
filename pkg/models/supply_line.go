package models

import (
	"kitting/pkg/metadata"

	"github.com/shopspring/decimal"
)

// SupplyLine is one edge of the serial linkage graph: a specific related
// serialized unit assigned to a specific principal serialized unit. A
// unit may be the related end of at most one edge, graph wide.
type SupplyLine struct {
	ID              int                 `json:"id" db:"id"`
	PrincipalUnitID int                 `json:"principal_unit_id" db:"principal_unit_id"`
	RelatedUnitID   int                 `json:"related_unit_id" db:"related_unit_id"`
	Kind            metadata.SupplyKind `json:"kind" db:"kind"`
	Qty             decimal.Decimal     `json:"qty" db:"qty"`
	Unit            string              `json:"unit" db:"unit"`
	HasCost         bool                `json:"has_cost" db:"has_cost"`
}

func (l *SupplyLine) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   l.ID,
		ResourceType: "supply_line",
	}
}

// LinkedItem is the read-time projection of one linked sub-unit for
// display summaries. It degrades to zero values when the underlying
// relation is gone.
type LinkedItem struct {
	Serial      string              `json:"serial" db:"serial"`
	ProductName string              `json:"product_name" db:"product_name"`
	Kind        metadata.SupplyKind `json:"kind" db:"kind"`
	Qty         decimal.Decimal     `json:"qty" db:"qty"`
}
