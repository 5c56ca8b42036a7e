package models

import (
	"kitting/pkg/metadata"

	"github.com/shopspring/decimal"
)

type Movement struct {
	ID               int                     `json:"id" db:"id"`
	ProductID        int                     `json:"product_id" db:"product_id"`
	PlannedQty       decimal.Decimal         `json:"planned_qty" db:"planned_qty"`
	Unit             string                  `json:"unit" db:"unit"`
	SourceLocationID int                     `json:"source_location_id" db:"source_location_id"`
	DestLocationID   int                     `json:"dest_location_id" db:"dest_location_id"`
	SupplyKind       metadata.SupplyKind     `json:"supply_kind" db:"supply_kind"`
	ParentMovementID *int                    `json:"parent_movement_id,omitempty" db:"parent_movement_id"`
	Status           metadata.MovementStatus `json:"status" db:"status"`
}

func (m *Movement) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   m.ID,
		ResourceType: "movement",
	}
}

// MovementLine is the unit-level record under a movement. SerializedUnitID
// is nil for quantity-only lines.
type MovementLine struct {
	ID               int             `json:"id" db:"id"`
	MovementID       int             `json:"movement_id" db:"movement_id"`
	ProductID        int             `json:"product_id" db:"product_id"`
	SerializedUnitID *int            `json:"serialized_unit_id,omitempty" db:"serialized_unit_id"`
	Quantity         decimal.Decimal `json:"quantity" db:"quantity"`
}
