package models

import (
	"kitting/pkg/metadata"

	"github.com/shopspring/decimal"
)

// RelationLine is one row of a product's bill of relations: how many of
// the target product accompany one unit of the principal.
type RelationLine struct {
	ID              int                   `json:"id" db:"id"`
	PrincipalID     int                   `json:"principal_id" db:"principal_product_id"`
	Kind            metadata.RelationKind `json:"kind" db:"kind"`
	TargetProductID int                   `json:"target_product_id" db:"target_product_id"`
	QtyPerUnit      decimal.Decimal       `json:"qty_per_unit" db:"qty_per_unit"`
	Unit            string                `json:"unit" db:"unit"`
}

// BillOfRelations is the full relation definition of one principal
// product, split per kind, plus the flags gating and pricing explosion.
type BillOfRelations struct {
	ProductID          int                      `json:"product_id"`
	IsComposite        bool                     `json:"is_composite"`
	UsePeripherals     bool                     `json:"use_peripherals"`
	UseComplements     bool                     `json:"use_complements"`
	AllocationPolicy   metadata.AllocationPolicy `json:"cost_allocation_policy"`
	ParentValuation    metadata.ParentValuation  `json:"parent_valuation_policy"`
	ReceiveParentStock bool                     `json:"receive_parent_stock"`
	Components         []RelationLine           `json:"components"`
	Peripherals        []RelationLine           `json:"peripherals"`
	Complements        []RelationLine           `json:"complements"`
}

// Lines returns the relation lists honored by the bill's flags, in
// component, peripheral, complement order.
func (b *BillOfRelations) Lines() []RelationLine {
	var lines []RelationLine
	if b.IsComposite {
		lines = append(lines, b.Components...)
	}
	if b.UsePeripherals {
		lines = append(lines, b.Peripherals...)
	}
	if b.UseComplements {
		lines = append(lines, b.Complements...)
	}
	return lines
}

// Find locates the relation line matching a (kind, target) pair. The
// buffer merge increments it in place when present.
func (b *BillOfRelations) Find(kind metadata.RelationKind, targetProductID int) *RelationLine {
	list := b.listFor(kind)
	for i := range list {
		if list[i].TargetProductID == targetProductID {
			return &list[i]
		}
	}
	return nil
}

// Append adds a line to the list its kind belongs to.
func (b *BillOfRelations) Append(line RelationLine) {
	switch line.Kind {
	case metadata.KindComponent:
		b.Components = append(b.Components, line)
	case metadata.KindPeripheral:
		b.Peripherals = append(b.Peripherals, line)
	case metadata.KindComplement:
		b.Complements = append(b.Complements, line)
	}
}

func (b *BillOfRelations) listFor(kind metadata.RelationKind) []RelationLine {
	switch kind {
	case metadata.KindComponent:
		return b.Components
	case metadata.KindPeripheral:
		return b.Peripherals
	case metadata.KindComplement:
		return b.Complements
	default:
		return nil
	}
}

type FlatBillRecord struct {
	ProductID          int    `db:"product_id"`
	IsComposite        bool   `db:"is_composite"`
	UsePeripherals     bool   `db:"use_peripherals"`
	UseComplements     bool   `db:"use_complements"`
	AllocationPolicy   string `db:"cost_allocation_policy"`
	ParentValuation    string `db:"parent_valuation_policy"`
	ReceiveParentStock bool   `db:"receive_parent_stock"`
}
