package models

import (
	"kitting/pkg/metadata"

	"github.com/shopspring/decimal"
)

// Classification tags from the external catalog. The core reads them to
// sanity-check buffer lines; it never writes products.
const (
	ClassNone       = "none"
	ClassComponent  = "component"
	ClassPeripheral = "peripheral"
	ClassComplement = "complement"
	ClassMonitor    = "monitor"
	ClassUPS        = "ups"
)

// ClassificationAllows reports whether a product carrying the given
// catalog classification may be the target of a relation line of the
// given kind. Monitor and UPS products belong on the peripheral list;
// unclassified products fit anywhere.
func ClassificationAllows(classification string, kind metadata.RelationKind) bool {
	switch classification {
	case ClassComponent:
		return kind == metadata.KindComponent
	case ClassPeripheral, ClassMonitor, ClassUPS:
		return kind == metadata.KindPeripheral
	case ClassComplement:
		return kind == metadata.KindComplement
	default:
		return true
	}
}

type Product struct {
	ID             int             `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Unit           string          `json:"unit" db:"unit"`
	StandardCost   decimal.Decimal `json:"standard_cost" db:"standard_cost"`
	Classification string          `json:"classification" db:"classification"`
}

type Unit struct {
	Name      string          `json:"name" db:"name"`
	Factor    decimal.Decimal `json:"factor" db:"factor"`
	Precision int32           `json:"precision" db:"precision"`
}
