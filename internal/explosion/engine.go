package explosion

import (
	"kitting/internal/catalog"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/shopspring/decimal"
)

// ExplodedItem is one concrete sub-item quantity derived from a
// principal quantity through the bill of relations.
type ExplodedItem struct {
	Kind     metadata.RelationKind `json:"kind"`
	Product  models.Product        `json:"product"`
	Quantity decimal.Decimal       `json:"quantity"`
	Unit     string                `json:"unit"`
}

// ExplosionOptions threads per-call flags down the explosion instead of
// ambient context. SkipKinds drops whole relation kinds, e.g. complements
// already created by an earlier receiving step.
type ExplosionOptions struct {
	SkipKinds map[metadata.RelationKind]bool
}

func (o ExplosionOptions) skips(kind metadata.RelationKind) bool {
	return o.SkipKinds != nil && o.SkipKinds[kind]
}

type Engine struct {
	catalog catalog.Catalog
}

func NewEngine(cat catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Explode converts a principal quantity into concrete sub-item
// quantities. Relation lists are honored only when their gating flag is
// set; each line quantity is scaled by the principal quantity and
// converted to the target product's native unit, half-up.
func (e *Engine) Explode(bill *models.BillOfRelations, qty decimal.Decimal, unit string, opts ExplosionOptions) ([]ExplodedItem, error) {
	principal, err := e.catalog.GetProduct(bill.ProductID)
	if err != nil {
		return nil, err
	}

	principalQty := qty
	if unit != principal.Unit {
		principalQty, err = e.catalog.Convert(qty, unit, principal.Unit)
		if err != nil {
			return nil, err
		}
	}

	var items []ExplodedItem
	for _, line := range bill.Lines() {
		if opts.skips(line.Kind) {
			continue
		}

		item, err := e.explodeLine(bill.ProductID, line, principalQty)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (e *Engine) explodeLine(principalID int, line models.RelationLine, principalQty decimal.Decimal) (ExplodedItem, error) {
	if line.TargetProductID == principalID {
		return ExplodedItem{}, custom_error.NewValidationError(
			"invalid configuration: product %d lists itself as a %s target", principalID, line.Kind)
	}

	target, err := e.catalog.GetProduct(line.TargetProductID)
	if err != nil {
		return ExplodedItem{}, custom_error.NewValidationError(
			"invalid configuration: %s target of product %d: %s", line.Kind, principalID, err.Error())
	}

	lineQty := line.QtyPerUnit.Mul(principalQty)
	if line.Unit != target.Unit {
		lineQty, err = e.catalog.Convert(lineQty, line.Unit, target.Unit)
		if err != nil {
			return ExplodedItem{}, err
		}
	}

	return ExplodedItem{
		Kind:     line.Kind,
		Product:  *target,
		Quantity: lineQty,
		Unit:     target.Unit,
	}, nil
}
