package relations

import (
	"fmt"

	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type RelationsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *RelationsRepository {
	return &RelationsRepository{
		repository: r,
	}
}

// GetBill loads the principal's bill of relations: flags row plus the
// relation lines grouped per kind. A product without a bill row gets a
// zero-valued bill with explosion disabled.
func (r *RelationsRepository) GetBill(productID int) (*models.BillOfRelations, error) {
	query := r.repository.GoquDBWrapper.
		From("bills_of_relations").
		Select(
			"product_id", "is_composite", "use_peripherals", "use_complements",
			"cost_allocation_policy", "parent_valuation_policy", "receive_parent_stock",
		).
		Where(goqu.Ex{"product_id": productID})

	var flat models.FlatBillRecord
	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("unable to select bill of relations for product %d: %w", productID, err)
	}
	if !found {
		return &models.BillOfRelations{ProductID: productID}, nil
	}

	bill := models.BillOfRelations{
		ProductID:          flat.ProductID,
		IsComposite:        flat.IsComposite,
		UsePeripherals:     flat.UsePeripherals,
		UseComplements:     flat.UseComplements,
		AllocationPolicy:   metadata.AllocationPolicy(flat.AllocationPolicy),
		ParentValuation:    metadata.ParentValuation(flat.ParentValuation),
		ReceiveParentStock: flat.ReceiveParentStock,
	}

	lines, err := r.getLines(productID)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		switch line.Kind {
		case metadata.KindComponent:
			bill.Components = append(bill.Components, line)
		case metadata.KindPeripheral:
			bill.Peripherals = append(bill.Peripherals, line)
		case metadata.KindComplement:
			bill.Complements = append(bill.Complements, line)
		}
	}

	return &bill, nil
}

func (r *RelationsRepository) getLines(productID int) ([]models.RelationLine, error) {
	query := r.repository.GoquDBWrapper.
		From("relation_lines").
		Select("id", "principal_product_id", "kind", "target_product_id", "qty_per_unit", "unit").
		Where(goqu.Ex{"principal_product_id": productID}).
		Order(goqu.I("id").Asc())

	var lines []models.RelationLine
	if err := query.Executor().ScanStructs(&lines); err != nil {
		return nil, fmt.Errorf("unable to select relation lines for product %d: %w", productID, err)
	}

	return lines, nil
}

func (r *RelationsRepository) InsertLine(tx *goqu.TxDatabase, line models.RelationLine) (int, error) {
	query := tx.Insert("relation_lines").
		Rows(goqu.Record{
			"principal_product_id": line.PrincipalID,
			"kind":                 line.Kind,
			"target_product_id":    line.TargetProductID,
			"qty_per_unit":         line.QtyPerUnit,
			"unit":                 line.Unit,
		}).
		Returning("id")

	var lineID int
	if _, err := query.Executor().ScanVal(&lineID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return 0, custom_error.WrapDBError("failed to insert relation line", string(pqErr.Code), pqErr.Constraint)
		}
		return 0, fmt.Errorf("failed to insert relation line: %w", err)
	}

	return lineID, nil
}

func (r *RelationsRepository) IncrementLineQty(tx *goqu.TxDatabase, lineID int, delta decimal.Decimal) error {
	query := tx.Update("relation_lines").
		Set(goqu.Record{
			"qty_per_unit": goqu.L("qty_per_unit + ?", delta),
		}).
		Where(goqu.Ex{"id": lineID})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to increment relation line %d: %w", lineID, err)
	}

	return nil
}

func (r *RelationsRepository) DeleteLine(lineID int) error {
	query := r.repository.GoquDBWrapper.
		Delete("relation_lines").
		Where(goqu.Ex{"id": lineID})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to delete relation line %d: %w", lineID, err)
	}

	return nil
}

func (r *RelationsRepository) UpsertBillFlags(bill models.BillOfRelations) error {
	query := r.repository.GoquDBWrapper.
		Insert("bills_of_relations").
		Rows(goqu.Record{
			"product_id":              bill.ProductID,
			"is_composite":            bill.IsComposite,
			"use_peripherals":         bill.UsePeripherals,
			"use_complements":         bill.UseComplements,
			"cost_allocation_policy":  bill.AllocationPolicy,
			"parent_valuation_policy": bill.ParentValuation,
			"receive_parent_stock":    bill.ReceiveParentStock,
		}).
		OnConflict(
			goqu.DoUpdate(
				"product_id",
				goqu.Record{
					"is_composite":            bill.IsComposite,
					"use_peripherals":         bill.UsePeripherals,
					"use_complements":         bill.UseComplements,
					"cost_allocation_policy":  bill.AllocationPolicy,
					"parent_valuation_policy": bill.ParentValuation,
					"receive_parent_stock":    bill.ReceiveParentStock,
				},
			),
		)

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to upsert bill flags for product %d: %w", bill.ProductID, err)
	}

	return nil
}
