package purchase

import (
	"fmt"

	"kitting/internal/catalog"
	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
)

type bufferRepository interface {
	GetBuffer(orderLineID int) (*models.PurchaseBuffer, error)
	MarkFinalized(tx *goqu.TxDatabase, bufferID int) error
}

type billRepository interface {
	GetBill(productID int) (*models.BillOfRelations, error)
	InsertLine(tx *goqu.TxDatabase, line models.RelationLine) (int, error)
	IncrementLineQty(tx *goqu.TxDatabase, lineID int, delta decimal.Decimal) error
}

// MergeService folds a confirmed order line's purchase buffer into the
// principal's persistent bill of relations. The merge happens exactly
// once; a finalized buffer presented again is rejected without touching
// the bill.
type MergeService struct {
	bufferRepo bufferRepository
	billRepo   billRepository
	transactor repository.Transactor
	catalog    catalog.Catalog
}

func NewMergeService(bufferRepo bufferRepository, billRepo billRepository, transactor repository.Transactor, cat catalog.Catalog) *MergeService {
	return &MergeService{
		bufferRepo: bufferRepo,
		billRepo:   billRepo,
		transactor: transactor,
		catalog:    cat,
	}
}

// ConfirmOrderLine merges the order line's buffer into the bill of
// relations and marks the buffer finalized, all in one transaction.
func (s *MergeService) ConfirmOrderLine(orderLineID int) error {
	buffer, err := s.bufferRepo.GetBuffer(orderLineID)
	if err != nil {
		return err
	}

	if buffer.Finalized {
		return custom_error.NewOperatorError("purchase buffer for order line %d is already finalized", orderLineID)
	}

	bill, err := s.billRepo.GetBill(buffer.ProductID)
	if err != nil {
		return err
	}

	return s.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		for _, line := range buffer.Lines {
			if err := s.mergeLine(tx, bill, line); err != nil {
				return err
			}
		}

		if err := s.bufferRepo.MarkFinalized(tx, buffer.ID); err != nil {
			return err
		}

		return nil
	})
}

func (s *MergeService) mergeLine(tx *goqu.TxDatabase, bill *models.BillOfRelations, line models.BufferLine) error {
	kind, ok := line.Kind.RelationKind()
	if !ok {
		return custom_error.NewValidationError("buffer line kind %s has no relation list", line.Kind)
	}

	if line.TargetProductID == bill.ProductID {
		return custom_error.NewValidationError("product %d must not list itself as a relation target", bill.ProductID)
	}
	if !line.Qty.IsPositive() {
		return custom_error.NewValidationError("buffer quantity must be positive, got %s", line.Qty)
	}

	target, err := s.catalog.GetProduct(line.TargetProductID)
	if err != nil {
		return err
	}
	if !models.ClassificationAllows(target.Classification, kind) {
		return custom_error.NewValidationError("product %d is classified %s and cannot appear on the %s list", target.ID, target.Classification, kind)
	}

	if existing := bill.Find(kind, line.TargetProductID); existing != nil {
		delta := line.Qty
		if line.Unit != existing.Unit {
			var err error
			delta, err = s.catalog.Convert(line.Qty, line.Unit, existing.Unit)
			if err != nil {
				return err
			}
		}

		if err := s.billRepo.IncrementLineQty(tx, existing.ID, delta); err != nil {
			return err
		}
		existing.QtyPerUnit = existing.QtyPerUnit.Add(delta)
		return nil
	}

	newLine := models.RelationLine{
		PrincipalID:     bill.ProductID,
		Kind:            kind,
		TargetProductID: line.TargetProductID,
		QtyPerUnit:      line.Qty,
		Unit:            line.Unit,
	}

	lineID, err := s.billRepo.InsertLine(tx, newLine)
	if err != nil {
		return fmt.Errorf("failed to append relation line during merge: %w", err)
	}
	newLine.ID = lineID

	bill.Append(newLine)
	return nil
}
