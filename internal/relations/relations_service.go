package relations

import (
	"kitting/internal/catalog"
	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type RelationsService struct {
	relationsRepo *RelationsRepository
	transactor    repository.Transactor
	catalog       catalog.Catalog
}

func NewRelationsService(relationsRepo *RelationsRepository, transactor repository.Transactor, cat catalog.Catalog) *RelationsService {
	return &RelationsService{
		relationsRepo: relationsRepo,
		transactor:    transactor,
		catalog:       cat,
	}
}

func (s *RelationsService) GetBill(productID int) (*models.BillOfRelations, error) {
	return s.relationsRepo.GetBill(productID)
}

// AddLine validates and appends one relation line to a principal's bill.
func (s *RelationsService) AddLine(line models.RelationLine) (int, error) {
	if err := s.validateLine(line); err != nil {
		return 0, err
	}

	var lineID int
	err := s.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		lineID, err = s.relationsRepo.InsertLine(tx, line)
		return err
	})
	if err != nil {
		return 0, err
	}

	return lineID, nil
}

func (s *RelationsService) RemoveLine(lineID int) error {
	return s.relationsRepo.DeleteLine(lineID)
}

func (s *RelationsService) SetBillFlags(bill models.BillOfRelations) error {
	if _, err := s.catalog.GetProduct(bill.ProductID); err != nil {
		return err
	}
	return s.relationsRepo.UpsertBillFlags(bill)
}

func (s *RelationsService) validateLine(line models.RelationLine) error {
	if line.TargetProductID == line.PrincipalID {
		return custom_error.NewValidationError("product %d must not list itself as a relation target", line.PrincipalID)
	}
	if !line.QtyPerUnit.IsPositive() {
		return custom_error.NewValidationError("relation quantity must be positive, got %s", line.QtyPerUnit)
	}
	target, err := s.catalog.GetProduct(line.TargetProductID)
	if err != nil {
		return err
	}
	if !models.ClassificationAllows(target.Classification, line.Kind) {
		return custom_error.NewValidationError("product %d is classified %s and cannot appear on the %s list", target.ID, target.Classification, line.Kind)
	}
	if _, err := s.catalog.GetUnit(line.Unit); err != nil {
		return err
	}
	return nil
}
