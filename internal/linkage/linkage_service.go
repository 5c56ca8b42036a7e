package linkage

import (
	"fmt"

	"kitting/internal/repository"
	"kitting/pkg/auditlog"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// linkRetries bounds the candidate re-fetch loop when a concurrent
// session consumes the candidate first.
const linkRetries = 3

type linkageRepository interface {
	GetUnit(id int) (*models.SerializedUnit, error)
	GetUnitsBySerial(serial string) ([]models.SerializedUnit, error)
	CandidatePool(principal *models.SerializedUnit, targetProductID int) ([]models.SerializedUnit, error)
	Insert(tx *goqu.TxDatabase, line models.SupplyLine, autoLinked bool) (*models.SupplyLine, error)
	Delete(lineID int) error
	ExistsPair(tx *goqu.TxDatabase, principalID, relatedID int) (bool, error)
	LinesByPrincipal(principalID int) ([]models.SupplyLine, error)
	LinkedSummary(principalID int) ([]models.LinkedItem, error)
}

type LinkageService struct {
	linkageRepo linkageRepository
	transactor  repository.Transactor
	auditLog    *auditlog.Auditlog
	logger      *zap.Logger
}

func NewLinkageService(linkageRepo linkageRepository, transactor repository.Transactor, auditLog *auditlog.Auditlog, logger *zap.Logger) *LinkageService {
	return &LinkageService{
		linkageRepo: linkageRepo,
		transactor:  transactor,
		auditLog:    auditLog,
		logger:      logger,
	}
}

// CandidatePool returns the units eligible to be linked under the
// principal for the given target product. Location matching is part of
// the pool query but is advisory only; Link does not enforce it.
func (s *LinkageService) CandidatePool(principalID, targetProductID int) ([]models.SerializedUnit, error) {
	principal, err := s.linkageRepo.GetUnit(principalID)
	if err != nil {
		return nil, err
	}

	return s.linkageRepo.CandidatePool(principal, targetProductID)
}

// Link creates one edge principal -> related. A unit already related
// anywhere, or already related under this principal, fails with
// DuplicateAssignmentError, which callers should treat as retryable.
func (s *LinkageService) Link(principalID, relatedID int, kind metadata.SupplyKind, qty decimal.Decimal, unit string) (*models.SupplyLine, error) {
	if principalID == relatedID {
		return nil, custom_error.NewValidationError("unit %d cannot be linked to itself", principalID)
	}
	if !qty.IsPositive() {
		return nil, custom_error.NewValidationError("link quantity must be positive, got %s", qty)
	}
	relationKind, ok := kind.RelationKind()
	if !ok {
		return nil, custom_error.NewValidationError("kind %s is not linkable", kind)
	}
	// Stored edges carry the folded kind; monitor and ups land as peripheral.
	kind = relationKind.SupplyKind()

	related, err := s.linkageRepo.GetUnit(relatedID)
	if err != nil {
		return nil, err
	}
	if unit == "" {
		unit = related.Product.Unit
	}

	var created *models.SupplyLine
	err = s.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		created, err = s.linkageRepo.Insert(tx, models.SupplyLine{
			PrincipalUnitID: principalID,
			RelatedUnitID:   relatedID,
			Kind:            kind,
			Qty:             qty,
			Unit:            unit,
			HasCost:         true,
		}, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	go s.auditLog.Log(
		"link",
		map[string]interface{}{
			"principal_unit_id": principalID,
			"related_unit_id":   relatedID,
			"kind":              kind,
		},
		created,
	)

	return created, nil
}

// LinkNextCandidate picks a unit from the candidate pool and links it.
// When a concurrent session takes the candidate first the commit fails
// with DuplicateAssignmentError; the pool is re-fetched and the link is
// retried a bounded number of times.
func (s *LinkageService) LinkNextCandidate(principalID, targetProductID int, kind metadata.SupplyKind) (*models.SupplyLine, error) {
	for attempt := 0; attempt < linkRetries; attempt++ {
		pool, err := s.CandidatePool(principalID, targetProductID)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, custom_error.NewOperatorError("no candidate serial available for product %d", targetProductID)
		}

		candidate := pool[0]
		line, err := s.Link(principalID, candidate.ID, kind, decimal.NewFromInt(1), candidate.Product.Unit)
		if err != nil {
			if custom_error.IsDuplicateAssignment(err) {
				s.logger.Warn("candidate consumed concurrently, retrying",
					zap.Int("principal_unit_id", principalID),
					zap.Int("candidate_unit_id", candidate.ID),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return nil, err
		}

		return line, nil
	}

	return nil, custom_error.NewOperatorError("no candidate serial could be secured for product %d after %d attempts", targetProductID, linkRetries)
}

func (s *LinkageService) Unlink(lineID int) error {
	if err := s.linkageRepo.Delete(lineID); err != nil {
		return err
	}

	go s.auditLog.Log(
		"unlink",
		map[string]interface{}{"supply_line_id": lineID},
		&models.SupplyLine{ID: lineID},
	)

	return nil
}

// FullMesh links every unit in the set to every other, both directions,
// kind component, qty 1. Used for units across distinct products sharing
// one external serial string. Existing pairs are skipped, so the result
// is a complete directed graph of n*(n-1) edges.
func (s *LinkageService) FullMesh(unitIDs []int) ([]models.SupplyLine, error) {
	if len(unitIDs) < 2 {
		return nil, custom_error.NewValidationError("full mesh requires at least two units, got %d", len(unitIDs))
	}

	units := make([]*models.SerializedUnit, 0, len(unitIDs))
	for _, id := range unitIDs {
		unit, err := s.linkageRepo.GetUnit(id)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	var created []models.SupplyLine
	err := s.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		for _, a := range units {
			for _, b := range units {
				if a.ID == b.ID {
					continue
				}

				exists, err := s.linkageRepo.ExistsPair(tx, a.ID, b.ID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}

				line, err := s.linkageRepo.Insert(tx, models.SupplyLine{
					PrincipalUnitID: a.ID,
					RelatedUnitID:   b.ID,
					Kind:            metadata.SupplyComponent,
					Qty:             decimal.NewFromInt(1),
					Unit:            b.Product.Unit,
					HasCost:         false,
				}, true)
				if err != nil {
					return fmt.Errorf("failed to mesh units %d -> %d: %w", a.ID, b.ID, err)
				}

				created = append(created, *line)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// MeshBySerial looks up all units carrying the external serial string
// and builds the full mesh across them.
func (s *LinkageService) MeshBySerial(serial string) ([]models.SupplyLine, error) {
	units, err := s.linkageRepo.GetUnitsBySerial(serial)
	if err != nil {
		return nil, err
	}
	if len(units) < 2 {
		return nil, custom_error.NewOperatorError("serial %s matches %d unit(s); nothing to mesh", serial, len(units))
	}

	ids := make([]int, 0, len(units))
	for _, unit := range units {
		ids = append(ids, unit.ID)
	}

	return s.FullMesh(ids)
}

func (s *LinkageService) LinkedSummary(principalID int) []models.LinkedItem {
	items, err := s.linkageRepo.LinkedSummary(principalID)
	if err != nil {
		// Display projections must not block unrelated operations.
		s.logger.Warn("linked summary degraded to empty", zap.Int("principal_unit_id", principalID), zap.Error(err))
		return []models.LinkedItem{}
	}
	return items
}

func (s *LinkageService) Lines(principalID int) ([]models.SupplyLine, error) {
	return s.linkageRepo.LinesByPrincipal(principalID)
}
