package movements

import (
	"errors"

	"kitting/internal/integrations/ledger"
	"kitting/internal/repository"
	"kitting/pkg/auditlog"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// Ledger is the slice of the external ledger the movements workflow
// consumes.
type Ledger interface {
	CreateMovement(movement models.Movement) (int, error)
	CommitTransfer(movementIDs []int) error
}

type MovementsService struct {
	movementsRepo movementsRepository
	consolidator  *Consolidator
	generator     *Generator
	ledger        Ledger
	transactor    repository.Transactor
	auditLog      *auditlog.Auditlog
	logger        *zap.Logger
}

func NewMovementsService(
	movementsRepo movementsRepository,
	consolidator *Consolidator,
	generator *Generator,
	ledgerClient Ledger,
	transactor repository.Transactor,
	auditLog *auditlog.Auditlog,
	logger *zap.Logger,
) *MovementsService {
	return &MovementsService{
		movementsRepo: movementsRepo,
		consolidator:  consolidator,
		generator:     generator,
		ledger:        ledgerClient,
		transactor:    transactor,
		auditLog:      auditLog,
		logger:        logger,
	}
}

func (s *MovementsService) GetMovement(id int) (*models.Movement, error) {
	return s.movementsRepo.GetMovement(id)
}

func (s *MovementsService) ListMovements(conditions repository.QueryBuilder) ([]models.Movement, error) {
	return s.movementsRepo.GetMovementsBy(conditions)
}

func (s *MovementsService) GetLines(movementID int) ([]models.MovementLine, error) {
	return s.movementsRepo.ListLines(movementID)
}

func (s *MovementsService) CreateMovement(movement models.Movement) (int, error) {
	if !movement.PlannedQty.IsPositive() {
		return 0, custom_error.NewValidationError("planned quantity must be positive, got %s", movement.PlannedQty)
	}
	if movement.SourceLocationID == movement.DestLocationID {
		return 0, custom_error.NewValidationError("source and destination location cannot be the same")
	}

	movement.Status = metadata.StatusDraft

	var movementID int
	err := s.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		movementID, err = s.movementsRepo.InsertMovement(tx, movement)
		return err
	})
	if err != nil {
		return 0, err
	}

	return movementID, nil
}

func (s *MovementsService) AddLine(line models.MovementLine) (int, error) {
	if !line.Quantity.IsPositive() {
		return 0, custom_error.NewValidationError("line quantity must be positive, got %s", line.Quantity)
	}
	if _, err := s.movementsRepo.GetMovement(line.MovementID); err != nil {
		return 0, err
	}

	var lineID int
	err := s.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		lineID, err = s.movementsRepo.InsertLine(tx, line)
		return err
	})
	if err != nil {
		return 0, err
	}

	return lineID, nil
}

func (s *MovementsService) Transition(movementID int, next metadata.MovementStatus) error {
	movement, err := s.movementsRepo.GetMovement(movementID)
	if err != nil {
		return err
	}

	if !movement.Status.CanTransitionTo(next) {
		return custom_error.NewOperatorError("movement %d cannot go from %s to %s", movementID, movement.Status, next)
	}

	if err := s.movementsRepo.UpdateStatus(movementID, next); err != nil {
		return err
	}

	go s.auditLog.Log(
		string(next),
		map[string]interface{}{"from": movement.Status, "to": next},
		movement,
	)

	return nil
}

func (s *MovementsService) Consolidate(movementID int) (int, error) {
	removed, err := s.consolidator.Consolidate(movementID)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		go s.auditLog.Log(
			"consolidate",
			map[string]interface{}{"lines_removed": removed},
			&models.Movement{ID: movementID},
		)
	}

	return removed, nil
}

// CommitTransfer consolidates every movement in the set and submits the
// transfer to the ledger. Every movement must be one transition away from
// done; a finalized or cancelled movement must never reach the ledger a
// second time. A duplicate-serial rejection after consolidation means the
// dedup missed something; it aborts the transfer and is logged for
// investigation.
func (s *MovementsService) CommitTransfer(movementIDs []int) error {
	for _, id := range movementIDs {
		movement, err := s.movementsRepo.GetMovement(id)
		if err != nil {
			return err
		}
		if !movement.Status.CanTransitionTo(metadata.StatusDone) {
			return custom_error.NewOperatorError("movement %d is %s and cannot be committed", id, movement.Status)
		}
	}

	for _, id := range movementIDs {
		if _, err := s.Consolidate(id); err != nil {
			return err
		}
	}

	if err := s.ledger.CommitTransfer(movementIDs); err != nil {
		if errors.Is(err, ledger.ErrDuplicateSerial) {
			s.logger.Error("ledger rejected consolidated transfer",
				zap.Ints("movement_ids", movementIDs),
				zap.Error(err),
			)
		}
		return err
	}

	for _, id := range movementIDs {
		if err := s.movementsRepo.UpdateStatus(id, metadata.StatusDone); err != nil {
			return err
		}
	}

	return nil
}

// Register mirrors a draft movement into the ledger and returns the
// ledger's identifier.
func (s *MovementsService) Register(movementID int) (int, error) {
	movement, err := s.movementsRepo.GetMovement(movementID)
	if err != nil {
		return 0, err
	}

	return s.ledger.CreateMovement(*movement)
}
