package movements

import (
	"fmt"

	"kitting/internal/explosion"
	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
)

type billReader interface {
	GetBill(productID int) (*models.BillOfRelations, error)
}

type movementsRepository interface {
	GetMovement(id int) (*models.Movement, error)
	GetMovementsBy(conditions repository.QueryBuilder) ([]models.Movement, error)
	InsertMovement(tx *goqu.TxDatabase, movement models.Movement) (int, error)
	UpdateStatus(id int, status metadata.MovementStatus) error
	ChildKinds(parentID int) (map[metadata.SupplyKind]bool, error)
	GetLines(tx *goqu.TxDatabase, movementID int) ([]models.MovementLine, error)
	ListLines(movementID int) ([]models.MovementLine, error)
	InsertLine(tx *goqu.TxDatabase, line models.MovementLine) (int, error)
	UpdateLineQty(tx *goqu.TxDatabase, lineID int, qty decimal.Decimal) error
	DeleteLines(tx *goqu.TxDatabase, lineIDs []int) error
}

// Generator creates tagged child movements from a parent movement using
// the explosion engine.
type Generator struct {
	movementsRepo movementsRepository
	billRepo      billReader
	engine        *explosion.Engine
	transactor    repository.Transactor
}

func NewGenerator(movementsRepo movementsRepository, billRepo billReader, engine *explosion.Engine, transactor repository.Transactor) *Generator {
	return &Generator{
		movementsRepo: movementsRepo,
		billRepo:      billRepo,
		engine:        engine,
		transactor:    transactor,
	}
}

// ExplodeMovement runs the moving product's bill of relations against
// the parent's planned quantity and creates one child movement per
// exploded item, tagged with the item's kind. Complements already
// created by an earlier receiving step are skipped, never re-created.
func (g *Generator) ExplodeMovement(parentID int, opts explosion.ExplosionOptions) ([]models.Movement, error) {
	parent, err := g.movementsRepo.GetMovement(parentID)
	if err != nil {
		return nil, err
	}

	if parent.SupplyKind != metadata.SupplyParent {
		return nil, custom_error.NewValidationError("movement %d is not a parent movement", parentID)
	}
	if parent.Status == metadata.StatusDone || parent.Status == metadata.StatusCancelled {
		return nil, custom_error.NewOperatorError("movement %d is %s and cannot be exploded", parentID, parent.Status)
	}

	existing, err := g.movementsRepo.ChildKinds(parentID)
	if err != nil {
		return nil, err
	}
	if existing[metadata.SupplyComplement] {
		if opts.SkipKinds == nil {
			opts.SkipKinds = make(map[metadata.RelationKind]bool)
		}
		opts.SkipKinds[metadata.KindComplement] = true
	}

	bill, err := g.billRepo.GetBill(parent.ProductID)
	if err != nil {
		return nil, err
	}

	items, err := g.engine.Explode(bill, parent.PlannedQty, parent.Unit, opts)
	if err != nil {
		return nil, err
	}

	var children []models.Movement
	err = g.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		for _, item := range items {
			child := models.Movement{
				ProductID:        item.Product.ID,
				PlannedQty:       item.Quantity,
				Unit:             item.Unit,
				SourceLocationID: parent.SourceLocationID,
				DestLocationID:   parent.DestLocationID,
				SupplyKind:       item.Kind.SupplyKind(),
				ParentMovementID: &parent.ID,
				Status:           metadata.StatusDraft,
			}

			childID, err := g.movementsRepo.InsertMovement(tx, child)
			if err != nil {
				return fmt.Errorf("failed to create child movement for product %d: %w", item.Product.ID, err)
			}

			child.ID = childID
			children = append(children, child)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return children, nil
}
