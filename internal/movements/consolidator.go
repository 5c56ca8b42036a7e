package movements

import (
	"fmt"

	"kitting/internal/repository"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
)

// maxConsolidationPasses bounds the merge loop against pathological
// chains.
const maxConsolidationPasses = 10

// Consolidator merges duplicate per-serial movement lines before a
// transfer is handed to the ledger, which rejects a transfer containing
// two live records for one serial.
type Consolidator struct {
	movementsRepo movementsRepository
	transactor    repository.Transactor
}

func NewConsolidator(movementsRepo movementsRepository, transactor repository.Transactor) *Consolidator {
	return &Consolidator{
		movementsRepo: movementsRepo,
		transactor:    transactor,
	}
}

// Consolidate groups the movement's lines by (product, serialized unit)
// and merges every group down to one line with quantity capped at the
// movement's planned quantity. Re-invoking on an already consolidated
// movement removes nothing. Returns the number of lines removed.
func (c *Consolidator) Consolidate(movementID int) (int, error) {
	movement, err := c.movementsRepo.GetMovement(movementID)
	if err != nil {
		return 0, err
	}
	if movement.Status == metadata.StatusDone {
		return 0, nil
	}

	removed := 0
	err = c.transactor.InTransaction(func(tx *goqu.TxDatabase) error {
		for pass := 0; pass < maxConsolidationPasses; pass++ {
			lines, err := c.movementsRepo.GetLines(tx, movementID)
			if err != nil {
				return err
			}

			merged, err := c.mergePass(tx, movement, lines)
			if err != nil {
				return err
			}
			if merged == 0 {
				return nil
			}
			removed += merged
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to consolidate movement %d: %w", movementID, err)
	}

	return removed, nil
}

type lineGroupKey struct {
	productID int
	unitID    int
}

func (c *Consolidator) mergePass(tx *goqu.TxDatabase, movement *models.Movement, lines []models.MovementLine) (int, error) {
	groups := make(map[lineGroupKey][]models.MovementLine)
	for _, line := range lines {
		if line.SerializedUnitID == nil {
			// Quantity-only lines carry no serial; the ledger accepts
			// them repeated.
			continue
		}
		key := lineGroupKey{productID: line.ProductID, unitID: *line.SerializedUnitID}
		groups[key] = append(groups[key], line)
	}

	removed := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		total := decimal.Zero
		for _, line := range group {
			total = total.Add(line.Quantity)
		}
		if total.GreaterThan(movement.PlannedQty) {
			total = movement.PlannedQty
		}

		keeper := group[0]
		if err := c.movementsRepo.UpdateLineQty(tx, keeper.ID, total); err != nil {
			return 0, err
		}

		var doomed []int
		for _, line := range group[1:] {
			doomed = append(doomed, line.ID)
		}
		if err := c.movementsRepo.DeleteLines(tx, doomed); err != nil {
			return 0, err
		}

		removed += len(doomed)
	}

	return removed, nil
}
