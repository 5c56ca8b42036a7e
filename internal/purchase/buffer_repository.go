package purchase

import (
	"fmt"

	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type BufferRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *BufferRepository {
	return &BufferRepository{
		repository: r,
	}
}

func (r *BufferRepository) GetBuffer(orderLineID int) (*models.PurchaseBuffer, error) {
	query := r.repository.GoquDBWrapper.
		From("purchase_buffers").
		Select("id", "order_line_id", "principal_product_id", "finalized").
		Where(goqu.Ex{"order_line_id": orderLineID})

	var buffer models.PurchaseBuffer
	found, err := query.Executor().ScanStruct(&buffer)
	if err != nil {
		return nil, fmt.Errorf("unable to select purchase buffer for order line %d: %w", orderLineID, err)
	}
	if !found {
		return nil, custom_error.NewOperatorError("no purchase buffer exists for order line %d", orderLineID)
	}

	linesQuery := r.repository.GoquDBWrapper.
		From("purchase_buffer_lines").
		Select("id", "buffer_id", "kind", "target_product_id", "qty", "unit").
		Where(goqu.Ex{"buffer_id": buffer.ID}).
		Order(goqu.I("id").Asc())

	if err := linesQuery.Executor().ScanStructs(&buffer.Lines); err != nil {
		return nil, fmt.Errorf("unable to select buffer lines for buffer %d: %w", buffer.ID, err)
	}

	return &buffer, nil
}

func (r *BufferRepository) CreateBuffer(orderLineID, productID int, lines []models.BufferLine) (int, error) {
	var bufferID int

	err := repository.WithTransaction(r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		query := tx.Insert("purchase_buffers").
			Rows(goqu.Record{
				"order_line_id":        orderLineID,
				"principal_product_id": productID,
				"finalized":            false,
			}).
			Returning("id")

		if _, err := query.Executor().ScanVal(&bufferID); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				// order_line_id is unique; a second buffer for the same
				// line is a constraint violation, not a merge.
				return custom_error.WrapDBError("failed to insert purchase buffer", string(pqErr.Code), pqErr.Constraint)
			}
			return fmt.Errorf("failed to insert purchase buffer: %w", err)
		}

		for _, line := range lines {
			lineQuery := tx.Insert("purchase_buffer_lines").
				Rows(goqu.Record{
					"buffer_id":         bufferID,
					"kind":              line.Kind,
					"target_product_id": line.TargetProductID,
					"qty":               line.Qty,
					"unit":              line.Unit,
				})
			if _, err := lineQuery.Executor().Exec(); err != nil {
				return fmt.Errorf("failed to insert buffer line: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return bufferID, nil
}

func (r *BufferRepository) MarkFinalized(tx *goqu.TxDatabase, bufferID int) error {
	query := tx.Update("purchase_buffers").
		Set(goqu.Record{"finalized": true}).
		Where(goqu.Ex{"id": bufferID})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to finalize purchase buffer %d: %w", bufferID, err)
	}

	return nil
}
