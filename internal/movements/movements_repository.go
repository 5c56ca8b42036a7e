package movements

import (
	"fmt"

	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
)

type MovementsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *MovementsRepository {
	return &MovementsRepository{
		repository: r,
	}
}

func (r *MovementsRepository) GetMovement(id int) (*models.Movement, error) {
	query := r.repository.GoquDBWrapper.
		From("movements").
		Select("id", "product_id", "planned_qty", "unit", "source_location_id", "dest_location_id", "supply_kind", "parent_movement_id", "status").
		Where(goqu.Ex{"id": id})

	var movement models.Movement
	found, err := query.Executor().ScanStruct(&movement)
	if err != nil {
		return nil, fmt.Errorf("unable to select movement %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewOperatorError("movement %d does not exist", id)
	}

	return &movement, nil
}

func (r *MovementsRepository) GetMovementsBy(conditions repository.QueryBuilder) ([]models.Movement, error) {
	aliases := map[string]string{
		"product_id":         "m.product_id",
		"status":             "m.status",
		"supply_kind":        "m.supply_kind",
		"parent_movement_id": "m.parent_movement_id",
		"dest_location_id":   "m.dest_location_id",
	}

	query := r.repository.GoquDBWrapper.
		From(goqu.T("movements").As("m")).
		Select("m.id", "m.product_id", "m.planned_qty", "m.unit", "m.source_location_id", "m.dest_location_id", "m.supply_kind", "m.parent_movement_id", "m.status").
		Where(conditions.BuildConditions(aliases)).
		Order(goqu.I("m.id").Asc())

	var movements []models.Movement
	if err := query.Executor().ScanStructs(&movements); err != nil {
		return nil, fmt.Errorf("unable to select movements from database: %w", err)
	}

	return movements, nil
}

func (r *MovementsRepository) InsertMovement(tx *goqu.TxDatabase, movement models.Movement) (int, error) {
	query := tx.Insert("movements").
		Rows(goqu.Record{
			"product_id":         movement.ProductID,
			"planned_qty":        movement.PlannedQty,
			"unit":               movement.Unit,
			"source_location_id": movement.SourceLocationID,
			"dest_location_id":   movement.DestLocationID,
			"supply_kind":        movement.SupplyKind,
			"parent_movement_id": movement.ParentMovementID,
			"status":             movement.Status,
		}).
		Returning("id")

	var movementID int
	if _, err := query.Executor().ScanVal(&movementID); err != nil {
		return 0, fmt.Errorf("failed to insert movement: %w", err)
	}

	return movementID, nil
}

func (r *MovementsRepository) UpdateStatus(id int, status metadata.MovementStatus) error {
	query := r.repository.GoquDBWrapper.
		Update("movements").
		Set(goqu.Record{"status": status}).
		Where(goqu.Ex{"id": id})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to update movement %d status: %w", id, err)
	}

	return nil
}

// ChildKinds reports which supply kinds already have child movements
// under the parent. The generator uses it to skip complements created by
// an earlier receiving step.
func (r *MovementsRepository) ChildKinds(parentID int) (map[metadata.SupplyKind]bool, error) {
	sqlQuery, args, err := r.repository.GoquDBWrapper.
		From("movements").
		Select(goqu.DISTINCT("supply_kind")).
		Where(goqu.Ex{"parent_movement_id": parentID}).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.repository.DB.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read child kinds of movement %d: %w", parentID, err)
	}
	defer rows.Close()

	kinds := make(map[metadata.SupplyKind]bool)
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("failed to scan child kind: %w", err)
		}
		kinds[metadata.SupplyKind(kind)] = true
	}

	return kinds, nil
}

func (r *MovementsRepository) GetLines(tx *goqu.TxDatabase, movementID int) ([]models.MovementLine, error) {
	query := tx.
		From("movement_lines").
		Select("id", "movement_id", "product_id", "serialized_unit_id", "quantity").
		Where(goqu.Ex{"movement_id": movementID}).
		Order(goqu.I("id").Asc())

	var lines []models.MovementLine
	if err := query.Executor().ScanStructs(&lines); err != nil {
		return nil, fmt.Errorf("unable to select lines of movement %d: %w", movementID, err)
	}

	return lines, nil
}

func (r *MovementsRepository) ListLines(movementID int) ([]models.MovementLine, error) {
	query := r.repository.GoquDBWrapper.
		From("movement_lines").
		Select("id", "movement_id", "product_id", "serialized_unit_id", "quantity").
		Where(goqu.Ex{"movement_id": movementID}).
		Order(goqu.I("id").Asc())

	var lines []models.MovementLine
	if err := query.Executor().ScanStructs(&lines); err != nil {
		return nil, fmt.Errorf("unable to select lines of movement %d: %w", movementID, err)
	}

	return lines, nil
}

func (r *MovementsRepository) InsertLine(tx *goqu.TxDatabase, line models.MovementLine) (int, error) {
	query := tx.Insert("movement_lines").
		Rows(goqu.Record{
			"movement_id":        line.MovementID,
			"product_id":         line.ProductID,
			"serialized_unit_id": line.SerializedUnitID,
			"quantity":           line.Quantity,
		}).
		Returning("id")

	var lineID int
	if _, err := query.Executor().ScanVal(&lineID); err != nil {
		return 0, fmt.Errorf("failed to insert movement line: %w", err)
	}

	return lineID, nil
}

func (r *MovementsRepository) UpdateLineQty(tx *goqu.TxDatabase, lineID int, qty decimal.Decimal) error {
	query := tx.Update("movement_lines").
		Set(goqu.Record{"quantity": qty}).
		Where(goqu.Ex{"id": lineID})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to update movement line %d: %w", lineID, err)
	}

	return nil
}

func (r *MovementsRepository) DeleteLines(tx *goqu.TxDatabase, lineIDs []int) error {
	if len(lineIDs) == 0 {
		return nil
	}

	query := tx.Delete("movement_lines").
		Where(goqu.C("id").In(lineIDs))

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to delete movement lines: %w", err)
	}

	return nil
}
