package linkage

import (
	"fmt"

	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type LinkageRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *LinkageRepository {
	return &LinkageRepository{
		repository: r,
	}
}

func (r *LinkageRepository) GetUnit(id int) (*models.SerializedUnit, error) {
	query := r.unitQuery().Where(goqu.Ex{"u.id": id})

	var flat models.FlatSerializedUnitRecord
	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("unable to select serialized unit %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewOperatorError("serialized unit %d does not exist", id)
	}

	unit := flat.TransformToUnit()
	return &unit, nil
}

func (r *LinkageRepository) GetUnitsBySerial(serial string) ([]models.SerializedUnit, error) {
	query := r.unitQuery().Where(goqu.Ex{"u.serial": serial}).Order(goqu.I("u.id").Asc())

	var flats []models.FlatSerializedUnitRecord
	if err := query.Executor().ScanStructs(&flats); err != nil {
		return nil, fmt.Errorf("unable to select serialized units for serial %s: %w", serial, err)
	}

	units := make([]models.SerializedUnit, 0, len(flats))
	for _, flat := range flats {
		units = append(units, flat.TransformToUnit())
	}

	return units, nil
}

// CandidatePool lists the serialized units eligible as the related end
// of a new edge: same product as the relation target, located where the
// principal is, not already the related end of a manual edge anywhere in
// the graph, and not already related under this principal through any
// edge, mesh edges included.
func (r *LinkageRepository) CandidatePool(principal *models.SerializedUnit, targetProductID int) ([]models.SerializedUnit, error) {
	query := r.candidatePoolQuery(principal, targetProductID)

	var flats []models.FlatSerializedUnitRecord
	if err := query.Executor().ScanStructs(&flats); err != nil {
		return nil, fmt.Errorf("unable to select candidate pool for unit %d: %w", principal.ID, err)
	}

	units := make([]models.SerializedUnit, 0, len(flats))
	for _, flat := range flats {
		units = append(units, flat.TransformToUnit())
	}

	return units, nil
}

func (r *LinkageRepository) candidatePoolQuery(principal *models.SerializedUnit, targetProductID int) *goqu.SelectDataset {
	// Units consumed by a manual edge are out of the pool everywhere;
	// units already hanging under this principal are out regardless of
	// how the edge was made, or retries would keep offering them.
	taken := r.repository.GoquDBWrapper.
		From("supply_lines").
		Select("related_unit_id").
		Where(goqu.Or(
			goqu.Ex{"auto_linked": false},
			goqu.Ex{"principal_unit_id": principal.ID},
		))

	return r.unitQuery().
		Where(
			goqu.Ex{"u.product_id": targetProductID},
			goqu.Ex{"u.location_id": principal.Location.ID},
			goqu.I("u.id").Neq(principal.ID),
			goqu.I("u.id").NotIn(taken),
		).
		Order(goqu.I("u.id").Asc())
}

// Insert persists one edge. The partial unique index on related_unit_id
// rejects a unit already related elsewhere; that commit-time violation
// surfaces as DuplicateAssignmentError.
func (r *LinkageRepository) Insert(tx *goqu.TxDatabase, line models.SupplyLine, autoLinked bool) (*models.SupplyLine, error) {
	query := tx.Insert("supply_lines").
		Rows(goqu.Record{
			"principal_unit_id": line.PrincipalUnitID,
			"related_unit_id":   line.RelatedUnitID,
			"kind":              line.Kind,
			"qty":               line.Qty,
			"unit":              line.Unit,
			"has_cost":          line.HasCost,
			"auto_linked":       autoLinked,
		}).
		Returning("id")

	var lineID int
	if _, err := query.Executor().ScanVal(&lineID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, &custom_error.DuplicateAssignmentError{RelatedUnitID: line.RelatedUnitID}
		}
		return nil, fmt.Errorf("failed to insert supply line: %w", err)
	}

	line.ID = lineID
	return &line, nil
}

func (r *LinkageRepository) Delete(lineID int) error {
	query := r.repository.GoquDBWrapper.
		Delete("supply_lines").
		Where(goqu.Ex{"id": lineID})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to delete supply line %d: %w", lineID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return custom_error.NewOperatorError("supply line %d does not exist", lineID)
	}

	return nil
}

func (r *LinkageRepository) ExistsPair(tx *goqu.TxDatabase, principalID, relatedID int) (bool, error) {
	sqlQuery, args, err := tx.
		From("supply_lines").
		Select(goqu.COUNT("id")).
		Where(goqu.Ex{
			"principal_unit_id": principalID,
			"related_unit_id":   relatedID,
		}).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := tx.QueryRow(sqlQuery, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check pair (%d, %d): %w", principalID, relatedID, err)
	}

	return count > 0, nil
}

func (r *LinkageRepository) LinesByPrincipal(principalID int) ([]models.SupplyLine, error) {
	query := r.repository.GoquDBWrapper.
		From("supply_lines").
		Select("id", "principal_unit_id", "related_unit_id", "kind", "qty", "unit", "has_cost").
		Where(goqu.Ex{"principal_unit_id": principalID}).
		Order(goqu.I("id").Asc())

	var lines []models.SupplyLine
	if err := query.Executor().ScanStructs(&lines); err != nil {
		return nil, fmt.Errorf("unable to select supply lines for unit %d: %w", principalID, err)
	}

	return lines, nil
}

// LinkedSummary is the display projection of a principal's linked
// sub-units. It left-joins the related unit and product so a missing
// relation degrades to empty fields instead of failing the read.
func (r *LinkageRepository) LinkedSummary(principalID int) ([]models.LinkedItem, error) {
	query := r.repository.GoquDBWrapper.
		From(goqu.T("supply_lines").As("l")).
		LeftJoin(goqu.T("serialized_units").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("l.related_unit_id")})).
		LeftJoin(goqu.T("products").As("p"), goqu.On(goqu.Ex{"p.id": goqu.I("u.product_id")})).
		Select(
			goqu.COALESCE(goqu.I("u.serial"), "").As("serial"),
			goqu.COALESCE(goqu.I("p.name"), "").As("product_name"),
			goqu.I("l.kind").As("kind"),
			goqu.I("l.qty").As("qty"),
		).
		Where(goqu.Ex{"l.principal_unit_id": principalID}).
		Order(goqu.I("l.id").Asc())

	var items []models.LinkedItem
	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("unable to build linked summary for unit %d: %w", principalID, err)
	}

	return items, nil
}

func (r *LinkageRepository) unitQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From(goqu.T("serialized_units").As("u")).
		Join(goqu.T("products").As("p"), goqu.On(goqu.Ex{"p.id": goqu.I("u.product_id")})).
		Join(goqu.T("locations").As("loc"), goqu.On(goqu.Ex{"loc.id": goqu.I("u.location_id")})).
		Select(
			goqu.I("u.id").As("unit_id"),
			goqu.I("u.serial").As("serial"),
			goqu.I("u.is_principal").As("is_principal"),
			goqu.I("p.id").As("product_id"),
			goqu.I("p.name").As("product_name"),
			goqu.I("p.unit").As("product_unit"),
			goqu.I("loc.id").As("location_id"),
			goqu.I("loc.name").As("location_name"),
		)
}
