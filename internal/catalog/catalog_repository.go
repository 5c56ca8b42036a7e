package catalog

import (
	"database/sql"
	"fmt"

	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
)

// CatalogRepository reads the external product catalog. The core never
// writes products or units.
type CatalogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *CatalogRepository {
	return &CatalogRepository{
		repository: r,
	}
}

func (r *CatalogRepository) GetProduct(id int) (*models.Product, error) {
	query := r.repository.GoquDBWrapper.
		From(goqu.T("products").As("p")).
		Select(
			goqu.I("p.id").As("id"),
			goqu.I("p.name").As("name"),
			goqu.I("p.unit").As("unit"),
			goqu.I("p.standard_cost").As("standard_cost"),
			goqu.I("p.classification").As("classification"),
		).
		Where(goqu.Ex{"p.id": id})

	var product models.Product
	found, err := query.Executor().ScanStruct(&product)
	if err != nil {
		return nil, fmt.Errorf("unable to select product %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewValidationError("product %d does not exist", id)
	}

	return &product, nil
}

func (r *CatalogRepository) GetStandardCost(productID int) (decimal.Decimal, error) {
	sqlQuery, args, err := r.repository.GoquDBWrapper.
		From("products").
		Select("standard_cost").
		Where(goqu.Ex{"id": productID}).
		ToSQL()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build query: %w", err)
	}

	var raw string
	err = r.repository.DB.QueryRow(sqlQuery, args...).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, custom_error.NewValidationError("product %d does not exist", productID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read standard cost for product %d: %w", productID, err)
	}

	cost, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid standard cost for product %d: %w", productID, err)
	}

	return cost, nil
}

func (r *CatalogRepository) GetUnit(name string) (*models.Unit, error) {
	query := r.repository.GoquDBWrapper.
		From("units").
		Select("name", "factor", "precision").
		Where(goqu.Ex{"name": name})

	var unit models.Unit
	found, err := query.Executor().ScanStruct(&unit)
	if err != nil {
		return nil, fmt.Errorf("unable to select unit %s: %w", name, err)
	}
	if !found {
		return nil, custom_error.NewValidationError("unit %s does not exist", name)
	}

	return &unit, nil
}
