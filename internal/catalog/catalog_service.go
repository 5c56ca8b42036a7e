package catalog

import (
	"kitting/pkg/models"

	"github.com/shopspring/decimal"
)

// Catalog is the read surface the rest of the core consumes. It wraps
// the catalog tables and the unit conversion rules.
type Catalog interface {
	GetProduct(id int) (*models.Product, error)
	GetStandardCost(productID int) (decimal.Decimal, error)
	GetUnit(name string) (*models.Unit, error)
	Convert(qty decimal.Decimal, fromUnit, toUnit string) (decimal.Decimal, error)
}

type CatalogService struct {
	repo *CatalogRepository
}

func NewService(repo *CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) GetProduct(id int) (*models.Product, error) {
	return s.repo.GetProduct(id)
}

func (s *CatalogService) GetStandardCost(productID int) (decimal.Decimal, error) {
	return s.repo.GetStandardCost(productID)
}

func (s *CatalogService) GetUnit(name string) (*models.Unit, error) {
	return s.repo.GetUnit(name)
}

// Convert scales qty from one unit to another through the units table
// factors and rounds half-up to the target unit's precision.
func (s *CatalogService) Convert(qty decimal.Decimal, fromUnit, toUnit string) (decimal.Decimal, error) {
	if fromUnit == toUnit {
		return qty, nil
	}

	from, err := s.repo.GetUnit(fromUnit)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := s.repo.GetUnit(toUnit)
	if err != nil {
		return decimal.Zero, err
	}

	return ConvertWithUnits(qty, from, to), nil
}

// ConvertWithUnits is the pure conversion: qty * from.factor / to.factor,
// half-up rounded to the target precision.
func ConvertWithUnits(qty decimal.Decimal, from, to *models.Unit) decimal.Decimal {
	converted := qty.Mul(from.Factor).Div(to.Factor)
	// decimal.Round is half-up for positive values, which is the rounding
	// the ledger expects for quantities.
	return converted.Round(to.Precision)
}
