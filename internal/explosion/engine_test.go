package explosion

import (
	"testing"

	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProduct(id int) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalog) GetStandardCost(productID int) (decimal.Decimal, error) {
	args := m.Called(productID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCatalog) GetUnit(name string) (*models.Unit, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockCatalog) Convert(qty decimal.Decimal, fromUnit, toUnit string) (decimal.Decimal, error) {
	args := m.Called(qty, fromUnit, toUnit)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func laptopBill() *models.BillOfRelations {
	return &models.BillOfRelations{
		ProductID:      1,
		IsComposite:    true,
		UsePeripherals: true,
		UseComplements: true,
		Components: []models.RelationLine{
			{ID: 10, PrincipalID: 1, Kind: metadata.KindComponent, TargetProductID: 2, QtyPerUnit: decimal.NewFromInt(1), Unit: "pcs"},
		},
		Peripherals: []models.RelationLine{
			{ID: 11, PrincipalID: 1, Kind: metadata.KindPeripheral, TargetProductID: 3, QtyPerUnit: decimal.NewFromInt(2), Unit: "pcs"},
		},
		Complements: []models.RelationLine{
			{ID: 12, PrincipalID: 1, Kind: metadata.KindComplement, TargetProductID: 4, QtyPerUnit: decimal.NewFromInt(1), Unit: "pcs"},
		},
	}
}

func TestExplodeScalesLinesByPrincipalQty(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("GetProduct", 1).Return(&models.Product{ID: 1, Name: "Laptop", Unit: "pcs"}, nil)
	cat.On("GetProduct", 2).Return(&models.Product{ID: 2, Name: "HDD", Unit: "pcs"}, nil)
	cat.On("GetProduct", 3).Return(&models.Product{ID: 3, Name: "Mouse", Unit: "pcs"}, nil)
	cat.On("GetProduct", 4).Return(&models.Product{ID: 4, Name: "Bag", Unit: "pcs"}, nil)

	engine := NewEngine(cat)
	items, err := engine.Explode(laptopBill(), decimal.NewFromInt(3), "pcs", ExplosionOptions{})

	assert.NoError(t, err)
	assert.Len(t, items, 3)
	assert.True(t, decimal.NewFromInt(3).Equal(items[0].Quantity), "component qty = %s", items[0].Quantity)
	assert.True(t, decimal.NewFromInt(6).Equal(items[1].Quantity), "peripheral qty = %s", items[1].Quantity)
	assert.True(t, decimal.NewFromInt(3).Equal(items[2].Quantity), "complement qty = %s", items[2].Quantity)
	cat.AssertExpectations(t)
}

func TestExplodeHonorsGatingFlags(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("GetProduct", 1).Return(&models.Product{ID: 1, Name: "Laptop", Unit: "pcs"}, nil)
	cat.On("GetProduct", 2).Return(&models.Product{ID: 2, Name: "HDD", Unit: "pcs"}, nil)

	bill := laptopBill()
	bill.UsePeripherals = false
	bill.UseComplements = false

	engine := NewEngine(cat)
	items, err := engine.Explode(bill, decimal.NewFromInt(1), "pcs", ExplosionOptions{})

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, metadata.KindComponent, items[0].Kind)
}

func TestExplodeSkipKinds(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("GetProduct", 1).Return(&models.Product{ID: 1, Name: "Laptop", Unit: "pcs"}, nil)
	cat.On("GetProduct", 2).Return(&models.Product{ID: 2, Name: "HDD", Unit: "pcs"}, nil)
	cat.On("GetProduct", 3).Return(&models.Product{ID: 3, Name: "Mouse", Unit: "pcs"}, nil)

	engine := NewEngine(cat)
	items, err := engine.Explode(laptopBill(), decimal.NewFromInt(1), "pcs", ExplosionOptions{
		SkipKinds: map[metadata.RelationKind]bool{metadata.KindComplement: true},
	})

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	for _, item := range items {
		assert.NotEqual(t, metadata.KindComplement, item.Kind)
	}
}

func TestExplodeConvertsRequestUnit(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("GetProduct", 1).Return(&models.Product{ID: 1, Name: "Laptop", Unit: "pcs"}, nil)
	cat.On("GetProduct", 2).Return(&models.Product{ID: 2, Name: "HDD", Unit: "pcs"}, nil)
	cat.On("Convert", decimal.NewFromInt(2), "box10", "pcs").Return(decimal.NewFromInt(20), nil)

	bill := laptopBill()
	bill.UsePeripherals = false
	bill.UseComplements = false

	engine := NewEngine(cat)
	items, err := engine.Explode(bill, decimal.NewFromInt(2), "box10", ExplosionOptions{})

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(items[0].Quantity), "qty = %s", items[0].Quantity)
	cat.AssertExpectations(t)
}

func TestExplodeSelfReferenceIsInvalidConfiguration(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("GetProduct", 1).Return(&models.Product{ID: 1, Name: "Laptop", Unit: "pcs"}, nil)

	bill := &models.BillOfRelations{
		ProductID:   1,
		IsComposite: true,
		Components: []models.RelationLine{
			{ID: 10, PrincipalID: 1, Kind: metadata.KindComponent, TargetProductID: 1, QtyPerUnit: decimal.NewFromInt(1), Unit: "pcs"},
		},
	}

	engine := NewEngine(cat)
	_, err := engine.Explode(bill, decimal.NewFromInt(1), "pcs", ExplosionOptions{})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}
