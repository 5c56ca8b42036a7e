package relations

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

func TestValidateLineRejectsSelfReference(t *testing.T) {
	service := &RelationsService{}

	err := service.validateLine(models.RelationLine{
		PrincipalID:     1,
		Kind:            metadata.KindComponent,
		TargetProductID: 1,
		QtyPerUnit:      decimal.NewFromInt(1),
		Unit:            "pcs",
	})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}

func TestValidateLineRejectsMismatchedClassification(t *testing.T) {
	mockCatalog := new(MockCatalog)

	mockCatalog.On("GetProduct", 3).Return(&models.Product{ID: 3, Classification: models.ClassPeripheral}, nil)

	service := &RelationsService{catalog: mockCatalog}

	err := service.validateLine(models.RelationLine{
		PrincipalID:     1,
		Kind:            metadata.KindComponent,
		TargetProductID: 3,
		QtyPerUnit:      decimal.NewFromInt(1),
		Unit:            "pcs",
	})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
	mockCatalog.AssertNotCalled(t, "GetUnit", mock.Anything)
}

func TestValidateLineAcceptsMatchingClassification(t *testing.T) {
	mockCatalog := new(MockCatalog)

	mockCatalog.On("GetProduct", 3).Return(&models.Product{ID: 3, Classification: models.ClassMonitor}, nil)
	mockCatalog.On("GetUnit", "pcs").Return(&models.Unit{Name: "pcs"}, nil)

	service := &RelationsService{catalog: mockCatalog}

	err := service.validateLine(models.RelationLine{
		PrincipalID:     1,
		Kind:            metadata.KindPeripheral,
		TargetProductID: 3,
		QtyPerUnit:      decimal.NewFromInt(1),
		Unit:            "pcs",
	})

	assert.NoError(t, err)
}
