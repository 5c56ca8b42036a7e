package purchase

import (
	"testing"

	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBufferRepository struct {
	mock.Mock
}

func (m *MockBufferRepository) GetBuffer(orderLineID int) (*models.PurchaseBuffer, error) {
	args := m.Called(orderLineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseBuffer), args.Error(1)
}

func (m *MockBufferRepository) MarkFinalized(tx *goqu.TxDatabase, bufferID int) error {
	args := m.Called(tx, bufferID)
	return args.Error(0)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) GetBill(productID int) (*models.BillOfRelations, error) {
	args := m.Called(productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillOfRelations), args.Error(1)
}

func (m *MockBillRepository) InsertLine(tx *goqu.TxDatabase, line models.RelationLine) (int, error) {
	args := m.Called(tx, line)
	return args.Int(0), args.Error(1)
}

func (m *MockBillRepository) IncrementLineQty(tx *goqu.TxDatabase, lineID int, delta decimal.Decimal) error {
	args := m.Called(tx, lineID, delta)
	return args.Error(0)
}

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

func TestConfirmOrderLineRejectsFinalizedBuffer(t *testing.T) {
	mockBufferRepo := new(MockBufferRepository)
	mockBillRepo := new(MockBillRepository)

	mockBufferRepo.On("GetBuffer", 42).Return(&models.PurchaseBuffer{
		ID:          7,
		OrderLineID: 42,
		ProductID:   1,
		Finalized:   true,
	}, nil)

	service := &MergeService{bufferRepo: mockBufferRepo, billRepo: mockBillRepo}

	err := service.ConfirmOrderLine(42)

	assert.Error(t, err)
	assert.True(t, custom_error.IsOperatorError(err))
	mockBillRepo.AssertNotCalled(t, "GetBill", mock.Anything)
}

func TestMergeLineIncrementsExistingLine(t *testing.T) {
	mockBillRepo := new(MockBillRepository)
	tx := new(goqu.TxDatabase)

	bill := &models.BillOfRelations{
		ProductID: 1,
		Components: []models.RelationLine{
			{ID: 10, PrincipalID: 1, Kind: metadata.KindComponent, TargetProductID: 2, QtyPerUnit: decimal.NewFromInt(1), Unit: "pcs"},
		},
	}

	mockCatalog := new(MockCatalog)
	mockCatalog.On("GetProduct", 2).Return(&models.Product{ID: 2, Classification: models.ClassNone}, nil)
	mockBillRepo.On("IncrementLineQty", tx, 10, decimal.NewFromInt(2)).Return(nil).Once()

	service := &MergeService{billRepo: mockBillRepo, catalog: mockCatalog}

	err := service.mergeLine(tx, bill, models.BufferLine{
		Kind:            metadata.SupplyComponent,
		TargetProductID: 2,
		Qty:             decimal.NewFromInt(2),
		Unit:            "pcs",
	})

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(bill.Components[0].QtyPerUnit))
	mockBillRepo.AssertExpectations(t)
}

func TestMergeLineConvertsUnitBeforeIncrement(t *testing.T) {
	mockBillRepo := new(MockBillRepository)
	mockCatalog := new(MockCatalog)
	tx := new(goqu.TxDatabase)

	bill := &models.BillOfRelations{
		ProductID: 1,
		Components: []models.RelationLine{
			{ID: 10, PrincipalID: 1, Kind: metadata.KindComponent, TargetProductID: 2, QtyPerUnit: decimal.NewFromInt(5), Unit: "pcs"},
		},
	}

	mockCatalog.On("GetProduct", 2).Return(&models.Product{ID: 2, Classification: models.ClassComponent}, nil)
	mockCatalog.On("Convert", decimal.NewFromInt(1), "box10", "pcs").Return(decimal.NewFromInt(10), nil).Once()
	mockBillRepo.On("IncrementLineQty", tx, 10, decimal.NewFromInt(10)).Return(nil).Once()

	service := &MergeService{billRepo: mockBillRepo, catalog: mockCatalog}

	err := service.mergeLine(tx, bill, models.BufferLine{
		Kind:            metadata.SupplyComponent,
		TargetProductID: 2,
		Qty:             decimal.NewFromInt(1),
		Unit:            "box10",
	})

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(bill.Components[0].QtyPerUnit))
	mockCatalog.AssertExpectations(t)
	mockBillRepo.AssertExpectations(t)
}

func TestMergeLineFoldsMonitorIntoPeripherals(t *testing.T) {
	mockBillRepo := new(MockBillRepository)
	tx := new(goqu.TxDatabase)

	bill := &models.BillOfRelations{ProductID: 1}

	expected := models.RelationLine{
		PrincipalID:     1,
		Kind:            metadata.KindPeripheral,
		TargetProductID: 3,
		QtyPerUnit:      decimal.NewFromInt(1),
		Unit:            "pcs",
	}
	mockCatalog := new(MockCatalog)
	mockCatalog.On("GetProduct", 3).Return(&models.Product{ID: 3, Classification: models.ClassMonitor}, nil)
	mockBillRepo.On("InsertLine", tx, expected).Return(20, nil).Once()

	service := &MergeService{billRepo: mockBillRepo, catalog: mockCatalog}

	err := service.mergeLine(tx, bill, models.BufferLine{
		Kind:            metadata.SupplyMonitor,
		TargetProductID: 3,
		Qty:             decimal.NewFromInt(1),
		Unit:            "pcs",
	})

	assert.NoError(t, err)
	assert.Len(t, bill.Peripherals, 1)
	assert.Equal(t, 20, bill.Peripherals[0].ID)
	mockBillRepo.AssertExpectations(t)
}

func TestMergeLineRejectsSelfReference(t *testing.T) {
	service := &MergeService{}
	bill := &models.BillOfRelations{ProductID: 1}

	err := service.mergeLine(nil, bill, models.BufferLine{
		Kind:            metadata.SupplyComponent,
		TargetProductID: 1,
		Qty:             decimal.NewFromInt(1),
		Unit:            "pcs",
	})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}

func TestMergeLineRejectsMismatchedClassification(t *testing.T) {
	mockBillRepo := new(MockBillRepository)
	mockCatalog := new(MockCatalog)

	// A product the catalog classifies as a component has no place on
	// the peripheral list.
	mockCatalog.On("GetProduct", 2).Return(&models.Product{ID: 2, Classification: models.ClassComponent}, nil)

	service := &MergeService{billRepo: mockBillRepo, catalog: mockCatalog}
	bill := &models.BillOfRelations{ProductID: 1}

	err := service.mergeLine(nil, bill, models.BufferLine{
		Kind:            metadata.SupplyPeripheral,
		TargetProductID: 2,
		Qty:             decimal.NewFromInt(1),
		Unit:            "pcs",
	})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
	mockBillRepo.AssertNotCalled(t, "InsertLine", mock.Anything, mock.Anything)
}

func TestMergeLineRejectsParentKind(t *testing.T) {
	service := &MergeService{}
	bill := &models.BillOfRelations{ProductID: 1}

	err := service.mergeLine(nil, bill, models.BufferLine{
		Kind:            metadata.SupplyParent,
		TargetProductID: 2,
		Qty:             decimal.NewFromInt(1),
		Unit:            "pcs",
	})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}
