package explosion

import (
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/shopspring/decimal"
)

// ItemPrice pairs one exploded item with its allocated share of the
// principal's received price.
type ItemPrice struct {
	Item  ExplodedItem    `json:"item"`
	Price decimal.Decimal `json:"price"`
}

// Allocation is the result of spreading a received price across an
// exploded set.
type Allocation struct {
	Items          []ItemPrice     `json:"items"`
	PrincipalPrice decimal.Decimal `json:"principal_price"`
}

type Allocator struct{}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate distributes the received price across the exploded items per
// the bill's policies. All prices are rounded to 2 decimals; the last
// item absorbs the rounding remainder so the shares sum to the allocated
// total.
func (a *Allocator) Allocate(price decimal.Decimal, items []ExplodedItem, bill *models.BillOfRelations) Allocation {
	if bill.ParentValuation == metadata.ValuationFull && bill.ReceiveParentStock {
		return Allocation{
			Items:          zeroPrices(items),
			PrincipalPrice: price.Round(2),
		}
	}

	var shares []decimal.Decimal
	switch {
	case len(items) == 0:
		shares = nil
	case bill.AllocationPolicy == metadata.AllocationEqualSplit:
		shares = equalSplit(price, len(items))
	default:
		shares = prorataByStandardCost(price, items)
	}

	allocation := Allocation{PrincipalPrice: decimal.Zero}
	if bill.ParentValuation == metadata.ValuationFull {
		allocation.PrincipalPrice = price.Round(2)
	}

	for i, item := range items {
		allocation.Items = append(allocation.Items, ItemPrice{Item: item, Price: shares[i]})
	}

	return allocation
}

func prorataByStandardCost(price decimal.Decimal, items []ExplodedItem) []decimal.Decimal {
	weights := make([]decimal.Decimal, len(items))
	total := decimal.Zero
	for i, item := range items {
		weights[i] = item.Product.StandardCost.Mul(item.Quantity)
		total = total.Add(weights[i])
	}

	if !total.IsPositive() {
		return equalSplit(price, len(items))
	}

	shares := make([]decimal.Decimal, len(items))
	allocated := decimal.Zero
	for i := range items {
		if i == len(items)-1 {
			shares[i] = price.Round(2).Sub(allocated)
			break
		}
		shares[i] = price.Mul(weights[i]).Div(total).Round(2)
		allocated = allocated.Add(shares[i])
	}

	return shares
}

func equalSplit(price decimal.Decimal, count int) []decimal.Decimal {
	shares := make([]decimal.Decimal, count)
	each := price.Div(decimal.NewFromInt(int64(count))).Round(2)

	allocated := decimal.Zero
	for i := 0; i < count; i++ {
		if i == count-1 {
			shares[i] = price.Round(2).Sub(allocated)
			break
		}
		shares[i] = each
		allocated = allocated.Add(each)
	}

	return shares
}

func zeroPrices(items []ExplodedItem) []ItemPrice {
	prices := make([]ItemPrice, 0, len(items))
	for _, item := range items {
		prices = append(prices, ItemPrice{Item: item, Price: decimal.Zero})
	}
	return prices
}
