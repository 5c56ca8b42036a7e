package models

// SerializedUnit is one physical, individually identified instance of a
// product.
type SerializedUnit struct {
	ID          int      `json:"id" db:"unit_id"`
	Serial      string   `json:"serial" db:"serial"`
	Product     Product  `json:"product"`
	Location    Location `json:"location,omitempty"`
	IsPrincipal bool     `json:"is_principal"`
}

type FlatSerializedUnitRecord struct {
	ID           int    `db:"unit_id"`
	Serial       string `db:"serial"`
	IsPrincipal  bool   `db:"is_principal"`
	ProductID    int    `db:"product_id"`
	ProductName  string `db:"product_name"`
	ProductUnit  string `db:"product_unit"`
	LocationID   int    `db:"location_id"`
	LocationName string `db:"location_name"`
}

func (fu *FlatSerializedUnitRecord) TransformToUnit() SerializedUnit {
	return SerializedUnit{
		ID:          fu.ID,
		Serial:      fu.Serial,
		IsPrincipal: fu.IsPrincipal,
		Product: Product{
			ID:   fu.ProductID,
			Name: fu.ProductName,
			Unit: fu.ProductUnit,
		},
		Location: Location{
			ID:   fu.LocationID,
			Name: fu.LocationName,
		},
	}
}
