package models

// PropertyRecord is one row of the territory_properties table with its
// geometry decoded into a Point. Nullable money columns use pointers to
// distinguish NULL from zero.
type PropertyRecord struct {
	Address             string   `json:"address"`
	City                string   `json:"city"`
	State               string   `json:"state"`
	ZipCode             string   `json:"zip_code"`
	SquareFootage       int      `json:"square_footage"`
	ClearHeightFt       int      `json:"clear_height_ft"`
	DockDoors           int      `json:"dock_doors"`
	YearBuilt           int      `json:"year_built"`
	LastSalePrice       *float64 `json:"last_sale_price"`
	CurrentLeaseRatePSF *float64 `json:"current_lease_rate_psf"`
	IsVacant            bool     `json:"is_vacant"`
	Location            Point    `json:"location"`
}

// PropertyTable is an ordered sequence of property records. Order follows the
// store's return order; it carries no meaning but must be stable for display.
// A table is built once per cache refresh and never mutated afterwards.
type PropertyTable []PropertyRecord
