package services

import (
	"math"
	"sort"

	"github.com/eastgroup/territory-api/internal/models"
)

// KPISet is the headline metric trio shown above the dashboard: property
// count, total square footage in millions, and average building size.
// AverageSquareFootage is nil when no properties match the filters and must
// be rendered as "N/A", never as zero.
type KPISet struct {
	PropertyCount              int      `json:"property_count"`
	TotalSquareFootageMillions float64  `json:"total_square_footage_millions"`
	AverageSquareFootage       *float64 `json:"average_square_footage"`
}

// MapPoint is one geo-plottable record: position, color key (city), marker
// size (square footage), and hover label (address).
type MapPoint struct {
	Lon           float64 `json:"lon"`
	Lat           float64 `json:"lat"`
	City          string  `json:"city"`
	SquareFootage int     `json:"square_footage"`
	Address       string  `json:"address"`
}

// displayColumns is the fixed allow-list of columns the table view may show,
// in display order.
var displayColumns = []string{
	"address",
	"city",
	"state",
	"zip_code",
	"square_footage",
	"clear_height_ft",
	"dock_doors",
	"year_built",
	"last_sale_price",
	"current_lease_rate_psf",
	"is_vacant",
}

// BuildKPIs derives the KPI set from aggregate metrics. Total square footage
// is reported in millions rounded to two decimals to match the dashboard
// display format.
func BuildKPIs(m Metrics) KPISet {
	millions := float64(m.TotalSquareFootage) / 1_000_000
	return KPISet{
		PropertyCount:              m.Count,
		TotalSquareFootageMillions: math.Round(millions*100) / 100,
		AverageSquareFootage:       m.AverageSquareFootage,
	}
}

// MapView projects a table into its geo-plottable subset.
func MapView(table models.PropertyTable) []MapPoint {
	points := make([]MapPoint, 0, len(table))
	for _, record := range table {
		points = append(points, MapPoint{
			Lon:           record.Location.Lon,
			Lat:           record.Location.Lat,
			City:          record.City,
			SquareFootage: record.SquareFootage,
			Address:       record.Address,
		})
	}
	return points
}

// TableView projects a table into display rows restricted to the column
// allow-list. When requested is empty every allowed column is included;
// otherwise only the requested columns that appear in the allow-list are
// kept, in allow-list order. Unknown column names are silently omitted
// rather than treated as an error.
func TableView(table models.PropertyTable, requested []string) ([]string, []map[string]interface{}) {
	columns := resolveColumns(requested)

	rows := make([]map[string]interface{}, 0, len(table))
	for _, record := range table {
		row := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			row[col] = columnValue(record, col)
		}
		rows = append(rows, row)
	}

	return columns, rows
}

// resolveColumns intersects the requested column names with the allow-list,
// preserving allow-list order.
func resolveColumns(requested []string) []string {
	if len(requested) == 0 {
		return append([]string(nil), displayColumns...)
	}

	want := make(map[string]struct{}, len(requested))
	for _, col := range requested {
		want[col] = struct{}{}
	}

	columns := make([]string, 0, len(requested))
	for _, col := range displayColumns {
		if _, ok := want[col]; ok {
			columns = append(columns, col)
		}
	}
	return columns
}

// columnValue extracts a display column from a record. Nullable columns come
// back as nil pointers and serialize to JSON null.
func columnValue(record models.PropertyRecord, col string) interface{} {
	switch col {
	case "address":
		return record.Address
	case "city":
		return record.City
	case "state":
		return record.State
	case "zip_code":
		return record.ZipCode
	case "square_footage":
		return record.SquareFootage
	case "clear_height_ft":
		return record.ClearHeightFt
	case "dock_doors":
		return record.DockDoors
	case "year_built":
		return record.YearBuilt
	case "last_sale_price":
		return record.LastSalePrice
	case "current_lease_rate_psf":
		return record.CurrentLeaseRatePSF
	case "is_vacant":
		return record.IsVacant
	default:
		return nil
	}
}

// FilterOptions is the set of values the filter controls are built from:
// the distinct cities and clear heights present in the table plus the
// square footage bounds.
type FilterOptions struct {
	Cities           []string `json:"cities"`
	ClearHeights     []int    `json:"clear_heights"`
	MinSquareFootage int      `json:"min_square_footage"`
	MaxSquareFootage int      `json:"max_square_footage"`
}

// BuildFilterOptions derives the filter control values from a loaded table.
// Cities and heights are sorted; bounds are zero for an empty table.
func BuildFilterOptions(table models.PropertyTable) FilterOptions {
	opts := FilterOptions{
		Cities:       []string{},
		ClearHeights: []int{},
	}
	if len(table) == 0 {
		return opts
	}

	citySet := make(map[string]struct{})
	heightSet := make(map[int]struct{})
	opts.MinSquareFootage = table[0].SquareFootage
	opts.MaxSquareFootage = table[0].SquareFootage

	for _, record := range table {
		citySet[record.City] = struct{}{}
		heightSet[record.ClearHeightFt] = struct{}{}
		if record.SquareFootage < opts.MinSquareFootage {
			opts.MinSquareFootage = record.SquareFootage
		}
		if record.SquareFootage > opts.MaxSquareFootage {
			opts.MaxSquareFootage = record.SquareFootage
		}
	}

	for city := range citySet {
		opts.Cities = append(opts.Cities, city)
	}
	for h := range heightSet {
		opts.ClearHeights = append(opts.ClearHeights, h)
	}
	sort.Strings(opts.Cities)
	sort.Ints(opts.ClearHeights)

	return opts
}
