package repository

import (
	"context"
	"fmt"

	"github.com/eastgroup/territory-api/internal/database"
	"github.com/eastgroup/territory-api/internal/models"
)

// PropertyRepository defines the interface for property data access operations.
type PropertyRepository interface {
	// ListProperties fetches every row of the property table with its
	// geometry rendered as WKT text and decoded into a Point.
	// Returns an empty table if the table holds no rows (not an error).
	// Returns an error for database failures and for rows whose geometry
	// text fails to decode; a bad geometry aborts the whole load rather
	// than silently dropping the row.
	ListProperties(ctx context.Context) (models.PropertyTable, error)
}

// propertyRepository is the concrete implementation of PropertyRepository.
type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{
		db: db,
	}
}

// ListProperties issues the single read query the pipeline is built on.
// The geometry column is converted to WKT inside the query with ST_AsText
// so the driver hands back plain text; ORDER BY id keeps the return order
// stable across calls for display purposes.
func (r *propertyRepository) ListProperties(ctx context.Context) (models.PropertyTable, error) {
	query := `
		SELECT
			address,
			city,
			state,
			zip_code,
			square_footage,
			clear_height_ft,
			dock_doors,
			year_built,
			last_sale_price,
			current_lease_rate_psf,
			is_vacant,
			ST_AsText(coordinates) AS wkt_coordinates
		FROM territory_properties
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query territory_properties: %w", err)
	}
	defer rows.Close()

	var table models.PropertyTable

	for rows.Next() {
		var record models.PropertyRecord
		var wkt string

		err := rows.Scan(
			&record.Address,
			&record.City,
			&record.State,
			&record.ZipCode,
			&record.SquareFootage,
			&record.ClearHeightFt,
			&record.DockDoors,
			&record.YearBuilt,
			&record.LastSalePrice,
			&record.CurrentLeaseRatePSF,
			&record.IsVacant,
			&wkt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}

		// Decode WKT into the derived point. A geometry that fails to
		// parse poisons the load cycle; dropping the row would corrupt
		// aggregate counts downstream.
		point, err := models.ParsePoint(wkt)
		if err != nil {
			return nil, fmt.Errorf("failed to decode geometry for %q: %w", record.Address, err)
		}
		record.Location = point

		table = append(table, record)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	// Return empty table if no rows found (not an error)
	if table == nil {
		table = models.PropertyTable{}
	}

	return table, nil
}
