package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Geometry decoding errors. Callers distinguish text that does not match the
// point grammar from text that is valid WKT of a type we do not handle.
var (
	// ErrMalformedGeometry indicates WKT text that does not parse as a point:
	// missing parentheses, non-numeric coordinates, wrong coordinate count,
	// or empty input.
	ErrMalformedGeometry = fmt.Errorf("malformed geometry")

	// ErrUnsupportedGeometryType indicates well-formed WKT of a geometry type
	// other than POINT. The property dataset only carries points, but other
	// types must be detected rather than mis-parsed.
	ErrUnsupportedGeometryType = fmt.Errorf("unsupported geometry type")
)

// wktGeometryTypes are the non-point WKT type keywords we recognize so that
// encountering one yields ErrUnsupportedGeometryType instead of a generic
// parse failure.
var wktGeometryTypes = []string{
	"MULTIPOINT",
	"LINESTRING",
	"MULTILINESTRING",
	"POLYGON",
	"MULTIPOLYGON",
	"GEOMETRYCOLLECTION",
}

// Point is a single WGS84 coordinate pair decoded from PostGIS WKT text.
// Longitude is the WKT x coordinate and latitude the y coordinate.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// ParsePoint decodes a WKT point string of the form "POINT(x y)" into a Point.
// PostGIS emits both "POINT(x y)" and "POINT (x y)"; whitespace around the
// parentheses is tolerated. Returns ErrMalformedGeometry when the text does
// not match the point grammar and ErrUnsupportedGeometryType when the text
// carries a recognized non-point WKT keyword.
func ParsePoint(wkt string) (Point, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return Point{}, fmt.Errorf("%w: empty input", ErrMalformedGeometry)
	}

	upper := strings.ToUpper(s)
	for _, typ := range wktGeometryTypes {
		if strings.HasPrefix(upper, typ) {
			return Point{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometryType, typ)
		}
	}

	if !strings.HasPrefix(upper, "POINT") {
		return Point{}, fmt.Errorf("%w: missing POINT keyword in %q", ErrMalformedGeometry, wkt)
	}

	rest := strings.TrimSpace(s[len("POINT"):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return Point{}, fmt.Errorf("%w: missing parentheses in %q", ErrMalformedGeometry, wkt)
	}

	coords := strings.Fields(rest[1 : len(rest)-1])
	if len(coords) != 2 {
		return Point{}, fmt.Errorf("%w: expected 2 coordinates, got %d in %q",
			ErrMalformedGeometry, len(coords), wkt)
	}

	lon, err := strconv.ParseFloat(coords[0], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: invalid longitude %q", ErrMalformedGeometry, coords[0])
	}
	lat, err := strconv.ParseFloat(coords[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: invalid latitude %q", ErrMalformedGeometry, coords[1])
	}

	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return Point{}, fmt.Errorf("%w: non-finite coordinates in %q", ErrMalformedGeometry, wkt)
	}

	return Point{Lon: lon, Lat: lat}, nil
}

// WKT renders the point back into its "POINT(x y)" textual form.
func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%s %s)",
		strconv.FormatFloat(p.Lon, 'f', -1, 64),
		strconv.FormatFloat(p.Lat, 'f', -1, 64))
}

// Scan implements sql.Scanner for reading point geometry from the database.
// The repository selects ST_AsText(coordinates), so the driver hands us WKT
// as either string or []byte.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		return fmt.Errorf("%w: NULL geometry", ErrMalformedGeometry)
	}

	var wkt string
	switch v := value.(type) {
	case string:
		wkt = v
	case []byte:
		wkt = string(v)
	default:
		return fmt.Errorf("failed to scan Point: expected string or []byte, got %T", value)
	}

	parsed, err := ParsePoint(wkt)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// Value implements driver.Valuer, rendering the point as WKT for use with
// ST_GeomFromText in raw SQL.
func (p Point) Value() (driver.Value, error) {
	return p.WKT(), nil
}
