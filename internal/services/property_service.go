package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eastgroup/territory-api/internal/logger"
	"github.com/eastgroup/territory-api/internal/metrics"
	"github.com/eastgroup/territory-api/internal/models"
	"github.com/eastgroup/territory-api/internal/repository"
)

// DefaultCacheTTL is the property table cache lifetime used when the
// configuration does not override it.
const DefaultCacheTTL = 600 * time.Second

// ErrDataSourceUnavailable indicates the store query or connection failed.
// It is recoverable at the presentation boundary: the pipeline halts for the
// cycle and the failure is reported to the user instead of crashing.
var ErrDataSourceUnavailable = errors.New("data source unavailable")

// FilterCriteria is the set of user-chosen predicates applied to the loaded
// table. Criteria combine with logical AND. An empty Cities or ClearHeights
// set retains nothing: no selection means show nothing, not show all.
type FilterCriteria struct {
	Cities           []string
	MinSquareFootage int
	MaxSquareFootage int
	ClearHeights     []int
}

// Metrics is the aggregate summary of a property table.
// AverageSquareFootage is nil when the table is empty; it is never reported
// as zero or NaN.
type Metrics struct {
	Count                int      `json:"count"`
	TotalSquareFootage   int      `json:"total_square_footage"`
	AverageSquareFootage *float64 `json:"average_square_footage"`
}

// Snapshot is one cached load of the property table: the immutable table,
// the load timestamp, and the no-data advisory. The cache entry is replaced
// wholesale on refresh so readers never observe a partially built table.
type Snapshot struct {
	Table    models.PropertyTable
	LoadedAt time.Time
	NoData   bool
}

// PropertyService defines the dashboard pipeline exposed to the
// presentation boundary.
type PropertyService interface {
	// Load returns the current property table snapshot, reloading from the
	// store only when the cached snapshot is older than the TTL.
	// Returns ErrDataSourceUnavailable for query/connection failures and a
	// geometry decoding error when any row's WKT fails to parse; either
	// failure halts the load cycle without retaining a partial table.
	Load(ctx context.Context) (*Snapshot, error)

	// Apply filters a table by the given criteria. Pure function: the input
	// table is never mutated and relative order of retained records is
	// preserved.
	Apply(table models.PropertyTable, criteria FilterCriteria) models.PropertyTable

	// Summarize computes count, total and mean square footage over a table.
	Summarize(table models.PropertyTable) Metrics
}

// propertyService is the concrete implementation of PropertyService.
type propertyService struct {
	repo repository.PropertyRepository
	log  *logger.Logger
	ttl  time.Duration

	// mu guards cached. Holding it across the refresh means concurrent
	// expiry triggers at most one store query per TTL window.
	mu     sync.Mutex
	cached *Snapshot

	// now is swapped out in tests to control TTL expiry.
	now func() time.Time
}

// NewPropertyService creates a new instance of PropertyService.
// A non-positive ttl falls back to DefaultCacheTTL.
func NewPropertyService(repo repository.PropertyRepository, log *logger.Logger, ttl time.Duration) PropertyService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &propertyService{
		repo: repo,
		log:  log,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Load returns the cached snapshot when it is still fresh, otherwise queries
// the store, decodes every row, and atomically replaces the cache entry.
func (s *propertyService) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.cached.LoadedAt) < s.ttl {
		metrics.CacheHits.Inc()
		s.log.Debug("Serving cached property table", map[string]interface{}{
			"rows":        len(s.cached.Table),
			"age_seconds": int(s.now().Sub(s.cached.LoadedAt).Seconds()),
		})
		return s.cached, nil
	}

	metrics.CacheMisses.Inc()
	s.log.Info("Loading property table from store", map[string]interface{}{
		"ttl_seconds": int(s.ttl.Seconds()),
	})

	start := s.now()
	table, err := s.repo.ListProperties(ctx)
	if err != nil {
		s.log.Error("Failed to load property table", err, nil)

		// When the store answered but a row's point text was unusable,
		// keep the geometry error distinguishable; everything else is
		// the store being unavailable.
		if errors.Is(err, models.ErrMalformedGeometry) || errors.Is(err, models.ErrUnsupportedGeometryType) {
			return nil, fmt.Errorf("load cycle aborted: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
	}

	metrics.LoadDuration.Observe(s.now().Sub(start).Seconds())
	metrics.TableRows.Set(float64(len(table)))

	snapshot := &Snapshot{
		Table:    table,
		LoadedAt: s.now(),
		NoData:   len(table) == 0,
	}

	if snapshot.NoData {
		s.log.Warn("No data returned from the property table", nil)
	} else {
		s.log.Info("Property table loaded", map[string]interface{}{
			"rows": len(table),
		})
	}

	s.cached = snapshot
	return snapshot, nil
}

// Apply retains a record iff its city is in the city set, its square footage
// falls within the inclusive [min, max] range, and its clear height is in the
// height set. Membership in an empty set is false, so an empty selection
// yields an empty result by construction.
func (s *propertyService) Apply(table models.PropertyTable, criteria FilterCriteria) models.PropertyTable {
	citySet := make(map[string]struct{}, len(criteria.Cities))
	for _, city := range criteria.Cities {
		citySet[city] = struct{}{}
	}

	heightSet := make(map[int]struct{}, len(criteria.ClearHeights))
	for _, h := range criteria.ClearHeights {
		heightSet[h] = struct{}{}
	}

	filtered := models.PropertyTable{}
	for _, record := range table {
		if _, ok := citySet[record.City]; !ok {
			continue
		}
		if record.SquareFootage < criteria.MinSquareFootage || record.SquareFootage > criteria.MaxSquareFootage {
			continue
		}
		if _, ok := heightSet[record.ClearHeightFt]; !ok {
			continue
		}
		filtered = append(filtered, record)
	}

	return filtered
}

// Summarize computes the aggregate metrics over a table. Sum and count are
// exact; the average is sum divided by count and is left nil for an empty
// table.
func (s *propertyService) Summarize(table models.PropertyTable) Metrics {
	m := Metrics{Count: len(table)}

	for _, record := range table {
		m.TotalSquareFootage += record.SquareFootage
	}

	if m.Count > 0 {
		avg := float64(m.TotalSquareFootage) / float64(m.Count)
		m.AverageSquareFootage = &avg
	}

	return m
}
