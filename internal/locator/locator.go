// Package locator finds physical dealer stores near a shopper. Store
// records live in SQLite; geocoding a free-form address stays behind
// the Geocoder interface because the mapping provider is external.
package locator

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SearchRadiusKM is the cutoff: stores farther than this from the
// search point are not returned.
const SearchRadiusKM = 50.0

// Store is one physical dealer location.
type Store struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country"`
	Phone     string  `json:"phone,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Result is a store matched by a proximity search.
type Result struct {
	Store
	// DistanceKM is rounded to whole kilometers for display.
	DistanceKM float64 `json:"distanceKm"`
}

// Geocoder resolves a free-form address to coordinates. The mapping
// provider implements it; tests use a fixed stub.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lng float64, err error)
}

// Repository reads and writes store records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Repository over an initialized database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts one store. A blank ID gets a fresh one.
func (r *Repository) Add(ctx context.Context, s Store) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, address, city, region, country, phone, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Address, s.City, s.Region, s.Country, s.Phone,
		s.Latitude, s.Longitude, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert store: %w", err)
	}
	return s.ID, nil
}

// Seed inserts stores that are not already present, keyed by id.
func (r *Repository) Seed(ctx context.Context, stores []Store) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, s := range stores {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO stores (id, name, address, city, region, country, phone, latitude, longitude, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.Address, s.City, s.Region, s.Country, s.Phone,
			s.Latitude, s.Longitude, now)
		if err != nil {
			return fmt.Errorf("failed to seed store %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// List returns every store, name-ordered.
func (r *Repository) List(ctx context.Context) ([]Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, city, region, country, phone, latitude, longitude
		FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// Search returns stores within SearchRadiusKM of the point, nearest
// first, with distances rounded to whole kilometers.
func (r *Repository) Search(ctx context.Context, lat, lng float64) ([]Result, error) {
	stores, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	// Sort on the exact distance; rounding first would make near-equal
	// stores tie and their order arbitrary.
	var results []Result
	for _, s := range stores {
		d := haversineKM(lat, lng, s.Latitude, s.Longitude)
		if d > SearchRadiusKM {
			continue
		}
		results = append(results, Result{Store: s, DistanceKM: d})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKM < results[j].DistanceKM
	})
	for i := range results {
		results[i].DistanceKM = math.Round(results[i].DistanceKM)
	}
	return results, nil
}

// SearchAddress geocodes a free-form address and searches around it.
func (r *Repository) SearchAddress(ctx context.Context, g Geocoder, query string) ([]Result, error) {
	lat, lng, err := g.Geocode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", query, err)
	}
	return r.Search(ctx, lat, lng)
}

func scanStore(rows *sql.Rows) (Store, error) {
	var s Store
	var region, phone sql.NullString
	err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.City, &region, &s.Country,
		&phone, &s.Latitude, &s.Longitude)
	if err != nil {
		return Store{}, fmt.Errorf("failed to scan store: %w", err)
	}
	s.Region = region.String
	s.Phone = phone.String
	return s, nil
}

const earthRadiusKM = 6371.0

// haversineKM is the great-circle distance between two coordinates.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
