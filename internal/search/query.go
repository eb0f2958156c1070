package search

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ddhiman-alt/nearpaws/internal/apperror"
	"github.com/ddhiman-alt/nearpaws/internal/models"
)

const (
	DefaultPage        = 1
	DefaultListLimit   = 10
	DefaultNearbyLimit = 12
	MaxLimit           = 100
)

// Filter is the equality/substring predicate shared by every listing query.
// Empty fields impose no constraint, except Status which always has a value.
type Filter struct {
	Status  models.PetStatus
	Species string
	Gender  string
	Size    string
	Search  string
}

// NamePattern is the case-insensitive regex for the name search.
func (f Filter) NamePattern() string {
	return regexp.QuoteMeta(f.Search)
}

// Matches evaluates the filter against a stored pet.
func (f Filter) Matches(p *models.Pet) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Species != "" && p.Species != f.Species {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.Size != "" && p.Size != f.Size {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

type Pagination struct {
	Page  int
	Limit int
}

// Skip saturates at math.MaxInt instead of wrapping for huge pages.
func (p Pagination) Skip() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// SortField orders plain listings. Desc puts larger values first.
type SortField struct {
	Field string
	Desc  bool
}

var SortNewest = SortField{Field: "createdAt", Desc: true}

var listSortFields = map[string]bool{
	"createdAt":   true,
	"name":        true,
	"adoptionFee": true,
}

type Point struct {
	Lat float64
	Lng float64
}

// Radius restricts results to a circle around Center.
type Radius struct {
	Center Point
	Km     float64
}

// boundaryToleranceMeters absorbs float error so points placed exactly on the
// circle stay inside it.
const boundaryToleranceMeters = 1e-3

// WithinMeters reports whether a distance falls inside a radius in km,
// boundary included.
func WithinMeters(distanceMeters, radiusKm float64) bool {
	return distanceMeters <= MaxMeters(radiusKm)
}

// MaxMeters is the largest distance, in meters, still inside a radius in km.
func MaxMeters(radiusKm float64) float64 {
	return radiusKm*1000 + boundaryToleranceMeters
}

// Contains reports whether the point lies inside the circle, boundary included.
func (r Radius) Contains(lat, lng float64) bool {
	return WithinMeters(HaversineMeters(r.Center.Lat, r.Center.Lng, lat, lng), r.Km)
}

// ListQuery drives GET /pets.
type ListQuery struct {
	Filter
	Pagination
	Sort SortField
	Geo  *Radius
}

// Order is the ranking of a nearby search.
type Order int

const (
	OrderNearest Order = iota
	OrderFarthest
	OrderNewest
	OrderOldest
)

func (o Order) String() string {
	switch o {
	case OrderFarthest:
		return "farthest"
	case OrderNewest:
		return "newest"
	case OrderOldest:
		return "oldest"
	default:
		return "nearest"
	}
}

// NearbyQuery drives GET /pets/nearby. RadiusKm nil means no distance limit.
type NearbyQuery struct {
	Filter
	Pagination
	Center   Point
	RadiusKm *float64
	Order    Order
}

// Fallback is the plain listing served when the geospatial ranking fails:
// same filter and page, newest first, no distance limit.
func (q NearbyQuery) Fallback() ListQuery {
	return ListQuery{
		Filter:     q.Filter,
		Pagination: q.Pagination,
		Sort:       SortNewest,
	}
}

func lower(v url.Values, key string) string {
	return strings.ToLower(strings.TrimSpace(v.Get(key)))
}

func parseFilter(v url.Values) Filter {
	f := Filter{
		Status:  models.PetStatus(lower(v, "status")),
		Species: lower(v, "species"),
		Gender:  lower(v, "gender"),
		Size:    lower(v, "size"),
		Search:  strings.TrimSpace(v.Get("search")),
	}
	if f.Status == "" {
		f.Status = models.PetStatusAvailable
	}
	return f
}

// positiveInt coerces malformed, zero or negative values to def.
func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parsePagination(v url.Values, defaultLimit int) Pagination {
	limit := positiveInt(v.Get("limit"), defaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// Keeps (page-1)*limit inside int; such a page is empty anyway.
	page := positiveInt(v.Get("page"), DefaultPage)
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return Pagination{Page: page, Limit: limit}
}

func parseFinite(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parsePoint(v url.Values) (Point, error) {
	lat, okLat := parseFinite(v.Get("latitude"))
	lng, okLng := parseFinite(v.Get("longitude"))
	if !okLat || !okLng {
		return Point{}, apperror.ValidationFailed("latitude", "Invalid coordinates")
	}
	if !models.ValidCoordinates(lat, lng) {
		return Point{}, apperror.ValidationFailed("latitude", "Coordinates out of range")
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// parseRadius distinguishes an absent distance (nil) from an explicit one.
func parseRadius(v url.Values) (*float64, error) {
	raw := strings.TrimSpace(v.Get("distance"))
	if raw == "" {
		return nil, nil
	}
	km, ok := parseFinite(raw)
	if !ok || km < 0 {
		return nil, apperror.ValidationFailed("distance", "Invalid distance")
	}
	return &km, nil
}

func parseListSort(raw string) SortField {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	field := strings.TrimPrefix(raw, "-")
	if !listSortFields[field] {
		return SortNewest
	}
	return SortField{Field: field, Desc: desc}
}

func parseOrder(sort, direction string) Order {
	switch strings.TrimSpace(sort) {
	case "createdAt":
		return OrderOldest
	case "-createdAt":
		return OrderNewest
	case "distance":
		if strings.EqualFold(strings.TrimSpace(direction), "desc") {
			return OrderFarthest
		}
	}
	return OrderNearest
}

func present(v url.Values, key string) bool {
	return strings.TrimSpace(v.Get(key)) != ""
}

// ParseListQuery normalizes the query string of GET /pets. The radius filter
// applies only when latitude, longitude and distance are all given.
func ParseListQuery(v url.Values) (ListQuery, error) {
	q := ListQuery{
		Filter:     parseFilter(v),
		Pagination: parsePagination(v, DefaultListLimit),
		Sort:       parseListSort(v.Get("sort")),
	}

	if present(v, "latitude") && present(v, "longitude") && present(v, "distance") {
		center, err := parsePoint(v)
		if err != nil {
			return ListQuery{}, err
		}
		km, err := parseRadius(v)
		if err != nil {
			return ListQuery{}, err
		}
		q.Geo = &Radius{Center: center, Km: *km}
	}
	return q, nil
}

// ParseNearbyQuery normalizes the query string of GET /pets/nearby.
func ParseNearbyQuery(v url.Values) (NearbyQuery, error) {
	if !present(v, "latitude") || !present(v, "longitude") {
		return NearbyQuery{}, apperror.ValidationFailed("latitude", "Please provide latitude and longitude")
	}
	center, err := parsePoint(v)
	if err != nil {
		return NearbyQuery{}, err
	}
	radius, err := parseRadius(v)
	if err != nil {
		return NearbyQuery{}, err
	}

	return NearbyQuery{
		Filter:     parseFilter(v),
		Pagination: parsePagination(v, DefaultNearbyLimit),
		Center:     center,
		RadiusKm:   radius,
		Order:      parseOrder(v.Get("sort"), v.Get("sortDirection")),
	}, nil
}
