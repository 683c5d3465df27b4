package query

import (
	"fmt"
	"strconv"
	"strings"

	"twsampler/pkg/errors"
)

// MaxLength is the query-length budget of the full-archive search API.
// Over-length queries are rejected outright by the remote end, so the
// run must abort before issuing any request.
const MaxLength = 1024

// GeoFilter is a geographic query constraint. At most one filter applies
// to a query; the concrete variants are Place, PlaceCountry, PointRadius
// and BoundingBox, all validated at construction. A nil GeoFilter means
// no geographic constraint.
type GeoFilter interface {
	// Clause renders the filter as a query token.
	Clause() string
}

// Place constrains results to a named place.
type Place struct {
	name string
}

// NewPlace creates a Place filter
func NewPlace(name string) (Place, error) {
	if name == "" {
		return Place{}, fmt.Errorf("place name must not be empty")
	}
	return Place{name: name}, nil
}

func (p Place) Clause() string {
	return "place:" + p.name
}

// PlaceCountry constrains results to an ISO 3166-1 alpha-2 country.
type PlaceCountry struct {
	code string
}

// NewPlaceCountry creates a PlaceCountry filter
func NewPlaceCountry(code string) (PlaceCountry, error) {
	if code == "" {
		return PlaceCountry{}, fmt.Errorf("country code must not be empty")
	}
	return PlaceCountry{code: code}, nil
}

func (p PlaceCountry) Clause() string {
	return "place_country:" + p.code
}

// PointRadius constrains results to a circle around a point. The
// latitude is optional; the source tokens are preserved verbatim in the
// rendered clause.
type PointRadius struct {
	lon    string
	lat    string
	radius string
	hasLat bool
}

// NewPointRadius creates a PointRadius filter. lat may be empty.
func NewPointRadius(lon, lat, radius string) (PointRadius, error) {
	if err := checkLongitude(lon); err != nil {
		return PointRadius{}, err
	}
	hasLat := lat != ""
	if hasLat {
		if err := checkLatitude(lat); err != nil {
			return PointRadius{}, err
		}
	}
	if radius == "" {
		return PointRadius{}, fmt.Errorf("radius must not be empty")
	}
	return PointRadius{lon: lon, lat: lat, radius: radius, hasLat: hasLat}, nil
}

func (p PointRadius) Clause() string {
	if p.hasLat {
		return "point_radius:[" + p.lon + " " + p.lat + " " + p.radius + "]"
	}
	return "point_radius:[" + p.lon + " " + p.radius + "]"
}

// ParsePointRadius parses a `"lon lat radius"` or `"lon,radius"` string
// into a PointRadius filter.
func ParsePointRadius(s string) (PointRadius, error) {
	fields := splitCoords(s)
	switch len(fields) {
	case 2:
		return NewPointRadius(fields[0], "", fields[1])
	case 3:
		return NewPointRadius(fields[0], fields[1], fields[2])
	default:
		return PointRadius{}, fmt.Errorf(`coordinates wrong format: provide as "long. lat. radius" or "long.,lat.,radius"`)
	}
}

// BoundingBox constrains results to a west/south/east/north rectangle.
type BoundingBox struct {
	west, south, east, north string
}

// NewBoundingBox creates a BoundingBox filter
func NewBoundingBox(west, south, east, north string) (BoundingBox, error) {
	if err := checkLongitude(west); err != nil {
		return BoundingBox{}, err
	}
	if err := checkLongitude(east); err != nil {
		return BoundingBox{}, err
	}
	if err := checkLatitude(south); err != nil {
		return BoundingBox{}, err
	}
	if err := checkLatitude(north); err != nil {
		return BoundingBox{}, err
	}
	return BoundingBox{west: west, south: south, east: east, north: north}, nil
}

func (b BoundingBox) Clause() string {
	return "bounding_box:[" + b.west + " " + b.south + " " + b.east + " " + b.north + "]"
}

// ParseBoundingBox parses a `"west south east north"` (space- or
// comma-separated) string into a BoundingBox filter.
func ParseBoundingBox(s string) (BoundingBox, error) {
	fields := splitCoords(s)
	if len(fields) != 4 {
		return BoundingBox{}, fmt.Errorf(`coordinates wrong format: provide as "west_long south_lat east_long north_lat" or comma-separated`)
	}
	return NewBoundingBox(fields[0], fields[1], fields[2], fields[3])
}

func splitCoords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

func checkLongitude(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q: %w", s, err)
	}
	if v < -180 || v > 180 {
		return fmt.Errorf("invalid longitude range: %s", s)
	}
	return nil
}

func checkLatitude(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q: %w", s, err)
	}
	if v < -90 || v > 90 {
		return fmt.Errorf("invalid latitude range: %s", s)
	}
	return nil
}

// Build composes the query string: the OR-joined stop-word clause, the
// language filter, the geographic filter and the free-text options, in
// that order, space-separated. The options text is trusted verbatim.
// An empty stop-word list emits no clause for it.
func Build(stopWords []string, lang string, geo GeoFilter, options string) (string, error) {
	var parts []string

	if len(stopWords) > 0 {
		quoted := make([]string, len(stopWords))
		for i, word := range stopWords {
			quoted[i] = `"` + word + `"`
		}
		parts = append(parts, "("+strings.Join(quoted, " OR ")+")")
	}
	if lang != "" {
		parts = append(parts, "lang:"+lang)
	}
	if geo != nil {
		parts = append(parts, geo.Clause())
	}
	if options != "" {
		parts = append(parts, options)
	}

	q := strings.Join(parts, " ")
	if len(q) > MaxLength {
		return "", errors.Newf(errors.ErrorTypeQueryTooLong,
			"query length %d exceeds the %d character limit, reduce the number of stop words", len(q), MaxLength)
	}
	return q, nil
}
