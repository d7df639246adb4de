package http

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/clustering"
	"github.com/fishivo/geocore/internal/pkg/geospatial"
)

// queryFloat reads a required float query parameter. NaN and the
// infinities are treated as missing.
func queryFloat(c *fiber.Ctx, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// queryBounds reads ne_lat, ne_lng, sw_lat and sw_lng. Range checks are
// left to the caller.
func queryBounds(c *fiber.Ctx) (domain.MapBounds, bool) {
	var b domain.MapBounds
	var ok1, ok2, ok3, ok4 bool
	b.NE.Latitude, ok1 = queryFloat(c, "ne_lat")
	b.NE.Longitude, ok2 = queryFloat(c, "ne_lng")
	b.SW.Latitude, ok3 = queryFloat(c, "sw_lat")
	b.SW.Longitude, ok4 = queryFloat(c, "sw_lng")
	return b, ok1 && ok2 && ok3 && ok4
}

// MarkersHandler clusters the spots in a viewport for a zoom level.
func MarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, ok := queryBounds(c)
		if !ok {
			return errBadRequest(c, "ne_lat, ne_lng, sw_lat and sw_lng are required")
		}
		zoom, ok := queryFloat(c, "zoom")
		if !ok {
			return errBadRequest(c, "zoom is required")
		}

		q := usecases.MarkerQuery{
			Bounds: bounds,
			Zoom:   zoom,
			Target: clustering.PerformanceTarget(c.Query("target")),
		}
		if c.Query("padding") != "" {
			padding, ok := queryFloat(c, "padding")
			if !ok || padding < 0 || padding > 1 {
				return errBadRequest(c, "padding must be between 0 and 1")
			}
			q.Padding = &padding
		}

		res, err := deps.Markers.Markers(c.UserContext(), q)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(res)
	}
}

// ListSpotsHandler pages through the raw spots inside a viewport.
func ListSpotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, ok := queryBounds(c)
		if !ok {
			return errBadRequest(c, "ne_lat, ne_lng, sw_lat and sw_lng are required")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		spots, total, err := deps.Markers.Spots(c.UserContext(), bounds, offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if spots == nil {
			spots = []domain.Spot{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: spots, Pagination: pg})
	}
}

// GetSpotHandler returns a single spot by ID.
func GetSpotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "spot id is required")
		}

		spot, err := deps.Markers.Spot(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		if spot == nil {
			return errNotFound(c, "spot not found")
		}

		return c.JSON(spot)
	}
}

type parseCoordinateRequest struct {
	Input  string `json:"input"`
	Format string `json:"format"`
}

// CoordinateResponse is a parsed coordinate and the notation it was read in.
type CoordinateResponse struct {
	Format    geospatial.Notation `json:"format"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
}

// ParseCoordinateHandler parses a coordinate string in DD, DMS or DDM.
// Without a format the notation is detected.
func ParseCoordinateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req parseCoordinateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Input == "" {
			return errBadRequest(c, "input is required")
		}
		if len(req.Input) > 200 {
			return errBadRequest(c, "input too long (max 200 characters)")
		}

		notation := geospatial.DetectFormat(req.Input)
		if req.Format != "" {
			notation = geospatial.ParseNotation(req.Format)
			if notation == geospatial.NotationUnknown {
				return errBadRequest(c, "format must be one of DD, DMS, DDM")
			}
		}
		if notation == geospatial.NotationUnknown {
			return errBadRequest(c, "unrecognised coordinate format")
		}

		coord, ok := notation.Parse(req.Input)
		if !ok {
			return errBadRequest(c, "input is not a valid "+string(notation)+" coordinate")
		}

		return c.JSON(CoordinateResponse{
			Format:    notation,
			Latitude:  coord.Latitude,
			Longitude: coord.Longitude,
		})
	}
}

// FormattedCoordinate is one position rendered in every notation.
type FormattedCoordinate struct {
	DD  string `json:"dd"`
	DMS string `json:"dms"`
	DDM string `json:"ddm"`
}

func formatCoordinate(lat, lng float64) FormattedCoordinate {
	return FormattedCoordinate{
		DD:  geospatial.FormatDD(lat, lng),
		DMS: geospatial.FormatDMS(lat, lng),
		DDM: geospatial.FormatDDM(lat, lng),
	}
}

// FormatCoordinateHandler renders lat/lng in DD, DMS and DDM.
func FormatCoordinateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, ok1 := queryFloat(c, "lat")
		lng, ok2 := queryFloat(c, "lng")
		if !ok1 || !ok2 {
			return errBadRequest(c, "lat and lng are required")
		}
		if !geospatial.ValidateCoordinateBounds(lat, lng) {
			return errBadRequest(c, "lat must be within ±90 and lng within ±180")
		}

		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(formatCoordinate(lat, lng))
	}
}

// BoundsInfo describes a viewport.
type BoundsInfo struct {
	Valid   bool               `json:"valid"`
	Center  *domain.Coordinate `json:"center,omitempty"`
	AreaKm2 float64            `json:"area_km2"`
	Region  *domain.Region     `json:"region,omitempty"`
	PostGIS string             `json:"postgis,omitempty"`
	Debug   string             `json:"debug"`
}

func boundsInfo(b domain.MapBounds) BoundsInfo {
	info := BoundsInfo{
		Valid: geospatial.IsValidBounds(b),
		Debug: geospatial.FormatBoundsForDebug(b),
	}
	if !info.Valid {
		return info
	}
	center := geospatial.BoundsCenter(b)
	region := geospatial.BoundsToRegion(b)
	info.Center = &center
	info.Region = &region
	info.AreaKm2 = geospatial.BoundsArea(b)
	info.PostGIS = geospatial.BoundsToPostGIS(b)
	return info
}

// BoundsInfoHandler reports validity, center, area and the PostGIS polygon
// of a viewport.
func BoundsInfoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, ok := queryBounds(c)
		if !ok {
			return errBadRequest(c, "ne_lat, ne_lng, sw_lat and sw_lng are required")
		}
		return c.JSON(boundsInfo(bounds))
	}
}

// BoundsFromZoomHandler approximates the viewport around a point at a zoom level.
func BoundsFromZoomHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, ok1 := queryFloat(c, "lat")
		lng, ok2 := queryFloat(c, "lng")
		zoom, ok3 := queryFloat(c, "zoom")
		if !ok1 || !ok2 || !ok3 {
			return errBadRequest(c, "lat, lng and zoom are required")
		}
		if !geospatial.ValidateCoordinateBounds(lat, lng) {
			return errBadRequest(c, "lat must be within ±90 and lng within ±180")
		}
		if math.IsNaN(zoom) || zoom < 0 || zoom > usecases.MaxZoom {
			return errBadRequest(c, "zoom must be between 0 and "+strconv.Itoa(usecases.MaxZoom))
		}

		center := domain.Coordinate{Latitude: lat, Longitude: lng}
		return c.JSON(geospatial.BoundsFromZoom(center, zoom))
	}
}
