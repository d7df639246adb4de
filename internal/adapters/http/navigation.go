package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/pkg/navigation"
)

type computeNavigationRequest struct {
	Prev    *domain.GPSPosition `json:"prev"`
	Current *domain.GPSPosition `json:"current"`
	Heading *float64            `json:"heading"`
}

// NavigationResponse is a navigation computation with display strings.
type NavigationResponse struct {
	domain.NavigationData
	Direction   string `json:"direction"`
	Cardinal    string `json:"cardinal"`
	COGText     string `json:"cog_text"`
	HeadingText string `json:"heading_text"`
	SOGText     string `json:"sog_text"`
}

func navigationResponse(d domain.NavigationData) NavigationResponse {
	return NavigationResponse{
		NavigationData: d,
		Direction:      navigation.CompassDirection(d.Heading),
		Cardinal:       navigation.CardinalDirection(d.Heading),
		COGText:        navigation.FormatDegrees(d.COG),
		HeadingText:    navigation.FormatDegrees(d.Heading),
		SOGText:        navigation.FormatSpeed(d.SOG),
	}
}

// ComputeNavigationHandler derives COG, SOG and distance from two fixes
// without touching any vessel session.
func ComputeNavigationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req computeNavigationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Prev == nil || req.Current == nil {
			return errBadRequest(c, "prev and current are required")
		}
		if !navigation.IsValidPosition(*req.Prev) || !navigation.IsValidPosition(*req.Current) {
			return errBadRequest(c, domain.ErrInvalidPosition.Error())
		}

		heading := navigation.COG(*req.Prev, *req.Current)
		switch {
		case req.Heading != nil:
			heading = *req.Heading
		case req.Current.Heading != nil:
			heading = *req.Current.Heading
		}

		data := navigation.Calculate(*req.Prev, *req.Current, heading)
		return c.JSON(navigationResponse(data))
	}
}

type fixRequest struct {
	domain.GPSPosition
	CompassHeading *float64 `json:"compass_heading,omitempty"`
}

// IngestFixHandler feeds one fix into a vessel's navigation session. The
// fix that opens a stream is accepted with 202 and no reading.
func IngestFixHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vessel := c.Params("vessel")
		if vessel == "" {
			return errBadRequest(c, "vessel id is required")
		}

		var req fixRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.TimestampMillis == 0 {
			req.TimestampMillis = time.Now().UnixMilli()
		}

		reading, err := deps.Navigation.Ingest(c.UserContext(), vessel, req.GPSPosition, req.CompassHeading)
		if err != nil {
			return errFromDomain(c, err)
		}
		if reading == nil {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"status": "accepted",
				"vessel": vessel,
			})
		}

		return c.JSON(reading)
	}
}

// NavigationSessionHandler returns the state of a vessel's session.
func NavigationSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Navigation.Session(c.Params("vessel"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(snap)
	}
}

// ResetNavigationHandler drops a vessel's smoothing state.
func ResetNavigationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Navigation.Reset(c.Params("vessel")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
