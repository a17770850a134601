package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/ride"
)

func (h *Handler) HandleCreateRide(c echo.Context) error {
	var in ride.RideInput
	if err := c.Bind(&in); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	r, err := h.rides.CreateRide(c.Request().Context(), principal(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Ride created successfully",
		"ride":    r,
	})
}

func (h *Handler) HandleListRides(c echo.Context) error {
	rides, err := h.rides.ListRides(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rides)
}

func (h *Handler) HandleGetRide(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	r, err := h.rides.GetRide(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) HandleDeleteRide(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.rides.DeleteRide(c.Request().Context(), id, principal(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, message{"Ride deleted successfully"})
}

func (h *Handler) HandleMyOffers(c echo.Context) error {
	offers, err := h.rides.MyOffers(c.Request().Context(), principal(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, offers)
}

func (h *Handler) HandleRequestSeat(c echo.Context) error {
	rideID, err := paramID(c, "rideId")
	if err != nil {
		return h.fail(c, err)
	}
	req, err := h.rides.RequestSeat(c.Request().Context(), rideID, principal(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Request submitted",
		"request": req,
	})
}

func (h *Handler) HandleMyRequests(c echo.Context) error {
	reqs, err := h.rides.MyRequests(c.Request().Context(), principal(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *Handler) HandleDriverRequests(c echo.Context) error {
	reqs, err := h.rides.DriverRequests(c.Request().Context(), principal(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, reqs)
}

// HandleDecide accepts or rejects a pending request on the caller's ride.
func (h *Handler) HandleDecide(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var body struct {
		Status domain.Status `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	d, err := h.rides.Decide(c.Request().Context(), id, body.Status, principal(c).ID)
	if err != nil {
		return h.fail(c, err)
	}

	msg := "Request rejected"
	if d.Status == domain.StatusAccepted {
		msg = "Request accepted"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  msg,
		"decision": d,
	})
}

func (h *Handler) HandleDeleteRequest(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.rides.DeleteOwnRequest(c.Request().Context(), id, principal(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, message{"Ride request deleted"})
}
