// Package api exposes the ride services and the identity provider over HTTP
// using Echo.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/identity"
	"github.com/ridemyway/ridemyway/logger"
	"github.com/ridemyway/ridemyway/ride"
	"go.uber.org/zap"
)

type Handler struct {
	rides        *ride.Service
	idp          *identity.Provider
	secureCookie bool
}

type HandlerOption func(*Handler)

// WithSecureCookies marks the token cookie Secure with SameSite=None so it
// is sent on cross-site requests from the frontend. Browsers drop such
// cookies over plain HTTP, so development servers leave it off.
func WithSecureCookies(secure bool) HandlerOption {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

func NewHandler(rides *ride.Service, idp *identity.Provider, opts ...HandlerOption) *Handler {
	h := &Handler{rides: rides, idp: idp}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	driver := RequireRole(domain.RoleDriver)
	passenger := RequireRole(domain.RolePassenger)

	auth := g.Group("/auth")
	auth.POST("/signup", h.HandleSignup)
	auth.GET("/verify-email", h.HandleVerifyEmail)
	auth.POST("/login", h.HandleLogin)
	auth.POST("/logout", h.HandleLogout)
	auth.GET("/me", h.HandleMe, h.AuthMiddleware)

	// Static segments win over :id in Echo's router, so my-offers and
	// my-requests never reach HandleGetRide.
	g.GET("/rides", h.HandleListRides)
	g.GET("/rides/my-offers", h.HandleMyOffers, h.AuthMiddleware, driver)
	g.GET("/rides/my-requests", h.HandleMyRequests, h.AuthMiddleware, passenger)
	g.GET("/rides/:id", h.HandleGetRide)
	g.POST("/rides", h.HandleCreateRide, h.AuthMiddleware, driver)
	g.DELETE("/rides/:id", h.HandleDeleteRide, h.AuthMiddleware)
	g.POST("/rides/:rideId/request", h.HandleRequestSeat, h.AuthMiddleware, passenger)

	g.GET("/ride-requests/driver", h.HandleDriverRequests, h.AuthMiddleware, driver)
	g.PUT("/ride-requests/:id", h.HandleDecide, h.AuthMiddleware)
	g.DELETE("/ride-requests/:id", h.HandleDeleteRequest, h.AuthMiddleware)
}

// Error writes the JSON error body used by every endpoint.
func (h *Handler) Error(c echo.Context, code int, message string, err error) error {
	resp := map[string]interface{}{
		"status": message,
		"code":   code,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(code, resp)
}

// fail maps a service error onto its HTTP status. Unexpected errors are
// logged and reported without their detail.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return h.Error(c, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, domain.ErrAlreadyDecided):
		return h.Error(c, http.StatusBadRequest, "Request already decided", err)
	case errors.Is(err, domain.ErrNoSeatsAvailable):
		return h.Error(c, http.StatusBadRequest, "No available seats left", err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return h.Error(c, http.StatusBadRequest, "Invalid credentials", err)
	case errors.Is(err, domain.ErrInvalidVerification):
		return h.Error(c, http.StatusBadRequest, "Invalid or expired verification link", err)
	case errors.Is(err, domain.ErrUnauthenticated):
		return h.Error(c, http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, domain.ErrForbidden):
		return h.Error(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, domain.ErrNotVerified):
		return h.Error(c, http.StatusForbidden, "Please verify your email before logging in", err)
	case errors.Is(err, domain.ErrNotFound):
		return h.Error(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, domain.ErrEmailTaken):
		return h.Error(c, http.StatusConflict, "Email already registered", err)
	case errors.Is(err, domain.ErrRateLimited):
		return h.Error(c, http.StatusTooManyRequests, "Too many attempts, try again later", err)
	}

	logger.Log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	if errors.Is(err, domain.ErrTransactionFailed) {
		return h.Error(c, http.StatusInternalServerError, "Something went wrong", domain.ErrTransactionFailed)
	}
	return h.Error(c, http.StatusInternalServerError, "Internal server error", nil)
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
	}
	return uint(id), nil
}

type message struct {
	Message string `json:"message"`
}
