package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ridemyway/ridemyway/identity"
)

func (h *Handler) HandleSignup(c echo.Context) error {
	var in identity.SignupInput
	if err := c.Bind(&in); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if _, err := h.idp.Signup(c.Request().Context(), in); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, message{"Signup successful. Please check your email to verify your account."})
}

func (h *Handler) HandleVerifyEmail(c echo.Context) error {
	sess, err := h.idp.VerifyEmail(c.Request().Context(), c.QueryParam("email"), c.QueryParam("token"))
	if err != nil {
		return h.fail(c, err)
	}
	h.setToken(c, sess.Token, h.idp.TokenTTL())
	return c.JSON(http.StatusOK, message{"Email verified and logged in successfully!"})
}

func (h *Handler) HandleLogin(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	sess, err := h.idp.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return h.fail(c, err)
	}
	h.setToken(c, sess.Token, h.idp.TokenTTL())
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) HandleLogout(c echo.Context) error {
	h.setToken(c, "", -time.Second)
	return c.JSON(http.StatusOK, message{"Logged out successfully"})
}

func (h *Handler) HandleMe(c echo.Context) error {
	u, err := h.idp.Me(c.Request().Context(), principal(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": u})
}

// setToken writes the token cookie; a negative ttl deletes it.
func (h *Handler) setToken(c echo.Context, token string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
	if h.secureCookie {
		cookie.SameSite = http.SameSiteNoneMode
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	}
	c.SetCookie(cookie)
}
