package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-console/internal/config"
	"github.com/iliyamo/parking-console/internal/logger"
	"github.com/iliyamo/parking-console/internal/middleware"
	"github.com/iliyamo/parking-console/internal/utils"
	"github.com/iliyamo/parking-console/internal/view"
)

// AuthHandler signs the single console operator in and out.
type AuthHandler struct {
	Cfg config.Config
	log *logger.Log
}

func NewAuthHandler(cfg config.Config, log *logger.Log) *AuthHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &AuthHandler{Cfg: cfg, log: log.WithEntryName("auth")}
}

type loginReq struct {
	Operator string `form:"operator" json:"operator"`
	Password string `form:"password" json:"password"`
}

type sessionResp struct {
	Operator string    `json:"operator"`
	Token    string    `json:"token"`
	Expires  time.Time `json:"expires"`
}

const badCredentials = "Invalid operator or password."

// LoginForm serves GET /login.  With sign-in disabled it goes straight to
// the dashboard.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	if !h.Cfg.AuthEnabled() {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return h.loginPage(c, http.StatusOK, view.LoginData{})
}

// Login checks the operator's password and issues a session cookie, or a
// bearer token for JSON clients.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Operator = strings.TrimSpace(req.Operator)

	if !h.Cfg.AuthEnabled() || req.Operator != h.Cfg.Operator || !utils.VerifyPassword(h.Cfg.OperatorPassHash, req.Password) {
		h.log.WithOperator(req.Operator).WithField("ip", c.RealIP()).Warn("sign-in refused")
		if middleware.WantsJSON(c) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": badCredentials})
		}
		return h.loginPage(c, http.StatusUnauthorized, view.LoginData{Operator: req.Operator, Error: badCredentials})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, req.Operator, h.Cfg.SessionTTLMin)
	if err != nil {
		h.log.WithErr(err).Error("sign session token failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start session"})
	}
	h.log.WithOperator(req.Operator).Info("operator signed in")

	if middleware.WantsJSON(c) {
		return c.JSON(http.StatusOK, sessionResp{Operator: req.Operator, Token: tok.Token, Expires: tok.Exp})
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Env == "prod",
	})
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout clears the session cookie.  Bearer tokens simply expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if middleware.WantsJSON(c) {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) loginPage(c echo.Context, status int, data view.LoginData) error {
	return c.Render(status, view.LoginTemplate, view.Frame{Title: "Sign in", Data: data})
}
