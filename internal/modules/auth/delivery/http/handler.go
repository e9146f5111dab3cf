package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/auth/dto"
	auth "talib.app/backend/internal/modules/auth/service"
	"talib.app/backend/pkg/response"
)

const (
	stateCookie    = "oauth_state"
	stateCookieAge = 10 * 60
)

type AuthHandler struct {
	service      auth.AuthService
	frontendURL  string
	secureCookie bool
}

func NewAuthHandler(service auth.AuthService, frontendURL string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, res, "account registered successfully")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "login successful")
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.AdminLogin(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "login successful")
}

func (h *AuthHandler) Me(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	account, err := h.service.Me(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"role": actor.Role, "account": account}, "account retrieved successfully")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), actor, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "password changed successfully")
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	redirect, err := h.service.GoogleLoginURL(state)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieAge, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.Fail(c, http.StatusBadRequest, "code not found")
		return
	}

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		h.redirectError(c, "invalid oauth state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.secureCookie, true)

	res, err := h.service.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		h.redirectError(c, err.Error())
		return
	}

	query := url.Values{}
	query.Set("token", res.AccessToken)
	query.Set("role", res.Role)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback?"+query.Encode())
}

func (h *AuthHandler) redirectError(c *gin.Context, message string) {
	query := url.Values{}
	query.Set("error", message)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?"+query.Encode())
}
