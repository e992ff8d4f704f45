package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/internal/platform/gmailapi"
	"github.com/billhound/billhound/pkg/response"
)

type googleExchangeRequest struct {
	Code string `json:"code"`
}

// @Summary      Google consent URL
// @Description  Returns the OAuth consent page URL for connecting Gmail.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/auth/google/url [get]
func ApiGoogleAuthURL(gm *gmailapi.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := gm.AuthCodeURL(middleware.UserID(c))
		c.JSON(http.StatusOK, response.OKT(map[string]string{"url": url}))
	}
}

// @Summary      Exchange Google code
// @Description  Trades the OAuth authorization code for tokens and stores them.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handlers.googleExchangeRequest true "Authorization code"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/auth/google/exchange [post]
func ApiGoogleExchange(gm *gmailapi.Client, p *prefs.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req googleExchangeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing authorization code"))
			return
		}

		creds, err := gm.Exchange(c.Request.Context(), req.Code)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		err = p.SaveGoogleTokens(c.Request.Context(), middleware.UserID(c), creds.AccessToken, creds.RefreshToken, creds.Expiry)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterGoogleAuthRoutes(r gin.IRouter, gm *gmailapi.Client, p *prefs.Service) {
	r.GET("/auth/google/url", ApiGoogleAuthURL(gm))
	r.POST("/auth/google/exchange", ApiGoogleExchange(gm, p))
}
