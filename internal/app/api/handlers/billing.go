package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/subscription"
	"github.com/billhound/billhound/pkg/response"
)

type checkoutRequest struct {
	PlanID string `json:"plan_id"`
	// Email overrides the token claim, for accounts whose billing address
	// differs from the login identity.
	Email string `json:"email"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// @Summary      Start checkout
// @Description  Creates a hosted checkout session for the plan. The upgrade lands asynchronously via webhook.
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Param        request body handlers.checkoutRequest true "Plan to subscribe to"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/billing/checkout [post]
func ApiStartCheckout(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		email := req.Email
		if email == "" {
			email = middleware.UserEmail(c)
		}

		url, err := svc.StartCheckout(c.Request.Context(), middleware.UserID(c), email, req.PlanID)
		if err != nil {
			if errors.Is(err, subscription.ErrUnknownPlan) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(checkoutResponse{URL: url}))
	}
}

// @Summary      Open billing portal
// @Description  Creates a billing portal session for subscription management.
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/billing/portal [post]
func ApiOpenPortal(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := svc.OpenPortal(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			if errors.Is(err, subscription.ErrNoCustomer) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(checkoutResponse{URL: url}))
	}
}

func RegisterBillingRoutes(r gin.IRouter, svc *subscription.Service) {
	r.POST("/billing/checkout", ApiStartCheckout(svc))
	r.POST("/billing/portal", ApiOpenPortal(svc))
}
