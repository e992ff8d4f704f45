package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/billhound/billhound/internal/app/service/subscription"
	"github.com/billhound/billhound/internal/app/service/webhooklog"
	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/internal/platform/stripeapi"
	"github.com/billhound/billhound/pkg/logctx"
	"github.com/billhound/billhound/pkg/response"
)

// @Summary      Stripe webhook
// @Description  Receives signed Stripe events. Unsigned or badly signed requests are refused; everything verified is acknowledged.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/webhooks/stripe [post]
func ApiStripeWebhook(sc *stripeapi.Client, svc *subscription.Service, wl *webhooklog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, svc.Logger())

		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "failed to read payload"))
			return
		}

		event, err := sc.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			log.Warnw("webhook signature rejected", "error", err.Error())
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid signature"))
			return
		}

		wl.Save(c.Request.Context(), &models.WebhookEventLog{
			Provider:  "stripe",
			EventID:   event.ID,
			EventType: string(event.Type),
			Payload:   datatypes.JSON(payload),
		})

		// A verified event is always acknowledged. Processing failures are
		// logged and recovered out of band; returning non-2xx would make the
		// provider retry into the same failure.
		if err := svc.HandleEvent(c.Request.Context(), event); err != nil {
			log.Errorw("webhook processing failed", "type", event.Type, "event_id", event.ID, "error", err.Error())
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, sc *stripeapi.Client, svc *subscription.Service, wl *webhooklog.Service) {
	r.POST("/webhooks/stripe", ApiStripeWebhook(sc, svc, wl))
}
