package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/pkg/response"
)

type updatePreferencesRequest struct {
	ReminderEnabled    *bool   `json:"reminder_enabled"`
	ReminderDaysBefore *int    `json:"reminder_days_before"`
	ReminderEmail      *string `json:"reminder_email"`
	GmailSyncEnabled   *bool   `json:"gmail_sync_enabled"`
}

// @Summary      Get preferences
// @Description  Returns the user's preferences, or null before first save.
// @Tags         Preferences
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/preferences [get]
func ApiGetPreferences(svc *prefs.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Update preferences
// @Description  Creates or updates the user's preferences. Omitted fields are untouched.
// @Tags         Preferences
// @Accept       json
// @Produce      json
// @Param        request body handlers.updatePreferencesRequest true "Fields to change"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/preferences [put]
func ApiUpdatePreferences(svc *prefs.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updatePreferencesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		if req.ReminderDaysBefore != nil && (*req.ReminderDaysBefore < 0 || *req.ReminderDaysBefore > 30) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "reminder_days_before must be in 0..30"))
			return
		}

		p, err := svc.Upsert(c.Request.Context(), middleware.UserID(c), prefs.UpdateInput{
			ReminderEnabled:    req.ReminderEnabled,
			ReminderDaysBefore: req.ReminderDaysBefore,
			ReminderEmail:      req.ReminderEmail,
			GmailSyncEnabled:   req.GmailSyncEnabled,
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

func RegisterPreferenceRoutes(r gin.IRouter, svc *prefs.Service) {
	r.GET("/preferences", ApiGetPreferences(svc))
	r.PUT("/preferences", ApiUpdatePreferences(svc))
}
