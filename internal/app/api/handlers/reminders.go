package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/reminder"
	"github.com/billhound/billhound/pkg/response"
)

// @Summary      Send my reminders
// @Description  Sends the caller one email covering unpaid bills due within their reminder window.
// @Tags         Reminders
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/reminders/send [post]
func ApiSendReminders(svc *reminder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.SendDueReminders(c.Request.Context(), middleware.UserID(c), time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int{"bills_included": n}))
	}
}

// @Summary      Run reminder batch
// @Description  Sends reminder emails for every user with reminders configured. Scheduler-only.
// @Tags         Reminders
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /internal/cron/reminders [post]
func ApiRunReminderBatch(svc *reminder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sent, err := svc.RunAll(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int{"users_notified": sent}))
	}
}

func RegisterReminderRoutes(r gin.IRouter, svc *reminder.Service) {
	r.POST("/reminders/send", ApiSendReminders(svc))
}

func RegisterCronRoutes(r gin.IRouter, svc *reminder.Service) {
	r.POST("/cron/reminders", ApiRunReminderBatch(svc))
}
