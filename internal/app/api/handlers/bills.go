package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/dedupe"
	"github.com/billhound/billhound/pkg/response"
)

// quotaPayload is the structured body returned on tier-limit rejection so the
// client can prompt an upgrade.
type quotaPayload struct {
	Count   int    `json:"count"`
	Limit   int    `json:"limit"`
	Tier    string `json:"tier"`
	Message string `json:"message"`
}

// @Summary      List bills
// @Description  Lists the user's active bills with derived paid status.
// @Tags         Bills
// @Produce      json
// @Success      200  {object}  handlers.RespBillList
// @Router       /api/v1/bills [get]
func ApiListBills(svc *billsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		bills, err := svc.ListBillsWithStatus(c.Request.Context(), middleware.UserID(c), time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(bills))
	}
}

// @Summary      Create bill
// @Description  Creates a bill, enforcing the tier's active-bill quota.
// @Tags         Bills
// @Accept       json
// @Produce      json
// @Param        request body billsvc.CreateBillInput true "Bill to create"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/bills [post]
func ApiCreateBill(svc *billsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in billsvc.CreateBillInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		bill, err := svc.CreateBill(c.Request.Context(), middleware.UserID(c), in)
		if err != nil {
			var qe *billsvc.QuotaError
			if errors.As(err, &qe) {
				c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeBadRequest, quotaPayload{
					Count:   qe.Count,
					Limit:   qe.Limit,
					Tier:    string(qe.Tier),
					Message: qe.Error(),
				}))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(bill))
	}
}

// @Summary      Delete bill
// @Description  Deactivates a bill; payment history is preserved.
// @Tags         Bills
// @Produce      json
// @Param        id path string true "Bill id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/bills/{id} [delete]
func ApiDeleteBill(svc *billsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.DeactivateBill(c.Request.Context(), middleware.UserID(c), c.Param("id"))
		if err != nil {
			if errors.Is(err, billsvc.ErrBillNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type markPaidRequest struct {
	Amount *float64 `json:"amount"`
}

// @Summary      Mark bill paid
// @Description  Records a payment for the current period. Omitting amount records the bill amount.
// @Tags         Bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill id"
// @Param        request body handlers.markPaidRequest false "Optional override amount"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/bills/{id}/pay [post]
func ApiMarkPaid(svc *billsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req markPaidRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
		}

		payment, err := svc.MarkPaid(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Amount, time.Now())
		if err != nil {
			if errors.Is(err, billsvc.ErrBillNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(payment))
	}
}

// @Summary      Undo payment
// @Description  Removes the most recent payment in the current period. No-op when nothing was paid.
// @Tags         Bills
// @Produce      json
// @Param        id path string true "Bill id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/bills/{id}/unpay [post]
func ApiUndoPaid(svc *billsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.UndoPaid(c.Request.Context(), middleware.UserID(c), c.Param("id"), time.Now())
		if err != nil {
			if errors.Is(err, billsvc.ErrBillNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      List payments
// @Description  Returns the bill's full payment history, newest first.
// @Tags         Bills
// @Produce      json
// @Param        id path string true "Bill id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/bills/{id}/payments [get]
func ApiListPayments(svc *billsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := svc.ListPayments(c.Request.Context(), middleware.UserID(c), c.Param("id"))
		if err != nil {
			if errors.Is(err, billsvc.ErrBillNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(payments))
	}
}

// @Summary      Clean up duplicate bills
// @Description  Deactivates duplicate active bills, keeping the oldest of each group.
// @Tags         Bills
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/bills/cleanup-duplicates [post]
func ApiCleanupDuplicates(svc *dedupe.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.CleanupDuplicates(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(result))
	}
}

func RegisterBillRoutes(r gin.IRouter, bills *billsvc.Service, dd *dedupe.Service) {
	r.GET("/bills", ApiListBills(bills))
	r.POST("/bills", ApiCreateBill(bills))
	r.POST("/bills/cleanup-duplicates", ApiCleanupDuplicates(dd))
	r.DELETE("/bills/:id", ApiDeleteBill(bills))
	r.POST("/bills/:id/pay", ApiMarkPaid(bills))
	r.POST("/bills/:id/unpay", ApiUndoPaid(bills))
	r.GET("/bills/:id/payments", ApiListPayments(bills))
}
