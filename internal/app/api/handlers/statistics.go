package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/statistics"
	"github.com/billhound/billhound/pkg/response"
)

// @Summary      Bill statistics
// @Description  Computes the requested spending data series for the caller.
// @Tags         Statistics
// @Accept       json
// @Produce      json
// @Param        request body statistics.BillStatisticRequest true "Data items to compute"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/statistics [post]
func ApiBillStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.BillStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if len(req.DataItems) == 0 {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "data_items is required"))
			return
		}

		res, err := svc.GetBillStatistics(c.Request.Context(), middleware.UserID(c), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterStatisticsRoutes(r gin.IRouter, svc *statistics.Service) {
	r.POST("/statistics", ApiBillStatistics(svc))
}
