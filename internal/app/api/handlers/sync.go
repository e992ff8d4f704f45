package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/ingest"
	"github.com/billhound/billhound/pkg/response"
)

// @Summary      Sync Gmail
// @Description  Scans recent bill-like email and creates or matches bills.
// @Tags         Sync
// @Produce      json
// @Success      200  {object}  handlers.RespSyncReport
// @Router       /api/v1/sync/gmail [post]
func ApiSyncGmail(svc *ingest.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svc.SyncGmail(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			if errors.Is(err, ingest.ErrGoogleNotConnected) || errors.Is(err, ingest.ErrSyncDisabled) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(report))
	}
}

// @Summary      Clear sync history
// @Description  Deletes processed-email markers and resets the sync watermark.
// @Tags         Sync
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/sync/clear [post]
func ApiClearSyncHistory(svc *ingest.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		removed, err := svc.ClearSyncHistory(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int64{"removed": removed}))
	}
}

// @Summary      Scan rejected candidates
// @Description  Lists rejection audit rows with optional filters and pagination.
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Param        request body ingest.ScanRejectedRequest true "Scan request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/sync/rejected/scan [post]
func ApiScanRejected(svc *ingest.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ingest.ScanRejectedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.ScanRejected(c.Request.Context(), middleware.UserID(c), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterSyncRoutes(r gin.IRouter, svc *ingest.Service) {
	r.POST("/sync/gmail", ApiSyncGmail(svc))
	r.POST("/sync/clear", ApiClearSyncHistory(svc))
	r.POST("/sync/rejected/scan", ApiScanRejected(svc))
}
