package ingest

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"

	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/types"
)

// rejectedScanFields is the filter allowlist for rejected-bill scans.
var rejectedScanFields = []string{
	"email_id",
	"confidence",
	"rejection_reason",
	"created_at",
	"parsed->>'category'",
	"parsed->>'is_bill'",
}

type ScanRejectedRequest struct {
	Filters  []types.CommonFilter `json:"filters"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

type ScanRejectedResponse struct {
	Items []*models.RejectedBill `json:"items"`
	Total int64                  `json:"total"`
}

// ScanRejected lists the owner's rejection audit rows, newest first, with
// optional field filters and pagination.
func (s *Service) ScanRejected(ctx context.Context, ownerID string, req *ScanRejectedRequest) (*ScanRejectedResponse, error) {
	for _, f := range req.Filters {
		if !lo.Contains(rejectedScanFields, f.Field) {
			return nil, fmt.Errorf("filter field %q is not scannable", f.Field)
		}
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	exprs := make([]clause.Expression, 0, len(req.Filters)+1)
	exprs = append(exprs, clause.Eq{Column: "owner_id", Value: ownerID})
	for i := range req.Filters {
		exprs = append(exprs, &req.Filters[i])
	}

	base := s.db.WithContext(ctx).
		Model(&models.RejectedBill{}).
		Clauses(clause.Where{Exprs: exprs})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count rejected bills: %w", err)
	}

	var items []*models.RejectedBill
	err := base.
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan rejected bills: %w", err)
	}

	return &ScanRejectedResponse{Items: items, Total: total}, nil
}
