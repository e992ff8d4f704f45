package handlers

import (
	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/ingest"
	"github.com/billhound/billhound/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespBillList wraps the bill listing in the standard envelope.
type RespBillList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []billsvc.BillWithStatus `json:"data"`
}

// RespSyncReport wraps a sync report in the standard envelope.
type RespSyncReport struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ingest.SyncReport        `json:"data"`
}
