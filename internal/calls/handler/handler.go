// Package handler exposes the calls module over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"paycall_backend/internal/calls/domain"
	"paycall_backend/internal/calls/repository"
	"paycall_backend/internal/calls/service"
	"paycall_backend/internal/calls/transport"
	"paycall_backend/internal/vapi"
	"paycall_backend/platform/httpkit"
	"paycall_backend/platform/logger"
	"paycall_backend/platform/validator"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

func NewHandler(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// HandleVapiWebhook ingests provider webhooks. It always answers 200 for
// payloads we deliberately ignore so the provider does not retry them.
func (h *Handler) HandleVapiWebhook(c *gin.Context) {
	var envelope vapi.WebhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid webhook payload", nil)
		return
	}

	if err := h.svc.ProcessCallWebhook(c.Request.Context(), envelope); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "received"})
}

// HandleTriggerBatch starts a batch run for the configured sheets. The run
// takes minutes because of call pacing, so it executes in the background
// and the endpoint answers immediately.
func (h *Handler) HandleTriggerBatch(c *gin.Context) {
	var req transport.TriggerBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
	}

	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		result := h.svc.ProcessMultipleSheets(ctx, req.SheetIDs)
		h.log.Info("batch run finished",
			"pending", result.Pending,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
	}()

	httpkit.JSON(c, http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "payment follow-up process started",
	})
}

// HandleTriggerCall places one call for a known invoice.
func (h *Handler) HandleTriggerCall(c *gin.Context) {
	invoiceNumber := c.Param("invoiceNumber")
	if invoiceNumber == "" {
		httpkit.Error(c, http.StatusBadRequest, "invoice number is required", nil)
		return
	}

	if err := h.svc.TriggerCallForInvoice(c.Request.Context(), invoiceNumber); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{
		"status":        "success",
		"invoiceNumber": invoiceNumber,
	})
}

func (h *Handler) HandleListCalls(c *gin.Context) {
	params := repository.ListCallLogsParams{
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		mapped := domain.CallStatus(status)
		params.Status = &mapped
	}

	logs, total, err := h.svc.ListCallLogs(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToListCallsResponse(logs, total))
}

func (h *Handler) HandleGetCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid call id", nil)
		return
	}

	log, err := h.svc.GetCallLog(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToCallLogResponse(log))
}

// HandleGetCallStatus polls the provider for a live call's status.
func (h *Handler) HandleGetCallStatus(c *gin.Context) {
	call, err := h.svc.GetCallStatus(c.Request.Context(), c.Param("providerCallID"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, call)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
