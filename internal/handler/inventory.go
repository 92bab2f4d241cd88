package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/alert"
	"github.com/dukerupert/smartkitchen/internal/store"
	"github.com/dukerupert/smartkitchen/internal/whatsapp"
)

type InventoryHandler struct {
	scanner *alert.Scanner
	ledger  *store.SupplierMessageStore
	sender  alert.Sender
	logger  *slog.Logger
}

func NewInventoryHandler(sc *alert.Scanner, ledger *store.SupplierMessageStore, sender alert.Sender, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{scanner: sc, ledger: ledger, sender: sender, logger: logger}
}

// CheckNow handles POST /api/inventory/check-now
func (h *InventoryHandler) CheckNow(w http.ResponseWriter, r *http.Request) {
	report, err := h.scanner.RunNow(r.Context())
	if err != nil {
		h.logger.Error("manual inventory check", "error", err)
		writeError(w, http.StatusInternalServerError, "inventory check failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Manual inventory check completed",
		"report":  report,
	})
}

// Alerts handles GET /api/inventory/alerts
func (h *InventoryHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.ListRecent(100)
	if err != nil {
		h.logger.Error("list supplier messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

type sendTextRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendText handles POST /api/whatsapp/send-text
func (h *InventoryHandler) SendText(w http.ResponseWriter, r *http.Request) {
	var req sendTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if whatsapp.NormalizePhone(req.Phone) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "phone and message are required")
		return
	}

	err := h.sender.Send(r.Context(), req.Phone, req.Message)
	var apiErr *whatsapp.APIError
	switch {
	case errors.Is(err, whatsapp.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.As(err, &apiErr):
		h.logger.Warn("whatsapp send rejected", "status", apiErr.StatusCode, "error", err)
		writeError(w, http.StatusBadGateway, "whatsapp rejected the message")
		return
	case err != nil:
		h.logger.Error("whatsapp send", "error", err)
		writeError(w, http.StatusBadGateway, "failed to send message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Message sent"})
}
