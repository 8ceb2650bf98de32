package handlers

import (
	"UniversalInbox/internal/model"
	"UniversalInbox/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes ограничивает тело PUT-запросов.
const maxBodyBytes = 1 << 20

// RecordHandler обслуживает /api/records.
type RecordHandler struct {
	RecordService *service.RecordService
	Logger        *zap.SugaredLogger
}

func NewRecordHandler(s *service.RecordService, logger *zap.SugaredLogger) *RecordHandler {
	return &RecordHandler{RecordService: s, Logger: logger}
}

type itemRequest struct {
	RawText   string    `json:"rawText"`
	Status    string    `json:"status"`
	BinID     *string   `json:"binId"`
	CreatedAt time.Time `json:"createdAt"`
}

type binRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

// serviceError переводит ошибку сервиса в HTTP-код
func (h *RecordHandler) serviceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrInvalidRecord):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Errorw(op+": service error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ListItems отдаёт записи от новых к старым
func (h *RecordHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.RecordService.ListItems(r.Context())
	if err != nil {
		h.serviceError(w, "ListItems", err)
		return
	}
	if items == nil {
		items = []model.ItemRecord{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *RecordHandler) ListBins(w http.ResponseWriter, r *http.Request) {
	bins, err := h.RecordService.ListBins(r.Context())
	if err != nil {
		h.serviceError(w, "ListBins", err)
		return
	}
	if bins == nil {
		bins = []model.BinRecord{}
	}
	writeJSON(w, http.StatusOK, bins)
}

// PutItem создаёт или обновляет запись; id берётся из пути
func (h *RecordHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		h.Logger.Warnw("PutItem: invalid request body", "id", id, "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	rec, err := h.RecordService.SaveItem(r.Context(), id, service.ItemInput{
		RawText:   req.RawText,
		Status:    req.Status,
		BinID:     req.BinID,
		CreatedAt: req.CreatedAt,
	})
	if err != nil {
		h.serviceError(w, "PutItem", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordHandler) PutBin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req binRequest
	if err := decodeBody(r, &req); err != nil {
		h.Logger.Warnw("PutBin: invalid request body", "id", id, "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	rec, err := h.RecordService.SaveBin(r.Context(), id, service.BinInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.serviceError(w, "PutBin", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteItem всегда отвечает 204, даже если записи не было
func (h *RecordHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.RecordService.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.serviceError(w, "DeleteItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health: проверка живости
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
