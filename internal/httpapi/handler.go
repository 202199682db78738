package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/erenulutas0/inventory-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler binds the engine's exposed contract over HTTP
type Handler struct {
	engine *service.InventoryService
	logger *zap.Logger
}

func NewHandler(engine *service.InventoryService, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Router mounts every route under /api/inventories
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/inventories", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.create)
		r.Post("/check-availability", h.checkAvailability)
		r.Get("/product/{productId}", h.getByProduct)
		r.Get("/product/{productId}/available", h.getAvailable)
		r.Get("/status/{status}", h.listByStatus)
		r.Get("/location/{location}", h.listByLocation)
		r.Get("/{id}", h.getByID)
		r.Put("/{id}", h.update)
		r.Patch("/{id}/quantity", h.setQuantity)
		r.Patch("/{id}/reserve", h.reserve)
		r.Patch("/{id}/release", h.release)
		r.Delete("/{id}", h.delete)
	})
	return r
}

type createRequest struct {
	ProductID        string          `json:"product_id"`
	Quantity         int             `json:"quantity"`
	ReservedQuantity int             `json:"reserved_quantity"`
	MinStockLevel    *int            `json:"min_stock_level,omitempty"`
	MaxStockLevel    *int            `json:"max_stock_level,omitempty"`
	Location         domain.Location `json:"location"`
}

type availableResponse struct {
	ProductID         string `json:"product_id"`
	AvailableQuantity int    `json:"available_quantity"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) getAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.GetAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) getByProduct(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.GetByProductID(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) getAvailable(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	available, err := h.engine.GetAvailableQuantity(r.Context(), productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, availableResponse{
		ProductID:         productID,
		AvailableQuantity: available,
	})
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.InventoryStatus(chi.URLParam(r, "status"))
	if !status.IsValid() {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown status"})
		return
	}
	records, err := h.engine.ListByStatus(r.Context(), status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) listByLocation(w http.ResponseWriter, r *http.Request) {
	location := domain.Location(chi.URLParam(r, "location"))
	if !location.IsValid() {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown location"})
		return
	}
	records, err := h.engine.ListByLocation(r.Context(), location)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	record := &domain.InventoryRecord{
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		ReservedQuantity: req.ReservedQuantity,
		MinStockLevel:    req.MinStockLevel,
		MaxStockLevel:    req.MaxStockLevel,
		Location:         req.Location,
	}

	created, err := h.engine.Create(r.Context(), record)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var fields domain.UpdateFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := h.engine.UpdateFields(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	h.quantityOp(w, r, h.engine.SetQuantity)
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	h.quantityOp(w, r, h.engine.Reserve)
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	h.quantityOp(w, r, h.engine.Release)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	var required map[string]int
	if err := json.NewDecoder(r.Body).Decode(&required); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.engine.CheckAvailability(r.Context(), required)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type quantityFunc func(ctx context.Context, id string, quantity int) (*domain.InventoryRecord, error)

func (h *Handler) quantityOp(w http.ResponseWriter, r *http.Request, op quantityFunc) {
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity query parameter must be an integer"})
		return
	}

	record, opErr := op(r.Context(), chi.URLParam(r, "id"), quantity)
	if opErr != nil {
		h.writeError(w, opErr)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// writeError maps the engine taxonomy onto HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateProduct), errors.Is(err, service.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrStoreUnavailable):
		h.logger.Error("store unavailable", zap.Error(err))
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("unexpected error", zap.Error(err))
		status = http.StatusInternalServerError
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response failed", zap.Error(err))
	}
}
