package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pointwallet/backend/internal/policy"
	"github.com/pointwallet/backend/internal/services"
	"github.com/pointwallet/backend/internal/storage"
)

type PointHandler struct {
	service   *services.LedgerService
	validator *services.ValidationHelper
}

func NewPointHandler(service *services.LedgerService) *PointHandler {
	return &PointHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// amountRequest is the body of charge/use requests. Amount is a pointer
// so that an explicit 0 passes the required check while a missing field
// does not.
type amountRequest struct {
	Amount *int64 `json:"amount" validate:"required"`
}

func (h *PointHandler) userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *PointHandler) decodeAmount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req amountRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return 0, false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return 0, false
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return 0, false
	}

	return *req.Amount, true
}

func isPolicyError(err error) bool {
	return errors.Is(err, policy.ErrInvalidAmount) ||
		errors.Is(err, policy.ErrChargeLimitExceeded) ||
		errors.Is(err, policy.ErrBalanceCeilingExceeded) ||
		errors.Is(err, policy.ErrInsufficientBalance)
}

func sendMutationError(w http.ResponseWriter, err error) {
	switch {
	case isPolicyError(err):
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, storage.ErrTransientStorage):
		services.SendErrorResponse(w, "Storage temporarily unavailable", http.StatusInternalServerError, nil)
	default:
		services.SendErrorResponse(w, "Failed to process operation", http.StatusInternalServerError, nil)
	}
}

// GetPoint returns a user's current point balance
// @Summary Get point balance
// @Description Get the current point balance for a user. Unknown users have balance 0.
// @Tags points
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserPoint
// @Failure 400 {object} services.ErrorResponse
// @Router /point/{id} [get]
func (h *PointHandler) GetPoint(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		services.SendErrorResponse(w, "Invalid user id", http.StatusBadRequest, nil)
		return
	}

	point, err := h.service.GetUserPoint(r.Context(), userID)
	if err != nil {
		services.SendErrorResponse(w, "Storage temporarily unavailable", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSONResponse(w, http.StatusOK, point)
}

// GetHistories returns a user's point transaction history
// @Summary List point histories
// @Description List all charge/use records for a user, most recent first.
// @Tags points
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.PointHistory
// @Failure 400 {object} services.ErrorResponse
// @Router /point/{id}/histories [get]
func (h *PointHandler) GetHistories(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		services.SendErrorResponse(w, "Invalid user id", http.StatusBadRequest, nil)
		return
	}

	records, err := h.service.GetUserPointHistory(r.Context(), userID)
	if err != nil {
		services.SendErrorResponse(w, "Storage temporarily unavailable", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSONResponse(w, http.StatusOK, records)
}

// Charge adds points to a user's balance
// @Summary Charge points
// @Description Charge the given amount onto the user's balance and record a CHARGE transaction.
// @Tags points
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{amount=int64} true "Charge amount"
// @Success 200 {object} models.UserPoint
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /point/{id}/charge [patch]
func (h *PointHandler) Charge(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		services.SendErrorResponse(w, "Invalid user id", http.StatusBadRequest, nil)
		return
	}

	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}

	point, err := h.service.Charge(r.Context(), userID, amount)
	if err != nil {
		sendMutationError(w, err)
		return
	}

	services.SendJSONResponse(w, http.StatusOK, point)
}

// Use deducts points from a user's balance
// @Summary Use points
// @Description Use the given amount from the user's balance and record a USE transaction.
// @Tags points
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{amount=int64} true "Use amount"
// @Success 200 {object} models.UserPoint
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /point/{id}/use [patch]
func (h *PointHandler) Use(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		services.SendErrorResponse(w, "Invalid user id", http.StatusBadRequest, nil)
		return
	}

	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}

	point, err := h.service.Use(r.Context(), userID, amount)
	if err != nil {
		sendMutationError(w, err)
		return
	}

	services.SendJSONResponse(w, http.StatusOK, point)
}
