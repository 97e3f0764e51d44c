package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointwallet/backend/internal/models"
	"github.com/pointwallet/backend/internal/services"
	"github.com/pointwallet/backend/internal/storage"
)

func newTestRouter() (*chi.Mux, *services.LedgerService) {
	service := services.NewLedgerService(storage.NewMemoryAccountStore(), storage.NewMemoryHistoryStore(), nil)
	handler := NewPointHandler(service)

	r := chi.NewRouter()
	r.Get("/point/{id}", handler.GetPoint)
	r.Get("/point/{id}/histories", handler.GetHistories)
	r.Patch("/point/{id}/charge", handler.Charge)
	r.Patch("/point/{id}/use", handler.Use)
	return r, service
}

func doJSON(t *testing.T, router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPointHandler_GetPoint(t *testing.T) {
	t.Run("unknown user returns zero balance", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodGet, "/point/42", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var point models.UserPoint
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &point))
		assert.Equal(t, int64(42), point.UserID)
		assert.Equal(t, int64(0), point.Points)
	})

	t.Run("non-numeric user id is rejected", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodGet, "/point/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPointHandler_Charge(t *testing.T) {
	t.Run("accepted charge returns the new snapshot", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodPatch, "/point/1/charge", `{"amount": 5000}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		var point models.UserPoint
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &point))
		assert.Equal(t, int64(5000), point.Points)
	})

	t.Run("policy rejection returns 400 with a message", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodPatch, "/point/1/charge", `{"amount": 0}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var errResp services.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		assert.NotEmpty(t, errResp.Error)
	})

	t.Run("missing amount is rejected", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodPatch, "/point/1/charge", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric amount is rejected", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodPatch, "/point/1/charge", `{"amount": "many"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodPatch, "/point/1/charge", `{"amount": 100, "bonus": 1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPointHandler_Use(t *testing.T) {
	t.Run("use deducts from the balance", func(t *testing.T) {
		router, service := newTestRouter()
		_, err := service.Charge(context.Background(), 1, 1000)
		require.NoError(t, err)

		rec := doJSON(t, router, http.MethodPatch, "/point/1/use", `{"amount": 400}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		var point models.UserPoint
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &point))
		assert.Equal(t, int64(600), point.Points)
	})

	t.Run("zero-amount use is accepted", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodPatch, "/point/1/use", `{"amount": 0}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("insufficient balance returns 400", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodPatch, "/point/1/use", `{"amount": 10}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPointHandler_GetHistories(t *testing.T) {
	t.Run("records come back most recent first", func(t *testing.T) {
		router, service := newTestRouter()
		ctx := context.Background()
		_, err := service.Charge(ctx, 1, 500)
		require.NoError(t, err)
		_, err = service.Use(ctx, 1, 200)
		require.NoError(t, err)

		rec := doJSON(t, router, http.MethodGet, "/point/1/histories", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var records []models.PointHistory
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 2)
		assert.Equal(t, models.TransactionUse, records[0].Type)
		assert.Equal(t, models.TransactionCharge, records[1].Type)
	})

	t.Run("no records yields an empty array", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := doJSON(t, router, http.MethodGet, "/point/42/histories", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}
