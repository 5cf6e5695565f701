package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found maps to 404",
			err:            shared.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "validation code maps to 400",
			err:            shared.NewDomainError("INVALID_PRICE", "price must be positive"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_PRICE",
		},
		{
			name:           "forbidden maps to 403",
			err:            shared.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "concurrency conflict maps to 409",
			err:            shared.ErrConcurrencyConflict,
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONCURRENCY_CONFLICT",
		},
		{
			name:           "invoiced row maps to 409",
			err:            shared.NewDomainError("ROW_INVOICED", "row already invoiced"),
			expectedStatus: http.StatusConflict,
			expectedCode:   "ROW_INVOICED",
		},
		{
			name:           "lifecycle refusal maps to 422",
			err:            shared.ErrInvalidState,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "INVALID_STATE",
		},
		{
			name:           "insufficient balance maps to 422",
			err:            shared.ErrInsufficientBalance,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "INSUFFICIENT_BALANCE",
		},
		{
			name:           "pin violation maps to 400",
			err:            catalog.NewPosNotFoundViolation(catalog.PointOfSalePin{}),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "POS_NOT_FOUND",
		},
		{
			name:           "missing draft maps to 422",
			err:            shared.NewDomainError("NO_DRAFT", "nothing staged"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "NO_DRAFT",
		},
		{
			name:           "invariant violation maps to 500",
			err:            shared.NewInvariantViolation("settle", "transfer sum mismatch"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
		{
			name:           "unknown error maps to 500",
			err:            errors.New("driver: bad connection"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)

			base := &BaseHandler{}
			base.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_Success(t *testing.T) {
	c, w := newTestContext(t)

	base := &BaseHandler{}
	base.Success(c, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestPaginated(t *testing.T) {
	c, w := newTestContext(t)

	page := shared.NewPaginated([]string{"a", "b"}, 12, 2, 2)
	Paginated(c, &page)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 6, resp.Meta.TotalPages)
}
