package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/middleware"
	"github.com/noah-isme/review-bot-api/internal/models"
	"github.com/noah-isme/review-bot-api/internal/service"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

type moderationServiceMock struct {
	items     []dto.ModerationItem
	item      *dto.ModerationItem
	err       error
	approved  []int64
	rejected  []int64
	deleted   []int64
	lastField models.EditField
	lastValue string
}

func (m *moderationServiceMock) ListRecent(ctx context.Context, adminID int64, limit int) ([]dto.ModerationItem, error) {
	return m.items, m.err
}

func (m *moderationServiceMock) Open(ctx context.Context, adminID, id int64) (*dto.ModerationItem, error) {
	return m.item, m.err
}

func (m *moderationServiceMock) Approve(ctx context.Context, adminID, id int64) error {
	m.approved = append(m.approved, id)
	return m.err
}

func (m *moderationServiceMock) Reject(ctx context.Context, adminID, id int64) error {
	m.rejected = append(m.rejected, id)
	return m.err
}

func (m *moderationServiceMock) Delete(ctx context.Context, adminID, id int64) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *moderationServiceMock) EditField(ctx context.Context, adminID, reviewID int64, field models.EditField, value string) error {
	m.lastField = field
	m.lastValue = value
	return m.err
}

type exportServiceMock struct {
	result *service.ExportResult
	err    error
	format dto.ExportFormat
}

func (m *exportServiceMock) Generate(ctx context.Context, format dto.ExportFormat, limit int) (*service.ExportResult, error) {
	m.format = format
	return m.result, m.err
}

func adminContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	c.Set(middleware.ContextAdminKey, &models.AdminClaims{AdminID: 1})
	return c, w
}

func TestModerationHandlerApprove(t *testing.T) {
	mockSvc := &moderationServiceMock{}
	handler := NewModerationHandler(mockSvc, &exportServiceMock{})

	c, w := adminContext(t, http.MethodPost, "/admin/reviews/7/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Approve(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{7}, mockSvc.approved)
}

func TestModerationHandlerApproveWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{}
	handler := NewModerationHandler(mockSvc, &exportServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/reviews/7/approve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Approve(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, mockSvc.approved)
}

func TestModerationHandlerEdit(t *testing.T) {
	mockSvc := &moderationServiceMock{}
	handler := NewModerationHandler(mockSvc, &exportServiceMock{})

	c, w := adminContext(t, http.MethodPatch, "/admin/reviews/7", []byte(`{"field":"rating","value":"4"}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Edit(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, models.EditFieldRating, mockSvc.lastField)
	assert.Equal(t, "4", mockSvc.lastValue)
}

func TestModerationHandlerEditInvalidBody(t *testing.T) {
	handler := NewModerationHandler(&moderationServiceMock{}, &exportServiceMock{})

	c, w := adminContext(t, http.MethodPatch, "/admin/reviews/7", []byte(`{"field":"rating"`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Edit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModerationHandlerEditValidationError(t *testing.T) {
	mockSvc := &moderationServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "invalid rating: send a number from 1 to 5")}
	handler := NewModerationHandler(mockSvc, &exportServiceMock{})

	c, w := adminContext(t, http.MethodPatch, "/admin/reviews/7", []byte(`{"field":"rating","value":"7"}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Edit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModerationHandlerExport(t *testing.T) {
	mockExport := &exportServiceMock{result: &service.ExportResult{
		Filename:    "reviews-20260301-120000.csv",
		ContentType: "text/csv",
		Payload:     []byte("ID,Author\n"),
	}}
	handler := NewModerationHandler(&moderationServiceMock{}, mockExport)

	c, w := adminContext(t, http.MethodGet, "/admin/reviews/export?format=csv", nil)

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportCSV, mockExport.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
}
