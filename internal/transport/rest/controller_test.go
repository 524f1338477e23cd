package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/profit"
	"github.com/mkarpenko/stock_profit_service/internal/service"
)

type stubService struct {
	profit       model.Profit
	calcErr      error
	transactions []model.Transaction
	dividends    []model.Dividend
	getTxErr     error
	added        []model.Transaction
	addErr       error
	deleteErr    error
}

func (s *stubService) CalculateProfit(_ context.Context) (model.Profit, error) {
	return s.profit, s.calcErr
}

func (s *stubService) CalculateDefaultProfit(_ context.Context) (model.Profit, error) {
	return s.profit, s.calcErr
}

func (s *stubService) GenerateHistory(_ context.Context, _ int) ([]model.Transaction, []model.Dividend, error) {
	return s.transactions, nil, nil
}

func (s *stubService) BuildProfitReport(_ context.Context) ([]byte, string, error) {
	return []byte("xlsx-bytes"), "https://example.com/report", nil
}

func (s *stubService) AddTransaction(_ context.Context, tx model.Transaction) (model.Transaction, error) {
	if s.addErr != nil {
		return model.Transaction{}, s.addErr
	}
	tx.ID = 1
	s.added = append(s.added, tx)
	return tx, nil
}

func (s *stubService) UpdateTransaction(_ context.Context, _ model.Transaction) error { return nil }

func (s *stubService) DeleteTransaction(_ context.Context, _ int64) error { return s.deleteErr }

func (s *stubService) GetTransaction(_ context.Context, _ int64) (model.Transaction, error) {
	if s.getTxErr != nil {
		return model.Transaction{}, s.getTxErr
	}
	if len(s.transactions) == 0 {
		return model.Transaction{}, service.ErrNotFound
	}
	return s.transactions[0], nil
}

func (s *stubService) GetTransactions(_ context.Context) ([]model.Transaction, error) {
	return s.transactions, s.getTxErr
}

func (s *stubService) GetTransactionsInDateRange(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
	return s.transactions, s.getTxErr
}

func (s *stubService) GetDividends(_ context.Context) ([]model.Dividend, error) {
	return s.dividends, nil
}

func newTestRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	NewController(svc).SetupRoutes(g)
	return g
}

func doRequest(t *testing.T, g *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestCalculateReturnsProfitJSON(t *testing.T) {
	svc := &stubService{
		profit: model.Profit{
			TotalProfit:     decimal.RequireFromString("110.00"),
			RealizedProfit:  decimal.RequireFromString("100.00"),
			DividendProfit:  decimal.RequireFromString("10.00"),
			UnrealizedGains: decimal.RequireFromString("5.00"),
		},
	}
	g := newTestRouter(svc)

	w := doRequest(t, g, http.MethodGet, "/api/portfolio/calculate", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.Number
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "totalProfit")
	assert.Contains(t, body, "realizedStockProfit")
	assert.Contains(t, body, "dividendProfit")
	assert.Contains(t, body, "unrealizedGains")
}

func TestCalculateMapsOverSellTo422(t *testing.T) {
	svc := &stubService{calcErr: profit.ErrOverSell}
	g := newTestRouter(svc)

	w := doRequest(t, g, http.MethodGet, "/api/portfolio/calculate", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGenerateRejectsInvalidN(t *testing.T) {
	g := newTestRouter(&stubService{})

	w := doRequest(t, g, http.MethodGet, "/api/portfolio/generate?count=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddTransactionCreated(t *testing.T) {
	svc := &stubService{}
	g := newTestRouter(svc)

	body := []byte(`{"type":"BUY","quantity":5,"price":"100.50","fee":"1.25","timestamp":"2026-01-10T10:00:00Z"}`)
	w := doRequest(t, g, http.MethodPost, "/api/transaction/addTransaction", body)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.added, 1)
	assert.Equal(t, model.Buy, svc.added[0].Side)
	assert.Equal(t, 5, svc.added[0].Quantity)
}

func TestAddTransactionValidationErrorIs422(t *testing.T) {
	svc := &stubService{addErr: service.ErrInvalidTransaction}
	g := newTestRouter(svc)

	body := []byte(`{"type":"HOLD","quantity":5,"price":"100.50","fee":"1.25","timestamp":"2026-01-10T10:00:00Z"}`)
	w := doRequest(t, g, http.MethodPost, "/api/transaction/addTransaction", body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetTransactionNotFoundIs404(t *testing.T) {
	g := newTestRouter(&stubService{})

	w := doRequest(t, g, http.MethodGet, "/api/transaction/transaction/42", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTransactionBadID(t *testing.T) {
	g := newTestRouter(&stubService{})

	w := doRequest(t, g, http.MethodGet, "/api/transaction/transaction/notanumber", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTransactionNoContent(t *testing.T) {
	g := newTestRouter(&stubService{})

	w := doRequest(t, g, http.MethodDelete, "/api/transaction/deleteTransaction/1", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTransactionsInDateRangeRequiresDates(t *testing.T) {
	g := newTestRouter(&stubService{})

	w := doRequest(t, g, http.MethodGet, "/api/transaction/transactionsInDateRange?start=bogus&end=2026-01-01", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionsInDateRangeAcceptsDateOnly(t *testing.T) {
	svc := &stubService{transactions: []model.Transaction{{ID: 1, Side: model.Buy, Quantity: 1}}}
	g := newTestRouter(svc)

	w := doRequest(t, g, http.MethodGet, "/api/transaction/transactionsInDateRange?start=2025-01-01&end=2026-01-01", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestGetDividends(t *testing.T) {
	svc := &stubService{
		dividends: []model.Dividend{{
			ID:             1,
			AmountPerUnit:  decimal.RequireFromString("1.25"),
			ExDividendDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			PaymentDate:    time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		}},
	}
	g := newTestRouter(svc)

	w := doRequest(t, g, http.MethodGet, "/api/portfolio/dividends", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Dividend
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.True(t, got[0].AmountPerUnit.Equal(decimal.RequireFromString("1.25")))
}

func TestGetDividendsEmptyIsJSONArray(t *testing.T) {
	g := newTestRouter(&stubService{})

	w := doRequest(t, g, http.MethodGet, "/api/portfolio/dividends", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestReportReturnsAttachment(t *testing.T) {
	g := newTestRouter(&stubService{})

	w := doRequest(t, g, http.MethodGet, "/api/portfolio/report", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.com/report", w.Header().Get("X-Download-Link"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "profit_report.xlsx")
	assert.Equal(t, "xlsx-bytes", w.Body.String())
}
