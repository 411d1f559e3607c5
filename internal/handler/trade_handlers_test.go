package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradebook/internal/model"
	"tradebook/internal/service"
)

type fakeTradeRepository struct {
	trades map[string]model.Trade
}

func newFakeTradeRepository() *fakeTradeRepository {
	return &fakeTradeRepository{trades: make(map[string]model.Trade)}
}

func (f *fakeTradeRepository) UpsertTrade(_ context.Context, trade *model.Trade) error {
	f.trades[trade.UTCTime.Format(time.RFC3339)+"|"+trade.Market] = *trade
	return nil
}

func (f *fakeTradeRepository) TradesBefore(_ context.Context, cutoff time.Time) ([]model.Trade, error) {
	var out []model.Trade
	for _, t := range f.trades {
		if t.UTCTime.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

func setupRouter(repo *fakeTradeRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tradeHandler := NewTradeHandler(service.NewTradesService(repo, logger), logger)

	r := gin.New()
	api := r.Group("/api/")
	trades := api.Group("/trades")
	trades.POST("/upload", tradeHandler.Upload)
	trades.POST("/balance", tradeHandler.Balance)
	return r
}

func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to build multipart body: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to build multipart body: %v", err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUpload(t *testing.T) {
	csvData := "UTC_Time,Operation,Market,Buy/Sell Amount,Price\n" +
		"2024-01-15 10:30:45,BUY,BTC/USDT,2,100\n" +
		"2024-01-15 11:00:00,SELL,BTC/USDT,0.5,200\n" +
		"not-a-date,BUY,ETH/USDT,1,50\n"

	tests := []struct {
		name               string
		filename           string
		content            string
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:               "mixed batch reports counts",
			filename:           "trades.csv",
			content:            csvData,
			expectedStatusCode: http.StatusOK,
			expectedBody:       `"valid":2`,
		},
		{
			name:               "non-CSV extension rejected",
			filename:           "trades.xlsx",
			content:            csvData,
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "invalid file type",
		},
		{
			name:               "no valid rows",
			filename:           "trades.csv",
			content:            "UTC_Time,Operation,Market,Buy/Sell Amount,Price\nnot-a-date,BUY,BTC/USDT,1,100\n",
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "no valid trade data",
		},
		{
			name:               "corrupt stream is a server error",
			filename:           "trades.csv",
			content:            "UTC_Time,Operation,Market,Buy/Sell Amount,Price\n2024-01-15 10:30:45,BUY\n",
			expectedStatusCode: http.StatusInternalServerError,
			expectedBody:       "error reading the file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTradeRepository()
			router := setupRouter(repo)

			body, contentType := multipartCSV(t, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/trades/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatusCode {
				t.Errorf("Expected status %d, got %d", tt.expectedStatusCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestUploadMissingFile(t *testing.T) {
	router := setupRouter(newFakeTradeRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/trades/upload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "no file uploaded") {
		t.Errorf("Expected missing-file error, got %s", w.Body.String())
	}
}

func TestUploadIdempotent(t *testing.T) {
	csvData := "UTC_Time,Operation,Market,Buy/Sell Amount,Price\n" +
		"2024-01-15 10:30:45,BUY,BTC/USDT,2,100\n"
	updated := "UTC_Time,Operation,Market,Buy/Sell Amount,Price\n" +
		"2024-01-15 10:30:45,SELL,BTC/USDT,7,300\n"

	repo := newFakeTradeRepository()
	router := setupRouter(repo)

	for _, content := range []string{csvData, updated} {
		body, contentType := multipartCSV(t, "trades.csv", content)
		req := httptest.NewRequest(http.MethodPost, "/api/trades/upload", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	}

	if len(repo.trades) != 1 {
		t.Fatalf("Expected exactly 1 stored trade after re-upload, got %d", len(repo.trades))
	}
	for _, stored := range repo.trades {
		if stored.Operation != model.OperationSell || !stored.Amount.Equal(decimal.RequireFromString("7")) {
			t.Errorf("Expected the second upload's values to win, got %+v", stored)
		}
	}
}

func TestBalance(t *testing.T) {
	repo := newFakeTradeRepository()
	repo.UpsertTrade(context.Background(), &model.Trade{
		UTCTime:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Market:    "BTC/USDT",
		Operation: model.OperationBuy,
		Amount:    decimal.RequireFromString("1.5"),
		Price:     decimal.RequireFromString("100"),
		BaseCoin:  "BTC",
		QuoteCoin: "USDT",
	})

	tests := []struct {
		name               string
		body               string
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:               "balances before cutoff",
			body:               `{"timestamp": "2024-02-01 00:00:00"}`,
			expectedStatusCode: http.StatusOK,
			expectedBody:       `"BTC":"1.5"`,
		},
		{
			name:               "no qualifying trades is empty, not an error",
			body:               `{"timestamp": "2024-01-01 00:00:00"}`,
			expectedStatusCode: http.StatusOK,
			expectedBody:       `"balances":{}`,
		},
		{
			name:               "missing timestamp",
			body:               `{}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "timestamp is required",
		},
		{
			name:               "unparsable timestamp",
			body:               `{"timestamp": "next tuesday"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "invalid timestamp format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(repo)

			req := httptest.NewRequest(http.MethodPost, "/api/trades/balance", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatusCode {
				t.Errorf("Expected status %d, got %d", tt.expectedStatusCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, w.Body.String())
			}
		})
	}
}
