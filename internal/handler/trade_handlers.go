package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tradebook/internal/ingest"
	"tradebook/internal/service"
)

// cutoffLayouts are the timestamp formats accepted by the balance query,
// tried in order.
var cutoffLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type TradeHandler struct {
	tradeService *service.TradesService
	logger       *logrus.Logger
}

func NewTradeHandler(service *service.TradesService, logger *logrus.Logger) *TradeHandler {
	return &TradeHandler{
		tradeService: service,
		logger:       logger,
	}
}

// Upload ingests a multipart CSV file of raw trade rows and reports how
// many rows were accepted and skipped.
func (h *TradeHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type, please upload a CSV file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error reading the file"})
		return
	}
	defer file.Close()

	rows, err := ingest.NewCSVRowReader(file)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error reading the file"})
		return
	}

	summary, err := h.tradeService.ImportTrades(c.Request.Context(), rows)
	switch {
	case errors.Is(err, ingest.ErrNoValidTrades):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid trade data found in the file"})
	case err != nil:
		h.logger.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error reading the file"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "file processed",
			"summary": summary,
		})
	}
}

type balanceRequest struct {
	Timestamp string `json:"timestamp" binding:"required"`
}

// Balance returns the net base-coin positions as of the given cutoff.
// The cutoff is exclusive: trades at the exact timestamp are not counted.
func (h *TradeHandler) Balance(c *gin.Context) {
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp is required"})
		return
	}

	cutoff, err := parseCutoff(req.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp format"})
		return
	}

	balances, err := h.tradeService.BalancesBefore(c.Request.Context(), cutoff)
	if err != nil {
		h.logger.WithError(err).Error("Failed to calculate balances")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error calculating balances"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func parseCutoff(s string) (time.Time, error) {
	for _, layout := range cutoffLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unable to parse timestamp with any known format")
}
