package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/profit"
	"github.com/mkarpenko/stock_profit_service/internal/service"
	"github.com/mkarpenko/stock_profit_service/internal/transport/rest/middleware"
	"github.com/mkarpenko/stock_profit_service/utils"
)

const dateOnlyFormat = "2006-01-02"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type generateResponse struct {
	Transactions []model.Transaction `json:"transactions"`
	Dividends    []model.Dividend    `json:"dividends"`
}

// Controller exposes portfolio and transaction operations over HTTP via gin.
type Controller struct {
	svc Service
}

func NewController(svc Service) *Controller {
	return &Controller{svc: svc}
}

func (ctrl *Controller) SetupRoutes(g *gin.Engine) {
	g.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())

	g.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	portfolio := g.Group("/api/portfolio")
	{
		portfolio.GET("/generate", ctrl.generate)
		portfolio.GET("/calculate", ctrl.calculate)
		portfolio.GET("/calculate/default", ctrl.calculateDefault)
		portfolio.GET("/report", ctrl.report)
		portfolio.GET("/dividends", ctrl.getDividends)
	}

	transaction := g.Group("/api/transaction")
	{
		transaction.GET("/transactions", ctrl.getTransactions)
		transaction.GET("/transaction/:id", ctrl.getTransaction)
		transaction.GET("/transactionsInDateRange", ctrl.getTransactionsInDateRange)
		transaction.POST("/addTransaction", ctrl.addTransaction)
		transaction.PUT("/updateTransaction/:id", ctrl.updateTransaction)
		transaction.DELETE("/deleteTransaction/:id", ctrl.deleteTransaction)
	}
}

func (ctrl *Controller) generate(c *gin.Context) {
	n := 0
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			badRequest(c, "count must be a positive integer")
			return
		}
		n = parsed
	}

	transactions, dividends, err := ctrl.svc.GenerateHistory(c.Request.Context(), n)
	if err != nil {
		internalError(c, "GenerateHistory", err)
		return
	}

	c.JSON(http.StatusOK, generateResponse{Transactions: transactions, Dividends: dividends})
}

func (ctrl *Controller) calculate(c *gin.Context) {
	p, err := ctrl.svc.CalculateProfit(c.Request.Context())
	if err != nil {
		respondError(c, "CalculateProfit", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (ctrl *Controller) calculateDefault(c *gin.Context) {
	p, err := ctrl.svc.CalculateDefaultProfit(c.Request.Context())
	if err != nil {
		respondError(c, "CalculateDefaultProfit", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (ctrl *Controller) report(c *gin.Context) {
	fileBytes, downloadLink, err := ctrl.svc.BuildProfitReport(c.Request.Context())
	if err != nil {
		respondError(c, "BuildProfitReport", err)
		return
	}

	if downloadLink != "" {
		c.Header("X-Download-Link", downloadLink)
	}
	c.Header("Content-Disposition", `attachment; filename="profit_report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

func (ctrl *Controller) getDividends(c *gin.Context) {
	dividends, err := ctrl.svc.GetDividends(c.Request.Context())
	if err != nil {
		internalError(c, "GetDividends", err)
		return
	}
	if dividends == nil {
		dividends = []model.Dividend{}
	}

	c.JSON(http.StatusOK, dividends)
}

func (ctrl *Controller) getTransactions(c *gin.Context) {
	transactions, err := ctrl.svc.GetTransactions(c.Request.Context())
	if err != nil {
		internalError(c, "GetTransactions", err)
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	c.JSON(http.StatusOK, transactions)
}

func (ctrl *Controller) getTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id must be an integer")
		return
	}

	tx, err := ctrl.svc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetTransaction", err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

func (ctrl *Controller) getTransactionsInDateRange(c *gin.Context) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		badRequest(c, "start must be RFC3339 or YYYY-MM-DD")
		return
	}

	end, err := parseDate(c.Query("end"))
	if err != nil {
		badRequest(c, "end must be RFC3339 or YYYY-MM-DD")
		return
	}

	transactions, err := ctrl.svc.GetTransactionsInDateRange(c.Request.Context(), start, end)
	if err != nil {
		internalError(c, "GetTransactionsInDateRange", err)
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	c.JSON(http.StatusOK, transactions)
}

func (ctrl *Controller) addTransaction(c *gin.Context) {
	var tx model.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		badRequest(c, fmt.Sprintf("invalid body: %s", err))
		return
	}

	created, err := ctrl.svc.AddTransaction(c.Request.Context(), tx)
	if err != nil {
		respondError(c, "AddTransaction", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (ctrl *Controller) updateTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id must be an integer")
		return
	}

	var tx model.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		badRequest(c, fmt.Sprintf("invalid body: %s", err))
		return
	}
	tx.ID = id

	if err := ctrl.svc.UpdateTransaction(c.Request.Context(), tx); err != nil {
		respondError(c, "UpdateTransaction", err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

func (ctrl *Controller) deleteTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id must be an integer")
		return
	}

	if err := ctrl.svc.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, "DeleteTransaction", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(dateOnlyFormat, raw)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func internalError(c *gin.Context, where string, err error) {
	slog.Error(
		"internal error",
		slog.String("rqID", utils.GetRequestIDFromCtx(c.Request.Context())),
		slog.String("where", where),
		slog.String("err", err.Error()),
	)
	c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
}

// respondError maps known domain errors onto http statuses, anything else
// is a 500.
func respondError(c *gin.Context, where string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apiError{Code: "not_found", Message: "transaction not found"})
	case errors.Is(err, service.ErrInvalidTransaction),
		errors.Is(err, profit.ErrOverSell),
		errors.Is(err, profit.ErrNegativeHoldings),
		errors.Is(err, profit.ErrZeroQuantity):
		c.JSON(http.StatusUnprocessableEntity, apiError{Code: "unprocessable", Message: err.Error()})
	default:
		internalError(c, where, err)
	}
}
