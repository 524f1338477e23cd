package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkarpenko/stock_profit_service/config"
	"github.com/mkarpenko/stock_profit_service/internal/model"
)

type Service interface {
	CalculateProfit(ctx context.Context) (model.Profit, error)
	CalculateDefaultProfit(ctx context.Context) (model.Profit, error)
	GenerateHistory(ctx context.Context, n int) ([]model.Transaction, []model.Dividend, error)
	BuildProfitReport(ctx context.Context) (fileBytes []byte, downloadLink string, err error)
	AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID int64) error
	GetTransaction(ctx context.Context, transactionID int64) (model.Transaction, error)
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransactionsInDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetDividends(ctx context.Context) ([]model.Dividend, error)
}

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
}

func NewServer(cfg *config.Config, ctrl *Controller) *Server {
	if !cfg.API.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	g := gin.New()
	ctrl.SetupRoutes(g)

	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + cfg.HTTP.Port,
			Handler: g,
		},
		cfg: cfg,
	}
}

func (s *Server) Start() {
	go func() {
		slog.Info("http server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", slog.String("err", err.Error()))
			panic(err)
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	slog.Info("start stopping http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
		return
	}
	slog.Info("http server stopped")
}
