package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mkarpenko/stock_profit_service/config"
	"github.com/mkarpenko/stock_profit_service/data/repository"
	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/model/marketModel"
	"github.com/mkarpenko/stock_profit_service/internal/service"
	"github.com/mkarpenko/stock_profit_service/utils"
)

type Repository interface {
	InsertTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	InsertTransactions(ctx context.Context, txs []model.Transaction) error
	GetTransaction(ctx context.Context, transactionID int64) (model.Transaction, error)
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransactionsInRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID int64) error
	InsertDividends(ctx context.Context, dividends []model.Dividend) error
	GetDividends(ctx context.Context) ([]model.Dividend, error)
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type Cache interface {
	GetProfit(ctx context.Context) (model.Profit, error)
	SetProfit(ctx context.Context, profit model.Profit) error
	FlushProfit(ctx context.Context) error
	GetQuote(ctx context.Context, ticker string) (marketModel.Quote, error)
	SetQuote(ctx context.Context, quote marketModel.Quote) error
}

type Calculator interface {
	Calculate(transactions []model.Transaction, dividends []model.Dividend) (model.Profit, error)
}

type HistoryGenerator interface {
	Transactions(n int) []model.Transaction
	Dividends(transactions []model.Transaction) []model.Dividend
}

type MarketDataApi interface {
	GetQuote(ctx context.Context, ticker string) (marketModel.Quote, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.ProfitReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type Notifier interface {
	SendProfitSummary(ctx context.Context, profit model.Profit, reportLink string) error
}

// PortfolioService is the application core: it owns the transaction and
// dividend history and produces profit figures from it. CloudStorage and
// Notifier may be nil when the corresponding integrations are disabled.
type PortfolioService struct {
	cfg          *config.Config
	repo         Repository
	cache        Cache
	calculator   Calculator
	generator    HistoryGenerator
	marketApi    MarketDataApi
	reportGen    ReportGenerator
	cloudStorage CloudStorage
	notifier     Notifier
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	calculator Calculator,
	generator HistoryGenerator,
	marketApi MarketDataApi,
	reportGen ReportGenerator,
	cloudStorage CloudStorage,
	notifier Notifier,
) *PortfolioService {
	return &PortfolioService{
		cfg:          cfg,
		repo:         repo,
		cache:        cache,
		calculator:   calculator,
		generator:    generator,
		marketApi:    marketApi,
		reportGen:    reportGen,
		cloudStorage: cloudStorage,
		notifier:     notifier,
	}
}

// CalculateProfit computes profit over the persisted history. The result is
// served from cache when present, mutations of the history flush it.
func (s *PortfolioService) CalculateProfit(ctx context.Context) (profit model.Profit, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CalculateProfit"

	slog.Debug("CalculateProfit start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("CalculateProfit finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	profit, err = s.cache.GetProfit(ctx)
	if err == nil {
		return profit, nil
	}

	transactions, err := s.repo.GetTransactions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profit{}, err
	}

	dividends, err := s.repo.GetDividends(ctx)
	if err != nil {
		slog.Error("got error from repo.GetDividends", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profit{}, err
	}

	profit, err = s.calculator.Calculate(transactions, dividends)
	if err != nil {
		slog.Error("got error from calculator.Calculate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profit{}, err
	}

	err = s.cache.SetProfit(ctx, profit)
	if err != nil {
		slog.Error("got error from cache.SetProfit", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return profit, nil
}

// CalculateDefaultProfit replaces nothing: it generates a fresh random
// history, persists it alongside whatever is already stored and computes
// profit over the generated batch only.
func (s *PortfolioService) CalculateDefaultProfit(ctx context.Context) (profit model.Profit, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CalculateDefaultProfit"

	slog.Debug("CalculateDefaultProfit start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("CalculateDefaultProfit finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	transactions, dividends, err := s.GenerateHistory(ctx, s.cfg.Generator.DefaultTransactions)
	if err != nil {
		return model.Profit{}, err
	}

	profit, err = s.calculator.Calculate(transactions, dividends)
	if err != nil {
		slog.Error("got error from calculator.Calculate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profit{}, err
	}

	return profit, nil
}

// GenerateHistory creates n random transactions with a matching quarterly
// dividend schedule and persists both atomically.
func (s *PortfolioService) GenerateHistory(ctx context.Context, n int) (transactions []model.Transaction, dividends []model.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateHistory"

	slog.Debug("GenerateHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("n", n))
	defer func() {
		slog.Debug("GenerateHistory finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if n <= 0 {
		n = s.cfg.Generator.DefaultTransactions
	}

	transactions = s.generator.Transactions(n)
	dividends = s.generator.Dividends(transactions)

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertTransactions(ctx, transactions); err != nil {
			return err
		}
		if len(dividends) == 0 {
			return nil
		}
		return s.repo.InsertDividends(ctx, dividends)
	})
	if err != nil {
		slog.Error("got error from repo.WithinTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, nil, err
	}

	s.flushProfitCache(ctx, op)

	return transactions, dividends, nil
}

func (s *PortfolioService) AddTransaction(ctx context.Context, tx model.Transaction) (created model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddTransaction"

	slog.Debug("AddTransaction start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("AddTransaction finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if err := validateTransaction(tx); err != nil {
		return model.Transaction{}, err
	}

	created, err = s.repo.InsertTransaction(ctx, tx)
	if err != nil {
		slog.Error("got error from repo.InsertTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	s.flushProfitCache(ctx, op)

	return created, nil
}

func (s *PortfolioService) UpdateTransaction(ctx context.Context, tx model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateTransaction"

	slog.Debug("UpdateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", tx.ID))
	defer func() {
		slog.Debug("UpdateTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", tx.ID))
	}()

	if err := validateTransaction(tx); err != nil {
		return err
	}

	err = s.repo.UpdateTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.flushProfitCache(ctx, op)

	return nil
}

func (s *PortfolioService) DeleteTransaction(ctx context.Context, transactionID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))
	defer func() {
		slog.Debug("DeleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))
	}()

	err = s.repo.DeleteTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.flushProfitCache(ctx, op)

	return nil
}

func (s *PortfolioService) GetTransaction(ctx context.Context, transactionID int64) (tx model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetTransaction"

	slog.Debug("GetTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))
	defer func() {
		slog.Debug("GetTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))
	}()

	tx, err = s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Transaction{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	return tx, nil
}

func (s *PortfolioService) GetTransactions(ctx context.Context) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetTransactions"

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetTransactions finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	transactions, err = s.repo.GetTransactions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

func (s *PortfolioService) GetTransactionsInDateRange(ctx context.Context, start, end time.Time) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetTransactionsInDateRange"

	slog.Debug("GetTransactionsInDateRange start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetTransactionsInDateRange finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	transactions, err = s.repo.GetTransactionsInRange(ctx, start, end)
	if err != nil {
		slog.Error("got error from repo.GetTransactionsInRange", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

func (s *PortfolioService) GetDividends(ctx context.Context) (dividends []model.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetDividends"

	slog.Debug("GetDividends start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetDividends finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	dividends, err = s.repo.GetDividends(ctx)
	if err != nil {
		slog.Error("got error from repo.GetDividends", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return dividends, nil
}

// BuildProfitReport renders the current profit state into an xlsx workbook.
// When cloud storage is configured the file is uploaded and a public
// download link is returned alongside the bytes.
func (s *PortfolioService) BuildProfitReport(ctx context.Context) (fileBytes []byte, downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.BuildProfitReport"

	slog.Debug("BuildProfitReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("BuildProfitReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	profit, err := s.CalculateProfit(ctx)
	if err != nil {
		return nil, "", err
	}

	transactions, err := s.repo.GetTransactions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	dividends, err := s.repo.GetDividends(ctx)
	if err != nil {
		slog.Error("got error from repo.GetDividends", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	report := model.ProfitReport{
		Profit:       profit,
		Transactions: transactions,
		Dividends:    dividends,
		GeneratedAt:  time.Now().UTC(),
	}

	quote, err := s.getQuote(ctx)
	if err == nil {
		report.Quote = &quote
	}

	fileBytes, ext, err := s.reportGen.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if s.cloudStorage == nil {
		return fileBytes, "", nil
	}

	filename := fmt.Sprintf("profit_report_%s%s", report.GeneratedAt.Format("2006-01-02_15-04-05"), ext)
	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fileBytes, "", nil
	}

	return fileBytes, downloadLink, nil
}

// RefreshQuoteCache is a scheduler job keeping the market quote warm.
func (s *PortfolioService) RefreshQuoteCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshQuoteCache"

	quote, err := s.marketApi.GetQuote(ctx, s.cfg.API.MarketDataApi.Ticker)
	if err != nil {
		slog.Error("got error from marketApi.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.cache.SetQuote(ctx, quote)
	if err != nil {
		slog.Error("got error from cache.SetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// SendDailyReport is a scheduler job: build the report and push the summary
// to telegram when a notifier is configured.
func (s *PortfolioService) SendDailyReport(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.SendDailyReport"

	_, link, err := s.BuildProfitReport(ctx)
	if err != nil {
		return err
	}

	if s.notifier == nil {
		return nil
	}

	profit, err := s.CalculateProfit(ctx)
	if err != nil {
		return err
	}

	err = s.notifier.SendProfitSummary(ctx, profit, link)
	if err != nil {
		slog.Error("got error from notifier.SendProfitSummary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *PortfolioService) getQuote(ctx context.Context) (marketModel.Quote, error) {
	ticker := s.cfg.API.MarketDataApi.Ticker

	quote, err := s.cache.GetQuote(ctx, ticker)
	if err == nil {
		return quote, nil
	}

	quote, err = s.marketApi.GetQuote(ctx, ticker)
	if err != nil {
		return marketModel.Quote{}, err
	}

	_ = s.cache.SetQuote(ctx, quote)

	return quote, nil
}

func (s *PortfolioService) flushProfitCache(ctx context.Context, op string) {
	if err := s.cache.FlushProfit(ctx); err != nil {
		rqID := utils.GetRequestIDFromCtx(ctx)
		slog.Error("got error from cache.FlushProfit", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}
}

func validateTransaction(tx model.Transaction) error {
	if !tx.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", service.ErrInvalidTransaction, tx.Side)
	}
	if tx.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", service.ErrInvalidTransaction)
	}
	if tx.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", service.ErrInvalidTransaction)
	}
	if tx.Fee.IsNegative() {
		return fmt.Errorf("%w: fee must not be negative", service.ErrInvalidTransaction)
	}
	if tx.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", service.ErrInvalidTransaction)
	}
	return nil
}
