package marketDataApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/mkarpenko/stock_profit_service/config"
	"github.com/mkarpenko/stock_profit_service/internal/externalApi"
	"github.com/mkarpenko/stock_profit_service/internal/model/marketModel"
	"github.com/mkarpenko/stock_profit_service/utils"
	"github.com/shopspring/decimal"
)

type MarketDataApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *MarketDataApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.MarketDataApi.Url)
	return &MarketDataApi{client: client}
}

// GetQuote fetches the latest quote for the ticker. It is used only to
// enrich reports, profit math never depends on it.
func (a *MarketDataApi) GetQuote(ctx context.Context, ticker string) (marketModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v1/quotes"
	params := map[string]string{
		"symbol": ticker,
	}

	slog.Debug("start MarketDataApi.GetQuote request", slog.String("rqID", rqID), slog.String("ticker", ticker))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing MarketDataApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return marketModel.Quote{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		slog.Warn("ticker not found in MarketDataApi", slog.String("rqID", rqID), slog.String("ticker", ticker))
		return marketModel.Quote{}, externalApi.ErrNotFound
	}

	rawQuote := marketModel.RawQuote{}
	err = json.Unmarshal(resp.Body(), &rawQuote)
	if err != nil {
		slog.Error("can't unmarshal response into marketModel.RawQuote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return marketModel.Quote{}, err
	}

	price, err := decimal.NewFromString(rawQuote.Price)
	if err != nil {
		slog.Error("can't parse quote price", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("price", rawQuote.Price))
		return marketModel.Quote{}, err
	}

	slog.Debug("MarketDataApi.GetQuote request complete", slog.String("rqID", rqID))

	return marketModel.Quote{
		Ticker:   rawQuote.Symbol,
		Price:    price,
		Currency: rawQuote.Currency,
	}, nil
}
