package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkarpenko/stock_profit_service/config"
	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/model/marketModel"
	"github.com/mkarpenko/stock_profit_service/utils"
	"github.com/redis/go-redis/v9"
)

const (
	profitKey        = "profit:summary"
	quoteKeyTemplate = "quote:%s"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetProfit(ctx context.Context, profit model.Profit) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetProfit start", slog.String("rqID", rqID))

	profitJson, err := json.Marshal(profit)
	if err != nil {
		slog.Error(
			"can't marshal profit in SetProfit",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Any("profit", profit),
		)
		return errors.New("can't marshal profit")
	}

	_, err = r.redis.Set(ctx, profitKey, profitJson, r.cfg.Cache.ProfitExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetProfit completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetProfit(ctx context.Context) (model.Profit, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetProfit start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, profitKey).Result()
	if err != nil {
		return model.Profit{}, err
	}

	profit := model.Profit{}
	err = json.Unmarshal([]byte(res), &profit)
	if err != nil {
		slog.Error(
			"can't unmarshal profit in GetProfit",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Profit{}, errors.New("can't unmarshal profit")
	}

	slog.Debug("GetProfit finished", slog.String("rqID", rqID))

	return profit, nil
}

// FlushProfit drops the cached summary, called synchronously after any
// transaction mutation so the next calculation sees fresh data.
func (r *RedisCache) FlushProfit(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("FlushProfit start", slog.String("rqID", rqID))

	_, err := r.redis.Del(ctx, profitKey).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("FlushProfit completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) SetQuote(ctx context.Context, quote marketModel.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuote start", slog.String("rqID", rqID))

	quoteJson, err := json.Marshal(quote)
	if err != nil {
		slog.Error(
			"can't marshal quote in SetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Any("quote", quote),
		)
		return errors.New("can't marshal quote")
	}

	key := fmt.Sprintf(quoteKeyTemplate, quote.Ticker)
	_, err = r.redis.Set(ctx, key, quoteJson, r.cfg.Cache.QuoteExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	slog.Debug("SetQuote completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, ticker string) (marketModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID))

	key := fmt.Sprintf(quoteKeyTemplate, ticker)
	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		return marketModel.Quote{}, err
	}

	quote := marketModel.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshal quote in GetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return marketModel.Quote{}, errors.New("can't unmarshal quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return quote, nil
}
