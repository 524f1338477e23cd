package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkarpenko/stock_profit_service/data/repository"
	"github.com/mkarpenko/stock_profit_service/internal/converter/dbConverter"
	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/model/dbModel"
	"github.com/mkarpenko/stock_profit_service/utils"
)

func (r *Postgres) InsertDividends(ctx context.Context, dividends []model.Dividend) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO dividends(amount_per_unit, ex_dividend_date, payment_date)
		VALUES(:amount_per_unit, :ex_dividend_date, :payment_date)
		`

	slog.Debug("InsertDividends start", slog.String("rqID", rqID), slog.Int("count", len(dividends)))
	defer func() {
		if err != nil {
			slog.Error("InsertDividends failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertDividends completed", slog.String("rqID", rqID))
		}
	}()

	if len(dividends) == 0 {
		return nil
	}

	dbDivs := make([]dbModel.Dividend, 0, len(dividends))
	for _, div := range dividends {
		dbDivs = append(dbDivs, dbConverter.ConvertToDbDividend(div))
	}

	_, err = r.txOrDb(ctx).NamedExecContext(ctx, query, dbDivs)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on ex_dividend_date
				return repository.ErrAlreadyExists
			}
		}
		return err
	}

	return nil
}

// GetDividends returns all dividends ordered by payment date.
func (r *Postgres) GetDividends(ctx context.Context) (dividends []model.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT dividend_id, amount_per_unit, ex_dividend_date, payment_date
		FROM dividends
		ORDER BY payment_date, dividend_id
		`

	slog.Debug("GetDividends start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetDividends failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetDividends completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbDiv dbModel.Dividend
		err = rows.StructScan(&dbDiv)
		if err != nil {
			return nil, err
		}
		dividends = append(dividends, dbConverter.ConvertDividend(dbDiv))
	}

	return dividends, nil
}
