package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/mkarpenko/stock_profit_service/data/repository"
	"github.com/mkarpenko/stock_profit_service/internal/converter/dbConverter"
	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/model/dbModel"
	"github.com/mkarpenko/stock_profit_service/utils"
)

func (r *Postgres) InsertTransaction(ctx context.Context, tx model.Transaction) (transaction model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(side, quantity, price, fee, ts)
		VALUES($1, $2, $3, $4, $5)
		RETURNING transaction_id
		`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID))
		}
	}()

	var transactionID int64
	err = r.txOrDb(ctx).QueryRowContext(ctx, query, string(tx.Side), tx.Quantity, tx.Price, tx.Fee, tx.Timestamp).
		Scan(&transactionID)
	if err != nil {
		return model.Transaction{}, err
	}

	tx.ID = transactionID
	return tx, nil
}

func (r *Postgres) InsertTransactions(ctx context.Context, txs []model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(side, quantity, price, fee, ts)
		VALUES(:side, :quantity, :price, :fee, :ts)
		`

	slog.Debug("InsertTransactions start", slog.String("rqID", rqID), slog.Int("count", len(txs)))
	defer func() {
		if err != nil {
			slog.Error("InsertTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransactions completed", slog.String("rqID", rqID))
		}
	}()

	if len(txs) == 0 {
		return nil
	}

	dbTxs := make([]dbModel.Transaction, 0, len(txs))
	for _, tx := range txs {
		dbTxs = append(dbTxs, dbConverter.ConvertToDbTransaction(tx))
	}

	_, err = r.txOrDb(ctx).NamedExecContext(ctx, query, dbTxs)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetTransaction(ctx context.Context, transactionID int64) (transaction model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, side, quantity, price, fee, ts
		FROM transactions
		WHERE transaction_id = $1
		`

	slog.Debug("GetTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransaction completed", slog.String("rqID", rqID))
		}
	}()

	dbTx := dbModel.Transaction{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, transactionID).StructScan(&dbTx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, repository.ErrNotFound
		}
		return model.Transaction{}, err
	}

	return dbConverter.ConvertTransaction(dbTx), nil
}

func (r *Postgres) getTransactions(ctx context.Context, query string, args ...any) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("getTransactions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("getTransactions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbTx dbModel.Transaction
		err = rows.StructScan(&dbTx)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, dbConverter.ConvertTransaction(dbTx))
	}

	return transactions, nil
}

// GetTransactions returns the whole history ordered by timestamp, the order
// the profit calculation expects.
func (r *Postgres) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	query := `
		SELECT transaction_id, side, quantity, price, fee, ts
		FROM transactions
		ORDER BY ts, transaction_id
		`
	return r.getTransactions(ctx, query)
}

func (r *Postgres) GetTransactionsInRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	query := `
		SELECT transaction_id, side, quantity, price, fee, ts
		FROM transactions
		WHERE ts > $1 AND ts < $2
		ORDER BY ts, transaction_id
		`
	return r.getTransactions(ctx, query, start, end)
}

func (r *Postgres) UpdateTransaction(ctx context.Context, tx model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE transactions
		SET side = $2, quantity = $3, price = $4, fee = $5, ts = $6
		WHERE transaction_id = $1
		`

	slog.Debug("UpdateTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateTransaction completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, tx.ID, string(tx.Side), tx.Quantity, tx.Price, tx.Fee, tx.Timestamp)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *Postgres) DeleteTransaction(ctx context.Context, transactionID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM transactions WHERE transaction_id = $1`

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteTransaction completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, transactionID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
