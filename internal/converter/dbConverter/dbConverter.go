package dbConverter

import (
	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/model/dbModel"
)

func ConvertTransaction(dbTx dbModel.Transaction) model.Transaction {
	return model.Transaction{
		ID:        dbTx.TransactionID,
		Side:      model.Side(dbTx.Side),
		Quantity:  dbTx.Quantity,
		Price:     dbTx.Price,
		Fee:       dbTx.Fee,
		Timestamp: dbTx.Ts,
	}
}

func ConvertToDbTransaction(tx model.Transaction) dbModel.Transaction {
	return dbModel.Transaction{
		TransactionID: tx.ID,
		Side:          string(tx.Side),
		Quantity:      tx.Quantity,
		Price:         tx.Price,
		Fee:           tx.Fee,
		Ts:            tx.Timestamp,
	}
}

func ConvertDividend(dbDiv dbModel.Dividend) model.Dividend {
	return model.Dividend{
		ID:             dbDiv.DividendID,
		AmountPerUnit:  dbDiv.AmountPerUnit,
		ExDividendDate: dbDiv.ExDividendDate,
		PaymentDate:    dbDiv.PaymentDate,
	}
}

func ConvertToDbDividend(div model.Dividend) dbModel.Dividend {
	return dbModel.Dividend{
		DividendID:     div.ID,
		AmountPerUnit:  div.AmountPerUnit,
		ExDividendDate: div.ExDividendDate,
		PaymentDate:    div.PaymentDate,
	}
}
