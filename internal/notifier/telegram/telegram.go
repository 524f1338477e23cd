// Package telegram pushes profit summaries to a telegram chat. It only
// sends outgoing messages, no updates are polled.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkarpenko/stock_profit_service/config"
	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/utils"
	tele "gopkg.in/telebot.v4"
)

type Notifier struct {
	bot  *tele.Bot
	chat tele.ChatID
}

func New(cfg *config.Config) *Notifier {
	settings := tele.Settings{Token: cfg.Telegram.Token}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &Notifier{bot: b, chat: tele.ChatID(cfg.Telegram.ChatID)}
}

func (n *Notifier) SendProfitSummary(ctx context.Context, profit model.Profit, reportLink string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Notifier.SendProfitSummary"

	text := fmt.Sprintf(
		"daily profit summary\n\ntotal: %s\nrealized: %s\ndividends: %s\nunrealized: %s",
		profit.TotalProfit.String(),
		profit.RealizedProfit.String(),
		profit.DividendProfit.String(),
		profit.UnrealizedGains.String(),
	)
	if reportLink != "" {
		text += fmt.Sprintf("\n\nreport: %s", reportLink)
	}

	_, err := n.bot.Send(n.chat, text)
	if err != nil {
		slog.Error("got error from bot.Send", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SendProfitSummary completed", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}
