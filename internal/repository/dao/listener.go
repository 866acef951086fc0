package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type marketNotification struct {
	ID   uint   `json:"id"`
	Type string `json:"type"`
}

// MarketListener turns pg_notify events raised by the market trigger into
// fresh rows handed to onUpdate. It holds its own connection because a
// LISTEN session cannot share a pooled one.
type MarketListener struct {
	dsn       string
	channel   string
	reconnect time.Duration
	dao       *MarketDAO
	onUpdate  func(MarketItem)
}

func NewMarketListener(dsn, channel string, reconnect time.Duration, dao *MarketDAO, onUpdate func(MarketItem)) *MarketListener {
	return &MarketListener{
		dsn:       dsn,
		channel:   channel,
		reconnect: reconnect,
		dao:       dao,
		onUpdate:  onUpdate,
	}
}

// Run listens until ctx is cancelled, reconnecting after connection loss.
func (l *MarketListener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}

		zap.L().Warn("market listener disconnected, retrying",
			zap.String("channel", l.channel),
			zap.Duration("in", l.reconnect),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.reconnect):
		}
	}
}

func (l *MarketListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("pgx.Connect -> %w", err)
	}
	defer conn.Close(context.Background())

	if _, err = conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("conn.Exec(LISTEN) -> %w", err)
	}
	zap.L().Info("listening for market updates", zap.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("conn.WaitForNotification -> %w", err)
		}

		l.handle(ctx, n.Payload)
	}
}

func (l *MarketListener) handle(ctx context.Context, payload string) {
	var note marketNotification
	if err := json.Unmarshal([]byte(payload), &note); err != nil {
		zap.L().Warn("malformed market notification", zap.String("payload", payload), zap.Error(err))
		return
	}

	item, err := l.dao.FindByType(ctx, note.Type)
	if err != nil {
		if !errors.Is(err, ErrMarketItemNotFound) {
			zap.L().Error("failed to load notified market item", zap.String("type", note.Type), zap.Error(err))
		}
		return
	}

	l.onUpdate(item)
}
