// Package view keeps one session's local copy of the market in step with
// the store and records what the session collected.
package view

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/camp-animal-economy/internal/domain"
	"github.com/vietanh2810/camp-animal-economy/internal/realtime"
)

type Source interface {
	ListItems(ctx context.Context) ([]domain.MarketItem, error)
	ApplyCollect(ctx context.Context, observed domain.MarketItem) (domain.MarketItem, error)
	Subscribe() *realtime.Subscription
}

type Option func(*MarketView)

// WithOnChange registers a callback invoked with every new snapshot. It runs
// on the view's event loop and must not block.
func WithOnChange(fn func([]domain.MarketItem)) Option {
	return func(v *MarketView) {
		v.onChange = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(v *MarketView) {
		v.now = now
	}
}

// event is one mutation of the local copy applied by the event loop.
type event struct {
	item domain.MarketItem
	done chan struct{}
}

// MarketView is mounted once per session. Every change to the local copy is
// applied by a single goroutine, which publishes a new immutable snapshot.
type MarketView struct {
	src      Source
	onChange func([]domain.MarketItem)
	now      func() time.Time

	items  atomic.Pointer[[]domain.MarketItem]
	events chan event
	sub    *realtime.Subscription

	receiptsMu sync.Mutex
	receipts   []domain.CollectedReceipt

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Mount subscribes to row updates, fetches the market once and starts the
// event loop. A failed fetch is logged and leaves the view empty. Either way
// the first snapshot is published before Mount returns. Updates received
// while fetching are applied on top of the fetched rows. The caller must
// Close the view.
func Mount(ctx context.Context, src Source, opts ...Option) *MarketView {
	v := &MarketView{
		src:    src,
		now:    time.Now,
		events: make(chan event),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.ctx, v.cancel = context.WithCancel(ctx)
	v.sub = src.Subscribe()

	v.replaceAll(v.fetch())

	v.wg.Add(1)
	go v.run()

	return v
}

// fetch returns the whole market, or an empty list when the store fails.
func (v *MarketView) fetch() []domain.MarketItem {
	items, err := v.src.ListItems(v.ctx)
	if err != nil {
		zap.L().Error("error fetching market", zap.String("op", "fetch"), zap.Error(err))
		return nil
	}

	return items
}

func (v *MarketView) run() {
	defer v.wg.Done()

	for {
		select {
		case <-v.ctx.Done():
			return

		case ev := <-v.events:
			v.replace(ev.item)
			close(ev.done)

		case item, ok := <-v.sub.C():
			if !ok {
				v.resubscribe()
				continue
			}
			v.replace(item)
		}
	}
}

// resubscribe recovers from the hub dropping this view: updates may have
// been missed, so the whole market is fetched again.
func (v *MarketView) resubscribe() {
	if v.ctx.Err() != nil {
		return
	}

	zap.L().Warn("market subscription lost, resubscribing")
	v.sub = v.src.Subscribe()

	items, err := v.src.ListItems(v.ctx)
	if err != nil {
		zap.L().Error("error fetching market", zap.String("op", "resubscribe"), zap.Error(err))
		return
	}
	v.replaceAll(items)
}

func (v *MarketView) replaceAll(items []domain.MarketItem) {
	next := make([]domain.MarketItem, len(items))
	copy(next, items)
	v.items.Store(&next)
	v.changed(next)
}

// replace swaps the row with the same type, keeping every other row where it
// was. An unknown type leaves the view unchanged.
func (v *MarketView) replace(item domain.MarketItem) {
	cur := *v.items.Load()

	i := slices.IndexFunc(cur, func(m domain.MarketItem) bool { return m.Type == item.Type })
	if i < 0 {
		return
	}

	next := slices.Clone(cur)
	next[i] = item
	v.items.Store(&next)
	v.changed(next)
}

func (v *MarketView) changed(items []domain.MarketItem) {
	if v.onChange != nil {
		v.onChange(items)
	}
}

// enqueue hands ev to the event loop and waits until it has been applied.
func (v *MarketView) enqueue(ev event) {
	ev.done = make(chan struct{})

	select {
	case v.events <- ev:
	case <-v.ctx.Done():
		return
	}

	select {
	case <-ev.done:
	case <-v.ctx.Done():
	}
}

// Items returns the current snapshot.
func (v *MarketView) Items() []domain.MarketItem {
	return slices.Clone(*v.items.Load())
}

func (v *MarketView) find(itemType string) (domain.MarketItem, bool) {
	for _, item := range *v.items.Load() {
		if item.Type == itemType {
			return item, true
		}
	}

	return domain.MarketItem{}, false
}

// Collect collects one unit of itemType as seen by this view. It reports
// false without touching the store when the view has no such item. A failed
// write is logged and returned, and no receipt is recorded.
func (v *MarketView) Collect(ctx context.Context, itemType string) (domain.CollectedReceipt, bool, error) {
	item, ok := v.find(itemType)
	if !ok {
		return domain.CollectedReceipt{}, false, nil
	}

	updated, err := v.src.ApplyCollect(ctx, item)
	if err != nil {
		zap.L().Error("update failed", zap.String("type", itemType), zap.Error(err))
		return domain.CollectedReceipt{}, false, err
	}

	v.enqueue(event{item: updated})

	receipt := domain.NewReceipt(updated, v.now())

	v.receiptsMu.Lock()
	v.receipts = append(v.receipts, receipt)
	v.receiptsMu.Unlock()

	return receipt, true, nil
}

// Receipts returns the session's receipts in collection order.
func (v *MarketView) Receipts() []domain.CollectedReceipt {
	v.receiptsMu.Lock()
	defer v.receiptsMu.Unlock()

	return slices.Clone(v.receipts)
}

// Close stops the event loop and releases the subscription. Safe to call
// more than once.
func (v *MarketView) Close() {
	v.closeOnce.Do(func() {
		v.cancel()
		v.wg.Wait()
		v.sub.Unsubscribe()
	})
}
