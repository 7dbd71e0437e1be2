package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/stitchfab/stitchfab/internal/adapter/payment"
	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the poller.
type PaymentFacade interface {
	PendingOnlinePayments(ctx context.Context, limit int) ([]model.Order, error)
	CheckPayment(ctx context.Context, orderID int64) (*payment.Status, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error)
}

// PaymentPoller polls the payment provider for pending online payments and
// records the verdicts concurrently.
type PaymentPoller struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentPoller constructs the payment poller worker pool.
func NewPaymentPoller(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentPoller {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PaymentPoller{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background polling.
func (p *PaymentPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentPoller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentPoller) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentPoller) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.PendingOnlinePayments(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending payments failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *PaymentPoller) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *PaymentPoller) handleOrder(ctx context.Context, order model.Order) {
	result, err := p.facade.CheckPayment(ctx, order.ID)
	if err != nil {
		switch e := err.(type) {
		case payment.TooManyRequestsError:
			p.logger.Warn("payment provider rate limited", slog.Duration("retry_after", e.RetryAfter))
			time.Sleep(e.RetryAfter)
		default:
			if errors.Is(err, payment.ErrNotRegistered) {
				return
			}
			p.logger.Error("payment status fetch failed",
				slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		}
		return
	}

	// Still pending on the provider side, nothing to record yet.
	if result.Status == model.PaymentStatusPending {
		return
	}

	update := model.StatusUpdate{PaymentStatus: &result.Status}
	if _, err := p.facade.UpdateOrderStatus(ctx, order.ID, update); err != nil {
		p.logger.Error("payment status update failed",
			slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
	}
}
