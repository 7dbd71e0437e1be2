package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stitchfab/stitchfab/internal/adapter/payment"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	testhelpers "github.com/stitchfab/stitchfab/internal/test"
)

func TestNewPaymentPollerDefaults(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	poller := NewPaymentPoller(&testhelpers.WorkerFacadeStub{}, time.Second, 0, 0, logger)
	if poller.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", poller.batchSize)
	}
	if poller.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", poller.workers)
	}
}

func TestPaymentPollerRecordsVerdicts(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.WorkerFacadeStub{Orders: [][]model.Order{{{ID: 1}}}}
	poller := NewPaymentPoller(facade, 10*time.Millisecond, 1, 1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		processed := len(facade.Updates) > 0
		facade.Unlock()
		if processed {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for payment processing")
		case <-time.After(10 * time.Millisecond):
		}
	}

	poller.Stop()
	facade.Lock()
	defer facade.Unlock()
	if len(facade.Updates) == 0 {
		t.Fatalf("expected payment status update")
	}
	update := facade.Updates[0].Update
	if update.Status != nil {
		t.Fatal("poller must never touch fulfilment status")
	}
	if update.PaymentStatus == nil || *update.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("expected paid payment status, got %v", update.PaymentStatus)
	}
}

func TestPaymentPollerSkipsPendingVerdicts(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	checked := int32(0)
	facade := &testhelpers.WorkerFacadeStub{
		Orders: [][]model.Order{{{ID: 1}}},
		CheckFn: func(ctx context.Context, orderID int64) (*payment.Status, error) {
			atomic.AddInt32(&checked, 1)
			return &payment.Status{OrderID: orderID, Status: model.PaymentStatusPending}, nil
		},
	}
	poller := NewPaymentPoller(facade, 5*time.Millisecond, 1, 1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for atomic.LoadInt32(&checked) == 0 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for payment check")
		case <-time.After(5 * time.Millisecond):
		}
	}
	poller.Stop()

	facade.Lock()
	defer facade.Unlock()
	if len(facade.Updates) != 0 {
		t.Fatalf("expected no updates for pending verdicts, got %d", len(facade.Updates))
	}
}

func TestPaymentPollerHandlesRateLimiting(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	attempts := int32(0)
	facade := &testhelpers.WorkerFacadeStub{
		Orders: [][]model.Order{{{ID: 1}}, {{ID: 1}}},
		CheckFn: func(ctx context.Context, orderID int64) (*payment.Status, error) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return nil, payment.TooManyRequestsError{RetryAfter: 10 * time.Millisecond}
			}
			return &payment.Status{OrderID: orderID, Status: model.PaymentStatusFailed}, nil
		},
	}

	poller := NewPaymentPoller(facade, 5*time.Millisecond, 1, 1, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	deadline := time.After(time.Second)
	for {
		facade.Lock()
		if len(facade.Updates) > 0 {
			facade.Unlock()
			break
		}
		facade.Unlock()
		select {
		case <-deadline:
			t.Fatal("timeout waiting for retry")
		case <-time.After(10 * time.Millisecond):
		}
	}
	poller.Stop()
}
