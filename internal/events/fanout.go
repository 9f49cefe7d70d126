package events

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// Fanout delivers every event to each recorder in order. All recorders are
// attempted; their errors are combined.
type Fanout struct {
	recorders []Recorder
}

// NewFanout skips nil recorders.
func NewFanout(recorders ...Recorder) *Fanout {
	f := &Fanout{}
	for _, r := range recorders {
		if r != nil {
			f.recorders = append(f.recorders, r)
		}
	}
	return f
}

// Len reports how many recorders are attached.
func (f *Fanout) Len() int {
	return len(f.recorders)
}

func (f *Fanout) RecordSale(ctx context.Context, sale SaleCompleted) error {
	var err error
	for i, r := range f.recorders {
		if recErr := r.RecordSale(ctx, sale); recErr != nil {
			err = multierr.Append(err, fmt.Errorf("recorder %d: %w", i, recErr))
		}
	}
	return err
}

func (f *Fanout) RecordRefund(ctx context.Context, refund RefundProcessed) error {
	var err error
	for i, r := range f.recorders {
		if recErr := r.RecordRefund(ctx, refund); recErr != nil {
			err = multierr.Append(err, fmt.Errorf("recorder %d: %w", i, recErr))
		}
	}
	return err
}

// Discard accepts and drops every event.
type Discard struct{}

func (Discard) RecordSale(context.Context, SaleCompleted) error     { return nil }
func (Discard) RecordRefund(context.Context, RefundProcessed) error { return nil }
