package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/gymcrowd/core/events"
	"github.com/kilianp07/gymcrowd/core/history"
	"github.com/kilianp07/gymcrowd/core/logger"
	coremetrics "github.com/kilianp07/gymcrowd/core/metrics"
	"github.com/kilianp07/gymcrowd/internal/eventbus"
)

// Collector turns bus events into metrics and history records. Either
// destination may be nil.
type Collector struct {
	Sink  coremetrics.MetricsSink
	Store history.Store
	Log   logger.Logger
}

// Handle processes a single event. Sink and store errors are logged, never
// propagated, so a slow or broken backend cannot affect predictions.
func (c Collector) Handle(ctx context.Context, ev events.Event) {
	log := c.Log
	if log == nil {
		log = logger.Nop{}
	}
	switch e := ev.(type) {
	case events.PredictionEvent:
		if c.Sink != nil {
			if err := c.Sink.RecordPrediction(coremetrics.PredictionRecord{
				Time:       e.Time,
				Count:      e.Result.Count,
				Raw:        e.Raw,
				Status:     e.Result.Status.String(),
				ModelState: e.ModelState,
				Latency:    e.Latency,
				Day:        e.Input.Day,
				Hour:       e.Input.Hour,
				IsHoliday:  e.Input.IsHoliday,
			}); err != nil {
				log.Warnf("record prediction metric: %v", err)
			}
		}
		c.store(ctx, log, history.FromPrediction(e))
	case events.FailureEvent:
		if r, ok := c.Sink.(coremetrics.FailureRecorder); ok {
			if err := r.RecordFailure(coremetrics.FailureRecord{
				Time:       e.Time,
				Kind:       e.Kind,
				Field:      e.Field,
				ModelState: e.ModelState,
			}); err != nil {
				log.Warnf("record failure metric: %v", err)
			}
		}
		c.store(ctx, log, history.FromFailure(e))
	case events.ModelStateEvent:
		if r, ok := c.Sink.(coremetrics.ModelStateRecorder); ok {
			rec := coremetrics.ModelStateRecord{
				Time:      e.Time,
				State:     e.State,
				ModelKind: e.ModelKind,
				Source:    e.Source,
			}
			if e.Err != nil {
				rec.Error = e.Err.Error()
			}
			if err := r.RecordModelState(rec); err != nil {
				log.Warnf("record model state metric: %v", err)
			}
		}
	}
}

func (c Collector) store(ctx context.Context, log logger.Logger, rec history.Record) {
	if c.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Store.Append(ctx, rec); err != nil {
		log.Warnf("append history %s: %v", rec.ID, err)
	}
}

// StartEventCollector subscribes to the event bus and hands every event to c.
// The subscription is queued, so bursts never lose records. It stops when the
// context is canceled or the bus is closed and drained; the returned channel
// is closed once the goroutine has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], c Collector) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil {
		close(done)
		return done
	}
	sub := bus.SubscribeQueued()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				c.Handle(context.WithoutCancel(ctx), ev)
			}
		}
	}()
	return done
}
