package broadcaster

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"linkedlist/infra/kafka"
	"linkedlist/infra/outbox"
)

type Broadcaster struct {
	outbox    *outbox.Outbox
	publisher kafka.Publisher
	interval  time.Duration
	// FAILED events with this many retries are left alone; 0 retries forever.
	maxRetries uint32
	log        *log.Entry
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	ob *outbox.Outbox,
	publisher kafka.Publisher,
	interval time.Duration,
	maxRetries uint32,
) *Broadcaster {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		outbox:     ob,
		publisher:  publisher,
		interval:   interval,
		maxRetries: maxRetries,
		log:        log.WithField("component", "broadcaster"),
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run drains the outbox on every tick until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started")
	defer b.log.Info("stopped")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Flush(ctx); err != nil {
				b.log.WithError(err).Warn("flush failed")
			}
		}
	}
}

// Flush drops events already ACKED, then publishes every NEW event,
// then events left SENT by an interrupted run, then retries FAILED
// ones. It returns the number of events acknowledged by the broker.
func (b *Broadcaster) Flush(ctx context.Context) (int, error) {
	if err := b.sweepAcked(); err != nil {
		return 0, err
	}

	acked := 0
	for _, state := range []outbox.State{outbox.StateNew, outbox.StateSent, outbox.StateFailed} {
		err := b.outbox.ScanByState(state, func(rec outbox.Record) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if state == outbox.StateFailed && !b.retryDue(rec) {
				return nil
			}
			ok, err := b.deliver(ctx, rec)
			if ok {
				acked++
			}
			return err
		})
		if err != nil {
			return acked, err
		}
	}
	return acked, nil
}

func (b *Broadcaster) retryDue(rec outbox.Record) bool {
	if b.maxRetries > 0 && rec.Retries >= b.maxRetries {
		return false
	}
	return time.Since(time.Unix(0, rec.LastAttempt)) >= b.interval
}

func (b *Broadcaster) deliver(ctx context.Context, rec outbox.Record) (bool, error) {
	// 1. mark SENT before publishing
	if err := b.outbox.MarkSent(rec.Seq); err != nil {
		return false, err
	}

	var key []byte
	if e, err := outbox.DecodeEvent(rec.Payload); err == nil {
		key = []byte(e.List)
	}

	// 2. publish; failures are retried on a later tick
	if err := b.publisher.Publish(ctx, key, rec.Payload); err != nil {
		b.log.WithError(err).WithField("seq", rec.Seq).Warn("publish failed")
		return false, b.outbox.MarkFailed(rec.Seq)
	}

	// 3. record the ack, then drop the event
	if err := b.outbox.MarkAcked(rec.Seq); err != nil {
		return true, err
	}
	return true, b.outbox.Delete(rec.Seq)
}

// sweepAcked deletes events acknowledged before a crash or a failed
// Delete. They are never published again.
func (b *Broadcaster) sweepAcked() error {
	return b.outbox.ScanByState(outbox.StateAcked, func(rec outbox.Record) error {
		return b.outbox.Delete(rec.Seq)
	})
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
