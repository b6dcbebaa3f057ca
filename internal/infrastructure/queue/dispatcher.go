package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

var (
	// ErrQueueFull is returned by Enqueue when the target worker's buffer is full.
	ErrQueueFull = errors.New("order queue full")
	// ErrStopped is returned by Enqueue once Stop has been called.
	ErrStopped = errors.New("order dispatcher stopped")
)

// Observer receives queue telemetry. A nil Observer is allowed.
type Observer interface {
	QueueDepth(worker, depth int)
	OrderProcessed(ok bool)
}

// Dispatcher routes webhook orders to a fixed set of workers by order id, so
// retries of one order are always handled by the same worker in order.
type Dispatcher struct {
	workers  []chan domain.OrderEvent
	service  ports.OrderService
	observer Observer
	log      zerolog.Logger
	wg       sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.OrderService, observer Observer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.OrderEvent, numWorkers),
		service:  service,
		observer: observer,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OrderEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Orders are processed under a
// context carrying ctx's values but not its cancellation: accepted orders are
// only ever abandoned by a Stop deadline.
func (d *Dispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(base, i, ch)
	}
}

// Stop refuses new orders, lets every worker drain its channel and waits for
// them to return. If ctx expires first the remaining orders are logged as
// lost and ctx's error is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		pending := 0
		for _, ch := range d.workers {
			pending += len(ch)
		}
		d.log.Error().Int("pending", pending).Msg("order drain timed out")
		return ctx.Err()
	}
}

// Enqueue hands an order to the worker responsible for its id without
// blocking the caller.
func (d *Dispatcher) Enqueue(order domain.OrderEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	idx := d.shardIndex(order.ID)
	select {
	case d.workers[idx] <- order:
		if d.observer != nil {
			d.observer.QueueDepth(idx, len(d.workers[idx]))
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID int64) int {
	n := int64(len(d.workers))
	idx := orderID % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OrderEvent) {
	defer d.wg.Done()
	for order := range ch {
		err := d.service.Process(ctx, order)
		if err != nil {
			d.log.Error().Err(err).
				Int64("order_id", order.ID).
				Int("worker_id", id).
				Msg("order processing failed")
		}
		if d.observer != nil {
			d.observer.OrderProcessed(err == nil)
			d.observer.QueueDepth(id, len(ch))
		}
	}
}
