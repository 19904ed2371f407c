package widget

import (
	"context"
	"sync"
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	"github.com/damon-houk/currency-rate-widget/internal/domain/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
)

// DefaultPollInterval matches the widget's refresh cadence
const DefaultPollInterval = 30 * time.Second

// Poller periodically pulls rates and keeps the latest widget snapshot.
// Trends compare each refresh against the rate set seen on the refresh before it.
type Poller struct {
	source     service.RatesGetter
	interval   time.Duration
	currencies []string
	logger     logger.Logger
	now        func() time.Time

	lock     sync.RWMutex           // guards the fields below
	last     *entity.ExchangeRateSet // rate set behind the current snapshot
	snapshot *Snapshot               // nil until the first refresh

	runOnce  sync.Once
	stopOnce sync.Once
	doneC    chan struct{} // closed by Stop
	exitedC  chan struct{} // closed when the loop returns
}

// NewPoller creates a poller; it does nothing until Start or Refresh is called
func NewPoller(source service.RatesGetter, interval time.Duration, currencies []string, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	if len(currencies) == 0 {
		currencies = DefaultCurrencies
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Poller{
		source:     source,
		interval:   interval,
		currencies: append([]string(nil), currencies...),
		logger:     log,
		now:        time.Now,
		doneC:      make(chan struct{}),
		exitedC:    make(chan struct{}),
	}
}

// Refresh pulls the current rates once and stores a new snapshot
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	current := p.source.GetRates(ctx)

	p.lock.Lock()
	defer p.lock.Unlock()

	snapshot := BuildSnapshot(current, p.last, p.currencies)
	snapshot.RefreshedAt = p.now()

	if len(snapshot.Quotes) < len(p.currencies) {
		p.logger.Warn("Some widget currencies are missing from the rate set", map[string]interface{}{
			"requested": p.currencies,
			"available": len(snapshot.Quotes),
		})
	}

	p.last = current
	p.snapshot = &snapshot

	return snapshot
}

// Snapshot returns the latest snapshot and whether one exists yet
func (p *Poller) Snapshot() (Snapshot, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.snapshot == nil {
		return Snapshot{}, false
	}
	return *p.snapshot, true
}

// Start refreshes immediately and then on every interval until Stop is called
// or ctx is done. Only the first call has any effect.
func (p *Poller) Start(ctx context.Context) {
	p.runOnce.Do(func() {
		p.Refresh(ctx)

		ticker := time.NewTicker(p.interval)

		go func() {
			defer close(p.exitedC)
			defer ticker.Stop()

			for {
				select {
				case <-p.doneC:
					return

				case <-ctx.Done():
					return

				case <-ticker.C:
					snapshot := p.Refresh(ctx)
					p.logger.Debug("Widget rates refreshed", map[string]interface{}{
						"source":  string(snapshot.Source),
						"updated": snapshot.UpdatedLabel,
					})
				}
			}
		}()

		p.logger.Info("Widget poller started", map[string]interface{}{
			"interval":   p.interval.String(),
			"currencies": p.currencies,
		})
	})
}

// Stop ends the polling loop and waits for it to exit. It is safe to call
// more than once and before Start.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.doneC)
	})

	started := true
	p.runOnce.Do(func() { started = false })
	if started {
		<-p.exitedC
	}
}
