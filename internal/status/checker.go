package status

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/servers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const checkAllConcurrency = 4

// Checker re-probes stored servers and records the result
type Checker struct {
	servers  servers.Service
	prober   servers.Prober
	recorder audit.Recorder
	logger   *zap.Logger

	interval time.Duration
	stopChan chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewChecker creates a checker. interval only matters for Start.
func NewChecker(svc servers.Service, prober servers.Prober, recorder audit.Recorder, logger *zap.Logger, interval time.Duration) *Checker {
	return &Checker{
		servers:  svc,
		prober:   prober,
		recorder: recorder,
		logger:   logger.With(zap.String("component", "status")),
		interval: interval,
	}
}

// Check probes one server and stores its new status
func (c *Checker) Check(ctx context.Context, id string) (*servers.Server, error) {
	srv, err := c.servers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status := c.prober.Probe(ctx, srv.Credentials())
	updated, err := c.servers.SetStatus(ctx, id, status)
	if err != nil {
		audit.Record(ctx, c.recorder, c.logger, audit.Failure(audit.ActionCheckServer, id, err))
		return nil, fmt.Errorf("failed to store status for %s: %w", id, err)
	}

	audit.Record(ctx, c.recorder, c.logger, audit.Success(audit.ActionCheckServer, id,
		fmt.Sprintf("Server %s is %s", updated.Name, updated.Status)))

	return updated, nil
}

// CheckAll probes every active server. A failing server does not stop the
// others; their errors are joined.
func (c *Checker) CheckAll(ctx context.Context) ([]*servers.Server, error) {
	list, err := c.servers.List(ctx)
	if err != nil {
		return nil, err
	}

	var active []*servers.Server
	for _, srv := range list {
		if srv.Active {
			active = append(active, srv)
		}
	}

	results := make([]*servers.Server, len(active))
	errs := make([]error, len(active))

	var g errgroup.Group
	g.SetLimit(checkAllConcurrency)
	for i, srv := range active {
		g.Go(func() error {
			results[i], errs[i] = c.Check(ctx, srv.ID)
			return nil
		})
	}
	_ = g.Wait()

	checked := results[:0]
	for _, r := range results {
		if r != nil {
			checked = append(checked, r)
		}
	}
	return checked, errors.Join(errs...)
}

// Start runs CheckAll every interval until ctx is done or Stop is called
func (c *Checker) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interval <= 0 {
		return fmt.Errorf("status check interval must be positive")
	}
	if c.running {
		return fmt.Errorf("status checker already running")
	}

	c.running = true
	c.stopChan = make(chan struct{})
	go c.run(ctx, c.stopChan)

	c.logger.Info("status checker started", zap.Duration("interval", c.interval))
	return nil
}

// Stop stops a running checker
func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	close(c.stopChan)
	c.running = false
}

func (c *Checker) run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			checked, err := c.CheckAll(ctx)
			if err != nil {
				c.logger.Warn("status check pass had failures", zap.Error(err))
			}
			c.logger.Debug("status check pass finished", zap.Int("checked", len(checked)))
		}
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
