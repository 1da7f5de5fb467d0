package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

var ErrClosed = errors.New("executor is closed")

// PoolExecutor runs whole jobs on a bounded goroutine pool. Submit fails
// fast when every worker is busy.
type PoolExecutor struct {
	pool   *ants.Pool
	logger *logging.Logger

	// mu orders wg.Add in Submit before wg.Wait in Close.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewPoolExecutor(size int, logger *logging.Logger) (*PoolExecutor, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if size < 1 {
		size = 1
	}

	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithLogger(antsLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("create executor pool: %w", err)
	}

	return &PoolExecutor{pool: pool, logger: logger}, nil
}

// Submit fails with ErrClosed once Close has been called.
func (e *PoolExecutor) Submit(ctx context.Context, task func(ctx context.Context)) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.wg.Add(1)
	e.mu.Unlock()

	err := e.pool.Submit(func() {
		defer e.wg.Done()
		runCaught(ctx, e.logger, task)
	})
	if err != nil {
		e.wg.Done()
		return fmt.Errorf("submit task: %w", err)
	}
	return nil
}

func (e *PoolExecutor) Running() int {
	return e.pool.Running()
}

// Close stops accepting jobs and waits for running ones until ctx is done,
// then releases the pool. Later calls return nil.
func (e *PoolExecutor) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	defer e.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

// InlineExecutor runs the job on the caller goroutine.
type InlineExecutor struct {
	logger *logging.Logger
}

func NewInlineExecutor(logger *logging.Logger) *InlineExecutor {
	if logger == nil {
		logger = logging.Default()
	}
	return &InlineExecutor{logger: logger}
}

func (e *InlineExecutor) Submit(ctx context.Context, task func(ctx context.Context)) error {
	runCaught(ctx, e.logger, task)
	return nil
}

func runCaught(ctx context.Context, logger *logging.Logger, task func(ctx context.Context)) {
	var catcher panics.Catcher
	catcher.Try(func() { task(ctx) })
	if recovered := catcher.Recovered(); recovered != nil {
		logger.ErrorContext(ctx, "job panicked",
			"error", recovered.AsError(),
			"stack", string(recovered.Stack),
		)
	}
}

type antsLogger struct {
	logger *logging.Logger
}

func (l antsLogger) Printf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}
