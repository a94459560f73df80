package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Processor zapisuje jedną paczkę. Paczka albo wchodzi cała, albo zwraca błąd.
type Processor[T any] func(ctx context.Context, batch []T) error

// ProgressFunc wołana po każdej udanej paczce.
type ProgressFunc func(completed, total, percentage int, strategy Strategy)

// SleepFunc czeka d albo do anulowania ctx.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep to domyślny SleepFunc na timerze.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BatchError: paczka nie weszła po wyczerpaniu prób. Batch liczony od 1.
type BatchError struct {
	Batch    int
	Attempts int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("paczka %d nie zapisana po %d próbach: %v", e.Batch, e.Attempts, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Executor wykonuje paczki wg Config. Stan przebiegu żyje tylko w wywołaniu.
type Executor[T any] struct {
	Config     Config
	Sleep      SleepFunc
	Log        zerolog.Logger
	OnProgress ProgressFunc
}

func NewExecutor[T any](cfg Config, log zerolog.Logger) *Executor[T] {
	return &Executor[T]{Config: cfg, Sleep: Sleep, Log: log}
}

func (e *Executor[T]) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

func (e *Executor[T]) attempts() int {
	if e.Config.RetryAttempts < 1 {
		return 1
	}
	return e.Config.RetryAttempts
}

// ProcessWithExponentialBackoff woła fn do skutku, max RetryAttempts razy.
// Między próbami czeka BackoffDelay(n). Zwraca ostatni błąd.
func (e *Executor[T]) ProcessWithExponentialBackoff(ctx context.Context, batch []T, fn Processor[T]) (int, error) {
	maxAttempts := e.attempts()
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(ctx, batch); err == nil {
			return attempt, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return attempt, err
		}
		if attempt == maxAttempts {
			return attempt, err
		}
		delay := BackoffDelay(attempt)
		e.Log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("retry_in", delay).
			Msg("zapis paczki nieudany, ponawiam")
		if serr := e.sleep(ctx, delay); serr != nil {
			return attempt, serr
		}
	}
	return maxAttempts, err
}

// ProcessSequentially wykonuje paczki po kolei. Pierwsza paczka, która nie
// wejdzie po wszystkich próbach, kończy cały przebieg (*BatchError).
// Paczki zapisane wcześniej zostają w bazie.
func (e *Executor[T]) ProcessSequentially(ctx context.Context, batches [][]T, fn Processor[T]) (int, error) {
	total := countItems(batches)
	completed := 0

	for i, b := range batches {
		attempts, err := e.ProcessWithExponentialBackoff(ctx, b, fn)
		if err != nil {
			return completed, &BatchError{Batch: i + 1, Attempts: attempts, Err: err}
		}
		completed += len(b)
		e.progress(completed, total)

		e.Log.Debug().Int("batch", i+1).Int("of", len(batches)).Int("size", len(b)).Msg("paczka zapisana")

		if i < len(batches)-1 && e.Config.DelayBetweenBatches > 0 {
			if err := e.sleep(ctx, e.Config.DelayBetweenBatches); err != nil {
				return completed, err
			}
		}
	}
	return completed, nil
}

// ProcessParallel dzieli paczki na okna po MaxConcurrent i odpala okno
// równolegle (errgroup). Po oknie czeka DelayBetweenBatches. Pierwszy błąd
// przerywa przebieg; reszta okna kończy się przed zwróceniem.
func (e *Executor[T]) ProcessParallel(ctx context.Context, batches [][]T, fn Processor[T]) (int, error) {
	window := e.Config.MaxConcurrent
	if window < 1 {
		window = 1
	}
	total := countItems(batches)
	completed := 0

	for start := 0; start < len(batches); start += window {
		end := min(start+window, len(batches))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i, b := i, batches[i]
			g.Go(func() error {
				attempts, err := e.ProcessWithExponentialBackoff(gctx, b, fn)
				if err != nil {
					return &BatchError{Batch: i + 1, Attempts: attempts, Err: err}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return completed, err
		}

		for i := start; i < end; i++ {
			completed += len(batches[i])
		}
		e.progress(completed, total)

		if end < len(batches) && e.Config.DelayBetweenBatches > 0 {
			if err := e.sleep(ctx, e.Config.DelayBetweenBatches); err != nil {
				return completed, err
			}
		}
	}
	return completed, nil
}

func (e *Executor[T]) progress(completed, total int) {
	if e.OnProgress == nil {
		return
	}
	pct := 100
	if total > 0 {
		pct = int(math.Round(float64(completed) / float64(total) * 100))
	}
	e.OnProgress(completed, total, pct, e.Config.Strategy)
}

func countItems[T any](batches [][]T) int {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	return n
}
