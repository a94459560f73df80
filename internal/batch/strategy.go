package batch

import (
	"math"
	"time"
)

type Strategy string

const (
	StrategySmall  Strategy = "small"
	StrategyMedium Strategy = "medium"
	StrategyLarge  Strategy = "large"
)

// progi wolumenu
const (
	smallBelow  = 1000
	mediumUpTo  = 10000
	maxBackoff  = 10 * time.Second
	baseBackoff = 500 * time.Millisecond
)

// Config to parametry zapisu paczek dla jednego importu.
type Config struct {
	BatchSize           int           `json:"batch_size"`
	MaxConcurrent       int           `json:"max_concurrent"`
	RetryAttempts       int           `json:"retry_attempts"`
	DelayBetweenBatches time.Duration `json:"delay_between_batches"`
	Strategy            Strategy      `json:"strategy"`
	// EstimatedTimeMinutes tylko informacyjnie, nie steruje wykonaniem.
	EstimatedTimeMinutes float64 `json:"estimated_time_minutes"`
}

type tier struct {
	strategy       Strategy
	batchSize      int
	delay          time.Duration
	minutesPerLoop float64
}

var (
	tierSmall  = tier{StrategySmall, 200, 250 * time.Millisecond, 0.5}
	tierMedium = tier{StrategyMedium, 300, 750 * time.Millisecond, 1.2}
	tierLarge  = tier{StrategyLarge, 150, 1500 * time.Millisecond, 2}
)

// DetermineStrategy wybiera próg wg liczby rekordów:
// <1000 small, 1000..10000 medium, >10000 large.
func DetermineStrategy(total int) Config {
	t := tierLarge
	switch {
	case total < smallBelow:
		t = tierSmall
	case total <= mediumUpTo:
		t = tierMedium
	}

	batches := math.Ceil(float64(total) / float64(t.batchSize))
	return Config{
		BatchSize:            t.batchSize,
		MaxConcurrent:        1,
		RetryAttempts:        3,
		DelayBetweenBatches:  t.delay,
		Strategy:             t.strategy,
		EstimatedTimeMinutes: batches * t.minutesPerLoop,
	}
}

// BackoffDelay = min(500ms * 2^(attempt-1), 10s); attempt liczony od 1.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		return maxBackoff
	}
	d := baseBackoff << (attempt - 1)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
