package worker

import (
	"context"
	"sync"
	"taskMap/internal/logger"
	"time"

	"go.uber.org/zap"
)

type HealthChecker interface {
	HealthCheck(context.Context) error
}

type Status struct {
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// HealthWorker периодически проверяет хранилище и пишет в лог смену состояния
type HealthWorker struct {
	checker  HealthChecker
	interval time.Duration
	timeout  time.Duration

	mtx  sync.RWMutex
	last *Status
}

func NewHealthWorker(checker HealthChecker, interval *time.Duration) *HealthWorker {
	intervalToSet := 30 * time.Second
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &HealthWorker{
		checker:  checker,
		interval: intervalToSet,
		timeout:  5 * time.Second,
	}
}

func (w *HealthWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка хранилища останавливается")
			return
		}
	}
}

func (w *HealthWorker) Check(ctx context.Context) Status {
	checkCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	err := w.checker.HealthCheck(checkCtx)
	status := Status{Healthy: err == nil, CheckedAt: time.Now()}
	if err != nil {
		status.Error = err.Error()
	}

	w.mtx.Lock()
	prev := w.last
	w.last = &status
	w.mtx.Unlock()

	switch {
	case prev == nil || prev.Healthy != status.Healthy:
		lvl := zap.InfoLevel
		if !status.Healthy {
			lvl = zap.ErrorLevel
		}
		logger.Log(lvl, "Worker: Состояние хранилища изменилось",
			zap.Bool("healthy", status.Healthy),
			zap.String("error", status.Error),
			zap.Duration("ms", time.Since(start)))
	default:
		logger.Debug("Worker: Проверка хранилища", zap.Bool("healthy", status.Healthy))
	}
	return status
}

// Last - результат последней проверки, nil до первой
func (w *HealthWorker) Last() *Status {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	if w.last == nil {
		return nil
	}
	out := *w.last
	return &out
}
