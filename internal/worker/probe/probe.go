// Package probe はCMSへの到達性を定期的に確認するヘルスプローブを提供する。
// 結果は /health の応答と hayart_cms_up メトリクスに反映される。
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hayart/web/internal/cms"
	"github.com/hayart/web/internal/metrics"
)

// DefaultSchedule はプローブの既定の実行間隔。
const DefaultSchedule = "@every 1m"

const (
	operationName = "HealthProbe"
	probeQuery    = `query HealthProbe { __typename }`
)

// CMSの状態。
const (
	StateUnknown = "unknown"
	StateUp      = "up"
	StateDown    = "down"
)

// Status は直近のプローブ結果。
type Status struct {
	State     string    `json:"state"`
	CheckedAt time.Time `json:"checked_at,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}

// Prober はCMSに軽量なGraphQLクエリを送り、到達性を記録する。
// Statusは複数のリクエストから並行に読まれる。
type Prober struct {
	client  cms.Executor
	metrics metrics.MetricsCollector
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	status Status
}

// NewProber はProberを生成する。collectorはnilでもよい。
func NewProber(client cms.Executor, collector metrics.MetricsCollector, logger *slog.Logger, timeout time.Duration) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		client:  client,
		metrics: collector,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
		status:  Status{State: StateUnknown},
	}
}

// RunOnce はプローブを1回実行し、結果を記録する。
func (p *Prober) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var out struct {
		Typename string `json:"__typename"`
	}
	err := p.client.Execute(ctx, operationName, probeQuery, nil, &out)

	status := Status{State: StateUp, CheckedAt: p.now()}
	if err != nil {
		status.State = StateDown
		status.LastError = err.Error()
	}

	p.mu.Lock()
	prev := p.status.State
	p.status = status
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.SetCMSUp(err == nil)
	}

	if prev != status.State {
		if err != nil {
			p.logger.Warn("CMSに到達できません",
				slog.String("previous_state", prev),
				slog.String("error", err.Error()),
			)
		} else {
			p.logger.Info("CMSへの到達を確認しました", slog.String("previous_state", prev))
		}
	}

	if err != nil {
		return fmt.Errorf("CMSヘルスプローブに失敗しました: %w", err)
	}
	return nil
}

// Status は直近のプローブ結果を返す。
func (p *Prober) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Scheduler はcron式に従ってプローブを実行する。
type Scheduler struct {
	prober *Prober
	logger *slog.Logger
	cron   *cron.Cron
}

// NewScheduler はSchedulerを生成する。
func NewScheduler(prober *Prober, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		prober: prober,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start はcron式scheduleに従ってプローブを開始する。起動直後にも1回実行する。
// ctxがキャンセルされると実行中のプローブの完了を待って停止する。
// scheduleが不正な場合はエラーを返す。
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	run := func() {
		if err := s.prober.RunOnce(ctx); err != nil {
			s.logger.Debug("ヘルスプローブが失敗しました", slog.String("error", err.Error()))
		}
	}
	if _, err := s.cron.AddFunc(schedule, run); err != nil {
		return fmt.Errorf("プローブのスケジュールが不正です %q: %w", schedule, err)
	}

	go run()
	s.cron.Start()
	s.logger.Info("CMSヘルスプローブを開始しました", slog.String("schedule", schedule))

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.logger.Info("CMSヘルスプローブを停止しました")
	}()
	return nil
}
