package suite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"feedreader/internal/metrics"

	"github.com/google/uuid"
)

// DefaultLoadTimeout используется, если Config.LoadTimeout не задан.
const DefaultLoadTimeout = 10 * time.Second

type Config struct {
	LoadTimeout time.Duration
	// Groups ограничивает прогон указанными группами (без учета регистра).
	Groups []string
	// NameFilter оставляет проверки, в полном имени которых есть подстрока.
	NameFilter string
	// Bail пропускает оставшиеся проверки после первой неуспешной.
	Bail bool
}

// Runner выполняет группы проверок последовательно, каждую на свежем окружении.
type Runner struct {
	factory EnvFactory
	config  Config
	groups  []Group
	log     *slog.Logger
}

type Option func(*Runner)

// WithGroups заменяет набор проверок по умолчанию.
func WithGroups(groups []Group) Option {
	return func(r *Runner) { r.groups = groups }
}

func NewRunner(factory EnvFactory, cfg Config, log *slog.Logger, opts ...Option) *Runner {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	r := &Runner{
		factory: factory,
		config:  cfg,
		groups:  DefaultGroups(),
		log:     log.With(slog.String("component", "suite")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run выполняет все проверки и возвращает отчет. Неудача одной проверки
// не мешает остальным, если не включен Bail.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	log := r.log.With(slog.String("run_id", report.ID))
	log.Info("Suite started", slog.Int("groups", len(r.groups)))

	bailed := false
	for _, g := range r.groups {
		gr := GroupResult{Name: g.Name}
		for _, c := range g.Cases {
			var res CaseResult
			switch {
			case !r.selected(g.Name, c.Name):
				res = CaseResult{Group: g.Name, Name: c.Name, Outcome: Skipped, SkipReason: "filtered out"}
			case bailed:
				res = CaseResult{Group: g.Name, Name: c.Name, Outcome: Skipped, SkipReason: "bail after failure"}
			case ctx.Err() != nil:
				res = CaseResult{Group: g.Name, Name: c.Name, Outcome: Skipped, SkipReason: "run cancelled"}
			default:
				res = r.runCase(ctx, g, c)
				if r.config.Bail && res.Outcome != Passed {
					bailed = true
				}
			}
			metrics.CheckResults.WithLabelValues(g.Name, res.Outcome.String()).Inc()
			r.logResult(log, res)
			gr.Cases = append(gr.Cases, res)
		}
		report.Groups = append(report.Groups, gr)
	}

	report.Duration = time.Since(report.Started)
	s := report.Summary()
	log.Info("Suite finished",
		slog.Int("passed", s.Passed),
		slog.Int("failed", s.Failed),
		slog.Int("errors", s.Errored),
		slog.Int("skipped", s.Skipped),
		slog.Duration("duration", report.Duration),
	)
	return report
}

func (r *Runner) runCase(ctx context.Context, g Group, c Case) (res CaseResult) {
	start := time.Now()
	res = CaseResult{Group: g.Name, Name: c.Name}
	caseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var t *T
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
		}
		if t != nil {
			res.Expectations = t.expectations
		}
		switch {
		case res.Err != nil:
			res.Outcome = Errored
		case t != nil && t.failed():
			res.Outcome = Failed
		default:
			res.Outcome = Passed
		}
		res.Duration = time.Since(start)
	}()

	env, err := r.factory(caseCtx)
	if err != nil {
		res.Err = fmt.Errorf("environment setup: %w", err)
		return res
	}
	t = newT(caseCtx, env, r.config.LoadTimeout)
	if g.BeforeEach != nil {
		if err := g.BeforeEach(t); err != nil {
			res.Err = fmt.Errorf("beforeEach: %w", err)
			return res
		}
	}
	res.Err = c.Run(t)
	return res
}

func (r *Runner) selected(group, name string) bool {
	if len(r.config.Groups) > 0 {
		found := false
		for _, g := range r.config.Groups {
			if strings.EqualFold(g, group) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.config.NameFilter != "" {
		full := strings.ToLower(group + " " + name)
		return strings.Contains(full, strings.ToLower(r.config.NameFilter))
	}
	return true
}

func (r *Runner) logResult(log *slog.Logger, res CaseResult) {
	attrs := []any{
		slog.String("group", res.Group),
		slog.String("check", res.Name),
		slog.String("outcome", res.Outcome.String()),
		slog.Duration("duration", res.Duration),
	}
	switch res.Outcome {
	case Errored:
		log.Error("Check errored", append(attrs, slog.Any("error", res.Err))...)
	case Failed:
		log.Warn("Check failed", attrs...)
	default:
		log.Debug("Check finished", attrs...)
	}
}
