package reasoner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"

	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/metrics"
	"github.com/bearslyricattack/CompliAd/pkg/models"
	"github.com/bearslyricattack/CompliAd/pkg/report"
)

// Reasoner failure kinds.
var (
	ErrTimeout       = errors.New("reasoner timeout")
	ErrInvalidJSON   = errors.New("reasoner returned invalid json")
	ErrUpstream      = errors.New("reasoner upstream failure")
	ErrUnrecoverable = errors.New("reasoner unrecoverable")
)

// Adapter is the one-shot structured-JSON reasoner call: routed model,
// hard wall-clock timeout, single fallback, optional fail-safe
// re-analysis. It never retries beyond the fallback path.
type Adapter struct {
	client        Client
	router        *Router
	fallbackModel string
	callTimeout   time.Duration
	reanalysis    bool
	log           logger.Logger
}

// NewAdapter wires the adapter from the analysis config.
func NewAdapter(client Client, analysis config.AnalysisConfig, pipeline config.PipelineConfig) *Adapter {
	return &Adapter{
		client: client,
		router: NewRouter(
			pipeline.ShortThreshold,
			pipeline.LongThreshold,
			analysis.LightModel,
			analysis.HeavyModel,
		),
		fallbackModel: analysis.FallbackModel,
		callTimeout:   time.Duration(pipeline.ReasonerTimeoutSeconds) * time.Second,
		reanalysis:    analysis.FailsafeReanalysis,
		log:           logger.GetLogger().WithField("component", "reasoner"),
	}
}

// Analyze runs the compliance analysis for one request. On total
// failure it returns ErrUnrecoverable wrapped around the last cause;
// the pipeline converts that into the structured shell report.
func (a *Adapter) Analyze(ctx context.Context, req Request) (*models.Report, error) {
	model := a.router.Select(req.Content, req.Meta)

	rep, err := a.callOnce(ctx, model, req, false)
	usedFallback := false
	if err != nil {
		a.log.Warn("Primary reasoner call failed", logger.Fields{
			"model": model,
			"error": err.Error(),
		})
		if a.fallbackModel == "" || a.fallbackModel == model {
			return nil, fmt.Errorf("%w: %v", ErrUnrecoverable, err)
		}
		rep, err = a.callOnce(ctx, a.fallbackModel, req, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecoverable, err)
		}
		model = a.fallbackModel
		usedFallback = true
		metrics.ReasonerFallbacksTotal.Inc()
	}

	// False-negative guard: a spotless verdict with a suspiciously high
	// raw score earns exactly one stricter second look.
	if a.reanalysis && rep.SuspiciousClean {
		a.log.Info("Fail-safe re-analysis triggered", logger.Fields{
			"model": model,
			"score": rep.Score,
		})
		if rerun, rerr := a.callOnce(ctx, model, req, true); rerr == nil && len(rerun.Violations) > 0 {
			rep = rerun
		}
	}

	rep.ModelUsed = model
	rep.UsedFallback = usedFallback
	return rep, nil
}

func (a *Adapter) callOnce(ctx context.Context, model string, req Request, strict bool) (*models.Report, error) {
	system := buildSystemPrompt(req, strict)
	user := buildUserPrompt(req)

	to := timeout.With[string](a.callTimeout)
	raw, err := failsafe.NewExecutor[string](to).
		WithContext(ctx).
		Get(func() (string, error) {
			return a.client.Generate(ctx, model, system, user, auditMaxTokens)
		})
	if err != nil {
		metrics.ReasonerCallsTotal.WithLabelValues(model, "error").Inc()
		if errors.Is(err, timeout.ErrExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	rep, err := report.Parse(raw)
	if err != nil {
		metrics.ReasonerCallsTotal.WithLabelValues(model, "invalid_json").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	metrics.ReasonerCallsTotal.WithLabelValues(model, "ok").Inc()
	return rep, nil
}
