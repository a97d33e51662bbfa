package reasoner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/models"
)

const violatingJSON = `{
	"score": 80,
	"status": "Non-Compliant",
	"summary": "prohibited cure claim",
	"violations": [{
		"severity": "critical",
		"regulation": "DMR Act 1954",
		"violation_title": "Cure claim",
		"evidence": "cures diabetes"
	}]
}`

const suspiciousCleanJSON = `{"score": 95, "status": "Compliant", "summary": "looks fine", "violations": []}`

const cleanJSON = `{"score": 5, "status": "Compliant", "summary": "fine", "violations": []}`

// scriptedClient answers one queued response per call, in order.
type scriptedClient struct {
	responses []string
	errs      []error
	calls     []string // model per call
}

func (c *scriptedClient) Generate(_ context.Context, model, system, user string, _ int32) (string, error) {
	i := len(c.calls)
	c.calls = append(c.calls, model)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func newTestAdapter(client Client, reanalysis bool) *Adapter {
	return NewAdapter(client,
		config.AnalysisConfig{
			LightModel:         "light",
			HeavyModel:         "heavy",
			FallbackModel:      "fallback",
			FailsafeReanalysis: reanalysis,
		},
		config.PipelineConfig{
			ShortThreshold:         3000,
			LongThreshold:          10000,
			ReasonerTimeoutSeconds: 5,
		},
	)
}

func plainRequest() Request {
	return Request{
		Content: "Short ad copy about herbal tea.",
		Meta:    models.ContentMetadata{Language: models.LanguageEnglish},
	}
}

func TestAnalyzePrimarySuccess(t *testing.T) {
	client := &scriptedClient{responses: []string{violatingJSON}}
	a := newTestAdapter(client, false)

	rep, err := a.Analyze(context.Background(), plainRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"light"}, client.calls)
	assert.Equal(t, "light", rep.ModelUsed)
	assert.False(t, rep.UsedFallback)
	require.Len(t, rep.Violations, 1)
	assert.Equal(t, models.SeverityCritical, rep.Violations[0].Severity)
}

func TestAnalyzeFallsBackOnce(t *testing.T) {
	client := &scriptedClient{
		errs:      []error{errors.New("quota exceeded"), nil},
		responses: []string{"", violatingJSON},
	}
	a := newTestAdapter(client, false)

	rep, err := a.Analyze(context.Background(), plainRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"light", "fallback"}, client.calls)
	assert.Equal(t, "fallback", rep.ModelUsed)
	assert.True(t, rep.UsedFallback)
}

func TestAnalyzeUnrecoverableWhenBothFail(t *testing.T) {
	client := &scriptedClient{
		errs: []error{errors.New("down"), errors.New("also down")},
	}
	a := newTestAdapter(client, false)

	_, err := a.Analyze(context.Background(), plainRequest())
	assert.ErrorIs(t, err, ErrUnrecoverable)
	assert.Equal(t, []string{"light", "fallback"}, client.calls)
}

func TestAnalyzeUnrecoverableOnInvalidJSON(t *testing.T) {
	client := &scriptedClient{
		responses: []string{"not json at all", "still not json"},
	}
	a := newTestAdapter(client, false)

	_, err := a.Analyze(context.Background(), plainRequest())
	assert.ErrorIs(t, err, ErrUnrecoverable)
	assert.Len(t, client.calls, 2)
}

func TestAnalyzeReanalysisSupersedesSuspiciousClean(t *testing.T) {
	client := &scriptedClient{responses: []string{suspiciousCleanJSON, violatingJSON}}
	a := newTestAdapter(client, true)

	rep, err := a.Analyze(context.Background(), plainRequest())
	require.NoError(t, err)

	// Same model, second call is the stricter re-analysis.
	assert.Equal(t, []string{"light", "light"}, client.calls)
	assert.Equal(t, models.StatusNonCompliant, rep.Status)
	require.Len(t, rep.Violations, 1)
}

func TestAnalyzeReanalysisKeepsVerdictWhenRerunClean(t *testing.T) {
	client := &scriptedClient{responses: []string{suspiciousCleanJSON, cleanJSON}}
	a := newTestAdapter(client, true)

	rep, err := a.Analyze(context.Background(), plainRequest())
	require.NoError(t, err)

	assert.Len(t, client.calls, 2)
	assert.Equal(t, models.StatusCompliant, rep.Status)
	assert.Empty(t, rep.Violations)
}

func TestAnalyzeReanalysisDisabled(t *testing.T) {
	client := &scriptedClient{responses: []string{suspiciousCleanJSON}}
	a := newTestAdapter(client, false)

	rep, err := a.Analyze(context.Background(), plainRequest())
	require.NoError(t, err)

	assert.Len(t, client.calls, 1)
	assert.Equal(t, models.StatusCompliant, rep.Status)
}

func TestAnalyzeLowScoreCleanDoesNotReanalyze(t *testing.T) {
	client := &scriptedClient{responses: []string{cleanJSON}}
	a := newTestAdapter(client, true)

	rep, err := a.Analyze(context.Background(), plainRequest())
	require.NoError(t, err)

	assert.Len(t, client.calls, 1)
	assert.Equal(t, models.StatusCompliant, rep.Status)
}
