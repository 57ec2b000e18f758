package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/evolution"
)

func record(webhook string, enabled bool) evolution.Integration {
	return evolution.Integration{
		ID: "r",
		IntegrationSettings: evolution.IntegrationSettings{
			Enabled:    enabled,
			WebhookURL: webhook,
		},
	}
}

func TestClassifyWebhook(t *testing.T) {
	desired := "https://n8n.example/hook"

	assert.Equal(t, WebhookCompatible, ClassifyWebhook(desired, desired))
	assert.Equal(t, WebhookMismatched, ClassifyWebhook("https://other.example/hook", desired))
	assert.Equal(t, WebhookMissing, ClassifyWebhook("", desired))
	assert.Equal(t, WebhookMissing, ClassifyWebhook("   ", desired))

	// No desired webhook configured: every configured URL counts as a
	// mismatch, nothing can be compatible.
	assert.Equal(t, WebhookMismatched, ClassifyWebhook(desired, ""))
}

func TestClassifyWebhookIsExactMatch(t *testing.T) {
	// Deliberately no URL normalization: trailing slash or scheme case
	// differences are mismatches.
	assert.Equal(t, WebhookMismatched, ClassifyWebhook("https://n8n.example/hook/", "https://n8n.example/hook"))
	assert.Equal(t, WebhookMismatched, ClassifyWebhook("HTTPS://n8n.example/hook", "https://n8n.example/hook"))
}

func TestComputeSummaryAllGood(t *testing.T) {
	desired := "https://n8n.example/hook"
	s := ComputeSummary([]evolution.Integration{record(desired, true)}, desired)

	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.Active)
	assert.Equal(t, 1, s.Compatible)
	assert.Zero(t, s.Mismatched)
	assert.Zero(t, s.Missing)
	assert.Equal(t, RecommendationAllGood, s.Recommendation)
}

func TestComputeSummaryMissingAndMismatched(t *testing.T) {
	desired := "https://n8n.example/hook"
	s := ComputeSummary([]evolution.Integration{
		record("", true),
		record("https://other.example/hook", false),
	}, desired)

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Active)
	assert.Zero(t, s.Compatible)
	assert.Equal(t, 1, s.Mismatched)
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, RecommendationNoneCompatible, s.Recommendation)
	assert.NotEqual(t, RecommendationAllGood, s.Recommendation)
}

func TestComputeSummarySomeMismatched(t *testing.T) {
	desired := "https://n8n.example/hook"
	s := ComputeSummary([]evolution.Integration{
		record(desired, true),
		record("https://other.example/hook", true),
	}, desired)

	assert.Equal(t, 1, s.Compatible)
	assert.Equal(t, 1, s.Mismatched)
	assert.Equal(t, RecommendationSomeMismatched, s.Recommendation)
}

func TestComputeSummaryCompatibleButInactive(t *testing.T) {
	desired := "https://n8n.example/hook"
	s := ComputeSummary([]evolution.Integration{record(desired, false)}, desired)

	// Compatible webhook on a disabled record is not all-good.
	assert.Equal(t, 1, s.Compatible)
	assert.Zero(t, s.Active)
	assert.NotEqual(t, RecommendationAllGood, s.Recommendation)
}

func TestComputeSummaryNoRecords(t *testing.T) {
	s := ComputeSummary(nil, "https://n8n.example/hook")

	assert.Zero(t, s.Total)
	assert.Equal(t, RecommendationNoneCompatible, s.Recommendation)
}

func TestComputeSummaryCompatibleNextToMissing(t *testing.T) {
	desired := "https://n8n.example/hook"
	s := ComputeSummary([]evolution.Integration{
		record(desired, true),
		record("", true),
	}, desired)

	// One compatible, one missing, none mismatched: no single corrective
	// hint applies.
	assert.Equal(t, RecommendationNone, s.Recommendation)
}
