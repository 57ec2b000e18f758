package services

import (
	"strings"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/evolution"
)

// WebhookStatus classifies one record's webhook against the desired URL.
type WebhookStatus string

const (
	// WebhookCompatible means the record's webhook is non-empty and equal
	// to the desired URL. Equality is exact string match; no trailing-slash
	// or case normalization is applied.
	WebhookCompatible WebhookStatus = "compatible"
	// WebhookMismatched means the record's webhook is non-empty but differs
	// from the desired URL (or no desired URL is configured).
	WebhookMismatched WebhookStatus = "mismatched"
	// WebhookMissing means the record has no webhook configured.
	WebhookMissing WebhookStatus = "missing"
)

// Recommendation is the corrective hint derived from a summary.
type Recommendation string

const (
	RecommendationAllGood        Recommendation = "all-good"
	RecommendationNoneCompatible Recommendation = "none-compatible"
	RecommendationSomeMismatched Recommendation = "some-mismatched"
	// RecommendationNone means the mix needs no single corrective hint
	// (for example one compatible record next to one with a missing
	// webhook).
	RecommendationNone Recommendation = ""
)

// Summary is a derived view over one fetch of the remote record set. It is
// recomputed on every refresh and never cached beyond a display cycle.
type Summary struct {
	Total          int            `json:"total"`
	Active         int            `json:"active"`
	Compatible     int            `json:"compatible"`
	Mismatched     int            `json:"mismatched"`
	Missing        int            `json:"missing"`
	Recommendation Recommendation `json:"recommendation"`
	DesiredWebhook string         `json:"desiredWebhook"`
}

// ClassifyWebhook classifies a single record's webhook URL against the
// desired one.
func ClassifyWebhook(webhookURL, desired string) WebhookStatus {
	if strings.TrimSpace(webhookURL) == "" {
		return WebhookMissing
	}
	if desired != "" && webhookURL == desired {
		return WebhookCompatible
	}
	return WebhookMismatched
}

// ComputeSummary counts the records by activity and webhook status and
// derives a recommendation. Pure function over its inputs.
func ComputeSummary(records []evolution.Integration, desiredWebhook string) Summary {
	s := Summary{Total: len(records), DesiredWebhook: desiredWebhook}

	for _, rec := range records {
		if rec.Enabled {
			s.Active++
		}
		switch ClassifyWebhook(rec.WebhookURL, desiredWebhook) {
		case WebhookCompatible:
			s.Compatible++
		case WebhookMismatched:
			s.Mismatched++
		case WebhookMissing:
			s.Missing++
		}
	}

	switch {
	case s.Total > 0 && s.Compatible == s.Total && s.Active == s.Total:
		s.Recommendation = RecommendationAllGood
	case s.Compatible == 0:
		s.Recommendation = RecommendationNoneCompatible
	case s.Mismatched > 0:
		s.Recommendation = RecommendationSomeMismatched
	default:
		s.Recommendation = RecommendationNone
	}

	return s
}
