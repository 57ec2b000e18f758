package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/evolution"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/phone"
)

// NumberChecker is the gateway call that verifies WhatsApp registration.
type NumberChecker interface {
	CheckNumbers(ctx context.Context, numbers []string) ([]evolution.NumberStatus, error)
}

// NumberCheck is the outcome of validating one raw phone input.
type NumberCheck struct {
	Input     string `json:"input"`
	Canonical string `json:"whatsapp"`
	Identity  string `json:"identity"`
	Exists    bool   `json:"valid"`
	JID       string `json:"jid,omitempty"`
}

const checkCacheTTL = time.Minute

// Validator normalizes a raw phone input and asks the gateway whether the
// canonical number is registered on WhatsApp. Registered results are
// memoized briefly so a user re-typing the same number during one form
// session does not hammer the gateway.
type Validator struct {
	checker NumberChecker
	cache   *gocache.Cache
}

// NewValidator creates a new Validator.
func NewValidator(checker NumberChecker) (*Validator, error) {
	if checker == nil {
		return nil, fmt.Errorf("number checker cannot be nil")
	}
	return &Validator{
		checker: checker,
		cache:   gocache.New(checkCacheTTL, 5*time.Minute),
	}, nil
}

// Validate checks one raw phone input. Input shape failures are reported
// before any network call.
func (v *Validator) Validate(ctx context.Context, raw string) (*NumberCheck, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ValidationError{Field: "whatsapp", Reason: "cannot be empty"}
	}

	canonical, err := phone.Normalize(raw)
	if err != nil {
		return nil, &ValidationError{Field: "whatsapp", Reason: "not a recognizable Brazilian phone number"}
	}

	if hit, ok := v.cache.Get(canonical); ok {
		return hit.(*NumberCheck), nil
	}

	statuses, err := v.checker.CheckNumbers(ctx, []string{canonical})
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("Evolution API returned no verdict for %s", canonical)
	}

	status := statuses[0]
	check := &NumberCheck{
		Input:     raw,
		Canonical: canonical,
		Identity:  phone.Identity(canonical),
		Exists:    status.Exists,
		JID:       status.JID,
	}

	// Only registered numbers are cached; an unregistered one can join
	// WhatsApp at any moment.
	if status.Exists {
		v.cache.SetDefault(canonical, check)
	}

	log.Info().Str("whatsapp", canonical).Bool("exists", status.Exists).Msg("WhatsApp number validated")
	return check, nil
}
