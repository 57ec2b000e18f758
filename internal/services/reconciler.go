package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/evolution"
)

// Gateway is the slice of the Evolution API the reconciler depends on.
// Implemented by *evolution.Client; faked in tests.
type Gateway interface {
	FindIntegrations(ctx context.Context) ([]evolution.Integration, error)
	CreateIntegration(ctx context.Context, settings evolution.IntegrationSettings) (*evolution.Integration, error)
	UpdateIntegration(ctx context.Context, id string, settings evolution.IntegrationSettings) error
}

// DesiredConfig exposes the locally configured webhook URL. The reconciler
// only reads it; the settings layer owns mutation.
type DesiredConfig interface {
	N8NWebhookURL() string
}

// State describes where the reconciler is in its refresh cycle.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateEmpty    State = "empty"
	StateSingle   State = "single"
	StateMultiple State = "multiple"
	StateError    State = "error"
)

// Snapshot is the last-known view of the remote record set. A failed
// refresh keeps the previous records and summary and only flips the state.
type Snapshot struct {
	State        State                   `json:"state"`
	Integrations []evolution.Integration `json:"integrations"`
	Summary      Summary                 `json:"summary"`
	Err          string                  `json:"error,omitempty"`
	FetchedAt    time.Time               `json:"fetchedAt"`
}

// createSettleDelay is the minimum time between a successful create and the
// next refresh. A create immediately followed by a refresh can re-trigger a
// create in the UI before the gateway's list reflects the new record.
const createSettleDelay = time.Second

// Reconciler compares the desired webhook configuration against the
// integration records discovered on the gateway and applies corrective
// mutations. The gateway is externally mutable, so every mutation re-reads
// the current record before writing a full replacement payload.
type Reconciler struct {
	gateway Gateway
	desired DesiredConfig

	// refreshing enforces at-most-one in-flight fetch. Checked and set
	// atomically before any network call, cleared on every exit path.
	refreshing atomic.Bool

	// mu serializes mutating operations and guards snap/lastCreate. The
	// gateway's full-replace update semantics turn racing mutations into
	// lost updates.
	mu          sync.Mutex
	snap        Snapshot
	lastCreate  time.Time
	settleDelay time.Duration
}

// NewReconciler creates a new Reconciler.
func NewReconciler(gateway Gateway, desired DesiredConfig) (*Reconciler, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway cannot be nil")
	}
	if desired == nil {
		return nil, fmt.Errorf("desired config source cannot be nil")
	}
	return &Reconciler{
		gateway:     gateway,
		desired:     desired,
		snap:        Snapshot{State: StateIdle},
		settleDelay: createSettleDelay,
	}, nil
}

// Snapshot returns the last-known view without touching the network.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Refresh fetches the current record set, classifies it by count and
// recomputes the summary. A refresh that arrives while another is running
// fails with ErrRefreshInFlight instead of issuing a duplicate fetch.
func (r *Reconciler) Refresh(ctx context.Context) (Snapshot, error) {
	if !r.refreshing.CompareAndSwap(false, true) {
		return r.Snapshot(), ErrRefreshInFlight
	}
	defer r.refreshing.Store(false)

	if err := r.waitSettle(ctx); err != nil {
		return r.Snapshot(), err
	}

	r.setState(StateLoading)

	records, err := r.gateway.FindIntegrations(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Integration refresh failed")
		r.mu.Lock()
		r.snap.State = StateError
		r.snap.Err = err.Error()
		snap := r.snap
		r.mu.Unlock()
		return snap, err
	}

	summary := ComputeSummary(records, r.desired.N8NWebhookURL())

	r.mu.Lock()
	r.snap = Snapshot{
		State:        classifyCount(len(records)),
		Integrations: records,
		Summary:      summary,
		FetchedAt:    time.Now(),
	}
	snap := r.snap
	r.mu.Unlock()

	log.Info().Str("state", string(snap.State)).Int("total", summary.Total).
		Int("compatible", summary.Compatible).Int("mismatched", summary.Mismatched).
		Int("missing", summary.Missing).Msg("Integration refresh complete")
	return snap, nil
}

// Create submits a new integration with the fixed default parameter set.
// Only valid while the last-known remote state is empty; with records
// present the operator selects or repairs instead, never duplicates.
// The caller is expected to Refresh afterwards; the settle window keeps an
// immediate refresh from racing the gateway's eventual consistency.
func (r *Reconciler) Create(ctx context.Context, webhookURL, description string) (*evolution.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if webhookURL == "" {
		return nil, &ValidationError{Field: "webhook_url", Reason: "cannot be empty"}
	}
	if r.snap.State != StateEmpty {
		return nil, &ValidationError{Field: "state", Reason: fmt.Sprintf("create requires an empty gateway state, current state is %q", r.snap.State)}
	}

	settings := DefaultIntegrationSettings(webhookURL, description)

	created, err := r.gateway.CreateIntegration(ctx, settings)
	if err != nil {
		return nil, err
	}

	r.lastCreate = time.Now()
	log.Info().Str("integrationID", created.ID).Str("webhookUrl", webhookURL).Msg("Integration created")
	return created, nil
}

// Toggle flips the enabled flag of one record. The record is re-read first
// so the full-replace payload carries its current field values, not the
// values from the last refresh.
func (r *Reconciler) Toggle(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		return &ValidationError{Field: "integration_id", Reason: "cannot be empty"}
	}

	current, err := r.fetchRecord(ctx, id)
	if err != nil {
		return err
	}

	settings := current.Settings()
	settings.Enabled = enabled

	if err := r.gateway.UpdateIntegration(ctx, id, settings); err != nil {
		return err
	}

	log.Info().Str("integrationID", id).Bool("enabled", enabled).Msg("Integration toggled")
	return nil
}

// RepairWebhook points one record at a new webhook URL, preserving every
// other field through the same re-fetch-then-full-replace discipline.
func (r *Reconciler) RepairWebhook(ctx context.Context, id, newWebhookURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		return &ValidationError{Field: "integration_id", Reason: "cannot be empty"}
	}
	if newWebhookURL == "" {
		return &ValidationError{Field: "webhook_url", Reason: "cannot be empty"}
	}

	current, err := r.fetchRecord(ctx, id)
	if err != nil {
		return err
	}

	settings := current.Settings()
	settings.WebhookURL = newWebhookURL

	if err := r.gateway.UpdateIntegration(ctx, id, settings); err != nil {
		return err
	}

	log.Info().Str("integrationID", id).Str("webhookUrl", newWebhookURL).Msg("Integration webhook repaired")
	return nil
}

// fetchRecord re-reads the remote set and locates one record by id. The
// last-known snapshot is deliberately not trusted here: another actor may
// have changed or removed the record since the last refresh.
func (r *Reconciler) fetchRecord(ctx context.Context, id string) (*evolution.Integration, error) {
	records, err := r.gateway.FindIntegrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read integrations before update: %w", err)
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, &NotFoundError{ID: id}
}

// waitSettle blocks until the settle window after the last create has
// elapsed, or the context is done.
func (r *Reconciler) waitSettle(ctx context.Context) error {
	r.mu.Lock()
	last := r.lastCreate
	delay := r.settleDelay
	r.mu.Unlock()

	if last.IsZero() {
		return nil
	}
	remaining := delay - time.Since(last)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) setState(s State) {
	r.mu.Lock()
	r.snap.State = s
	r.mu.Unlock()
}

func classifyCount(n int) State {
	switch {
	case n == 0:
		return StateEmpty
	case n == 1:
		return StateSingle
	default:
		return StateMultiple
	}
}

// DefaultIntegrationSettings is the fixed parameter set new integrations
// are created with, matching the Evolution API's documented N8N defaults.
func DefaultIntegrationSettings(webhookURL, description string) evolution.IntegrationSettings {
	if description == "" {
		description = "Integração criada através do plugin wp-ai-agent-n8n"
	}
	return evolution.IntegrationSettings{
		Enabled:         true,
		Description:     description,
		WebhookURL:      webhookURL,
		Expire:          60,
		KeywordFinish:   "sair",
		DelayMessage:    300,
		UnknownMessage:  "Desculpe, não entendi...",
		ListeningFromMe: false,
		StopBotFromMe:   true,
		KeepOpen:        false,
		DebounceTime:    0,
		IgnoreJids:      []string{},
		SplitMessages:   true,
		TimePerChar:     200,
		TriggerType:     "all",
		TriggerOperator: "contains",
		TriggerValue:    "",
	}
}
