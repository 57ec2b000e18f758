package store

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/config"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/models"
)

// Option names, kept identical to the plugin's wp_options keys so an
// operator migrating from the WordPress version recognizes them.
const (
	OptionN8NWebhook        = "wpain_n8n_webhook"
	OptionEvolutionURL      = "wpain_evolution_url"
	OptionEvolutionAPIKey   = "wpain_evolution_apikey"
	OptionEvolutionInstance = "wpain_evolution_instance"
	OptionSiteURL           = "wpain_site_url"
)

// Store reads and writes named options and the form-submission audit log.
type Store struct {
	db *gorm.DB
}

// New creates a new Store.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database instance (gorm.DB) cannot be nil")
	}
	return &Store{db: db}, nil
}

// Get returns the value of a named option, or "" when unset.
func (s *Store) Get(name string) string {
	var opt models.Option
	err := s.db.Where("name = ?", name).First(&opt).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Str("option", name).Msg("Failed to read option")
		}
		return ""
	}
	return opt.Value
}

// Set upserts a named option.
func (s *Store) Set(name, value string) error {
	opt := models.Option{Name: name, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&opt).Error
	if err != nil {
		return fmt.Errorf("failed to save option %s: %w", name, err)
	}
	return nil
}

// Seed fills unset options from the environment-derived config. Runs once
// at boot; after that the store is authoritative and env values are only
// fallbacks for fresh databases.
func (s *Store) Seed(cfg *config.Config) error {
	seeds := map[string]string{
		OptionN8NWebhook:        cfg.N8NWebhookURL,
		OptionEvolutionURL:      cfg.EvolutionBaseURL,
		OptionEvolutionAPIKey:   cfg.EvolutionAPIKey,
		OptionEvolutionInstance: cfg.EvolutionInstance,
	}
	for name, value := range seeds {
		if value == "" || s.Get(name) != "" {
			continue
		}
		if err := s.Set(name, value); err != nil {
			return err
		}
		log.Info().Str("option", name).Msg("Option seeded from environment")
	}
	return nil
}

// N8NWebhookURL returns the desired webhook URL. This is the DesiredConfig
// the reconciler compares remote records against.
func (s *Store) N8NWebhookURL() string {
	return s.Get(OptionN8NWebhook)
}

// EvolutionConfig returns the gateway connection values and whether the
// set is complete enough to use.
func (s *Store) EvolutionConfig() (serverURL, apiKey, instance string, ok bool) {
	serverURL = s.Get(OptionEvolutionURL)
	apiKey = s.Get(OptionEvolutionAPIKey)
	instance = s.Get(OptionEvolutionInstance)
	ok = serverURL != "" && apiKey != "" && instance != ""
	return serverURL, apiKey, instance, ok
}

// SiteURL returns the public site URL reported in workflow metadata.
func (s *Store) SiteURL() string {
	return s.Get(OptionSiteURL)
}

// RecordFormSubmission appends one entry to the audit log.
func (s *Store) RecordFormSubmission(sub *models.FormSubmission) error {
	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to save form submission: %w", err)
	}
	return nil
}

// RecentFormSubmissions returns up to limit audit entries, newest first.
func (s *Store) RecentFormSubmissions(limit int) ([]models.FormSubmission, error) {
	var subs []models.FormSubmission
	err := s.db.Order("created_at DESC").Limit(limit).Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list form submissions: %w", err)
	}
	return subs, nil
}
