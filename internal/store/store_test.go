package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/config"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Option{}, &models.FormSubmission{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM options")
		db.Exec("DELETE FROM form_submissions")
	})

	st, err := New(db)
	require.NoError(t, err)
	return st
}

func TestNewRequiresDatabase(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestOptionRoundTrip(t *testing.T) {
	st := newTestStore(t)

	assert.Equal(t, "", st.Get(OptionN8NWebhook))

	require.NoError(t, st.Set(OptionN8NWebhook, "https://n8n.example/webhook/abc"))
	assert.Equal(t, "https://n8n.example/webhook/abc", st.Get(OptionN8NWebhook))
}

func TestSetOverwritesExistingOption(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Set(OptionSiteURL, "https://old.example"))
	require.NoError(t, st.Set(OptionSiteURL, "https://new.example"))

	assert.Equal(t, "https://new.example", st.Get(OptionSiteURL))

	var count int64
	st.db.Model(&models.Option{}).Where("name = ?", OptionSiteURL).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSeedFillsOnlyUnsetOptions(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Set(OptionN8NWebhook, "https://n8n.example/webhook/kept"))

	cfg := &config.Config{
		N8NWebhookURL:     "https://n8n.example/webhook/env",
		EvolutionBaseURL:  "https://evo.example",
		EvolutionAPIKey:   "env-key",
		EvolutionInstance: "main",
	}
	require.NoError(t, st.Seed(cfg))

	assert.Equal(t, "https://n8n.example/webhook/kept", st.Get(OptionN8NWebhook))
	assert.Equal(t, "https://evo.example", st.Get(OptionEvolutionURL))
	assert.Equal(t, "env-key", st.Get(OptionEvolutionAPIKey))
	assert.Equal(t, "main", st.Get(OptionEvolutionInstance))
}

func TestSeedSkipsEmptyValues(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Seed(&config.Config{EvolutionInstance: "main"}))

	assert.Equal(t, "", st.Get(OptionEvolutionURL))
	assert.Equal(t, "main", st.Get(OptionEvolutionInstance))
}

func TestEvolutionConfigCompleteness(t *testing.T) {
	st := newTestStore(t)

	_, _, _, ok := st.EvolutionConfig()
	assert.False(t, ok)

	require.NoError(t, st.Set(OptionEvolutionURL, "https://evo.example"))
	require.NoError(t, st.Set(OptionEvolutionAPIKey, "key"))

	_, _, _, ok = st.EvolutionConfig()
	assert.False(t, ok)

	require.NoError(t, st.Set(OptionEvolutionInstance, "main"))

	serverURL, apiKey, instance, ok := st.EvolutionConfig()
	assert.True(t, ok)
	assert.Equal(t, "https://evo.example", serverURL)
	assert.Equal(t, "key", apiKey)
	assert.Equal(t, "main", instance)
}

func TestFormSubmissionAuditLog(t *testing.T) {
	st := newTestStore(t)

	first := &models.FormSubmission{
		Name:      "Maria Silva",
		Email:     "maria@example.com",
		Whatsapp:  "5511987654321",
		SessionID: "5511987654321@s.whatsapp.net",
		Status:    models.SubmissionStatusSent,
	}
	require.NoError(t, st.RecordFormSubmission(first))

	second := &models.FormSubmission{
		Name:      "João Souza",
		Email:     "joao@example.com",
		Whatsapp:  "5521999998888",
		SessionID: "form_1700000000_deadbeef",
		Status:    models.SubmissionStatusFailed,
		Error:     "webhook returned status 500",
	}
	require.NoError(t, st.RecordFormSubmission(second))

	subs, err := st.RecentFormSubmissions(10)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	byName := map[string]models.FormSubmission{}
	for _, sub := range subs {
		byName[sub.Name] = sub
	}
	assert.Equal(t, models.SubmissionStatusSent, byName["Maria Silva"].Status)
	assert.Equal(t, models.SubmissionStatusFailed, byName["João Souza"].Status)
	assert.Equal(t, "webhook returned status 500", byName["João Souza"].Error)

	limited, err := st.RecentFormSubmissions(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
