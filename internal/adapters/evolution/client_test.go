package evolution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "test-key", "main")
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsMissingConfig(t *testing.T) {
	_, err := NewClient("", "key", "main")
	assert.Error(t, err)
	_, err = NewClient("https://evo.example", "", "main")
	assert.Error(t, err)
	_, err = NewClient("https://evo.example", "key", "")
	assert.Error(t, err)
}

func TestFindIntegrationsAcceptedShapes(t *testing.T) {
	record := `{"id":"abc","enabled":true,"webhookUrl":"https://n8n.example/hook","triggerType":"all"}`

	cases := []struct {
		name string
		body string
	}{
		{"data envelope", `{"data":[` + record + `]}`},
		{"result envelope", `{"result":[` + record + `]}`},
		{"bare array", `[` + record + `]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/n8n/find/main", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("apikey"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			})

			integrations, err := client.FindIntegrations(context.Background())
			require.NoError(t, err)
			require.Len(t, integrations, 1)
			assert.Equal(t, "abc", integrations[0].ID)
			assert.True(t, integrations[0].Enabled)
			assert.Equal(t, "https://n8n.example/hook", integrations[0].WebhookURL)
			assert.Equal(t, "all", integrations[0].TriggerType)
		})
	}
}

func TestFindIntegrationsEmptySet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	integrations, err := client.FindIntegrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, integrations)
}

func TestFindIntegrationsUnexpectedShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"pong"}`))
	})

	_, err := client.FindIntegrations(context.Background())
	var protocol *ProtocolError
	require.ErrorAs(t, err, &protocol)
	assert.Contains(t, protocol.Body, "pong")
}

func TestFindIntegrationsSurfacesStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid apikey"}`))
	})

	_, err := client.FindIntegrations(context.Background())
	var protocol *ProtocolError
	require.ErrorAs(t, err, &protocol)
	assert.Equal(t, http.StatusUnauthorized, protocol.StatusCode)
	assert.Contains(t, protocol.Body, "invalid apikey")
	assert.Contains(t, err.Error(), "invalid apikey")
}

func TestCreateIntegration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/n8n/create/main", r.URL.Path)

		var settings IntegrationSettings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&settings))
		assert.True(t, settings.Enabled)
		assert.Equal(t, "https://n8n.example/hook", settings.WebhookURL)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"new-1","enabled":true,"webhookUrl":"https://n8n.example/hook"}`))
	})

	created, err := client.CreateIntegration(context.Background(), IntegrationSettings{
		Enabled:    true,
		WebhookURL: "https://n8n.example/hook",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)
}

func TestCreateIntegrationNon201IsProtocolError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// A 200 is not a creation acknowledgement for this endpoint.
		_, _ = w.Write([]byte(`{"id":"new-1"}`))
	})

	_, err := client.CreateIntegration(context.Background(), IntegrationSettings{WebhookURL: "x"})
	var protocol *ProtocolError
	require.ErrorAs(t, err, &protocol)
	assert.Equal(t, http.StatusOK, protocol.StatusCode)
}

func TestUpdateIntegration(t *testing.T) {
	var gotBody IntegrationSettings
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/n8n/update/abc/main", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	settings := IntegrationSettings{
		Enabled:       true,
		WebhookURL:    "https://n8n.example/hook",
		TriggerType:   "all",
		KeywordFinish: "sair",
		IgnoreJids:    []string{},
	}
	require.NoError(t, client.UpdateIntegration(context.Background(), "abc", settings))
	assert.Equal(t, settings, gotBody)
}

func TestUpdateIntegrationFailureKeepsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"webhookUrl is required"}`))
	})

	err := client.UpdateIntegration(context.Background(), "abc", IntegrationSettings{})
	var protocol *ProtocolError
	require.ErrorAs(t, err, &protocol)
	assert.Equal(t, http.StatusBadRequest, protocol.StatusCode)
	assert.Contains(t, protocol.Body, "webhookUrl is required")
}

func TestCheckNumbers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/whatsappNumbers/main", r.URL.Path)

		var req map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"5511987654321"}, req["numbers"])

		_, _ = w.Write([]byte(`[{"exists":true,"jid":"5511987654321@s.whatsapp.net","number":"5511987654321"}]`))
	})

	statuses, err := client.CheckNumbers(context.Background(), []string{"5511987654321"})
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Exists)
	assert.Equal(t, "5511987654321@s.whatsapp.net", statuses[0].JID)
}

func TestDecodeIntegrationListPrefersDataOverResult(t *testing.T) {
	body := []byte(`{"data":[{"id":"a"}],"result":[{"id":"b"}]}`)
	list, ok := decodeIntegrationList(body)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}
