package evolution

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// requestTimeout bounds every call to the gateway. A timeout is reported as
// a plain transport failure, not a special state.
const requestTimeout = 30 * time.Second

// Client struct holds the configuration for the Evolution API client.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	apiKey     string
	instance   string
}

// NewClient creates a new Evolution API client bound to one instance.
func NewClient(baseURL, apiKey, instance string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("Evolution baseURL cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Evolution apiKey cannot be empty")
	}
	if instance == "" {
		return nil, fmt.Errorf("Evolution instance cannot be empty")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(requestTimeout)

	log.Info().Str("baseURL", baseURL).Str("instance", instance).Msg("Evolution client configured")

	return &Client{
		httpClient: client,
		baseURL:    baseURL,
		apiKey:     apiKey,
		instance:   instance,
	}, nil
}

// Instance returns the Evolution instance name this client is bound to.
func (c *Client) Instance() string { return c.instance }

// BaseURL returns the configured server URL without a trailing slash.
func (c *Client) BaseURL() string { return strings.TrimRight(c.baseURL, "/") }

// APIKey returns the configured API key.
func (c *Client) APIKey() string { return c.apiKey }

// FindIntegrations lists the N8N integration records of the instance.
// The Evolution API has shipped three different envelope shapes for this
// call over time, all of which are accepted; any other shape fails decode.
func (c *Client) FindIntegrations(ctx context.Context) ([]Integration, error) {
	url := fmt.Sprintf("/n8n/find/%s", c.instance)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Evolution API: FindIntegrations request failed")
		return nil, &TransportError{Op: "FindIntegrations", Err: err}
	}

	if resp.IsError() {
		log.Error().Str("url", url).Int("statusCode", resp.StatusCode()).Str("responseBody", string(resp.Body())).Msg("Evolution API: FindIntegrations returned an error")
		return nil, &ProtocolError{Op: "FindIntegrations", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	integrations, ok := decodeIntegrationList(resp.Body())
	if !ok {
		log.Error().Str("url", url).Str("responseBody", string(resp.Body())).Msg("Evolution API: FindIntegrations response has an unexpected shape")
		return nil, &ProtocolError{Op: "FindIntegrations", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	log.Info().Int("count", len(integrations)).Msg("Retrieved N8N integrations from Evolution API")
	return integrations, nil
}

// CreateIntegration creates a new N8N integration on the instance.
// The gateway signals success with 201 and echoes the created record.
func (c *Client) CreateIntegration(ctx context.Context, settings IntegrationSettings) (*Integration, error) {
	url := fmt.Sprintf("/n8n/create/%s", c.instance)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(settings).
		Post(url)

	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Evolution API: CreateIntegration request failed")
		return nil, &TransportError{Op: "CreateIntegration", Err: err}
	}

	if resp.StatusCode() != http.StatusCreated {
		log.Error().Str("url", url).Int("statusCode", resp.StatusCode()).Str("responseBody", string(resp.Body())).Msg("Evolution API: CreateIntegration returned an error")
		return nil, &ProtocolError{Op: "CreateIntegration", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var integration Integration
	if err := json.Unmarshal(resp.Body(), &integration); err != nil {
		log.Error().Err(err).Str("url", url).Str("responseBody", string(resp.Body())).Msg("Evolution API: CreateIntegration response decode failed")
		return nil, &ProtocolError{Op: "CreateIntegration", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	log.Info().Str("integrationID", integration.ID).Str("webhookUrl", integration.WebhookURL).Msg("Successfully created N8N integration")
	return &integration, nil
}

// UpdateIntegration replaces the full parameter set of an existing record.
// This is PUT semantics on the gateway side: the payload must carry every
// field, not only the ones that changed.
func (c *Client) UpdateIntegration(ctx context.Context, id string, settings IntegrationSettings) error {
	url := fmt.Sprintf("/n8n/update/%s/%s", id, c.instance)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(settings).
		Put(url)

	if err != nil {
		log.Error().Err(err).Str("url", url).Str("integrationID", id).Msg("Evolution API: UpdateIntegration request failed")
		return &TransportError{Op: "UpdateIntegration", Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		log.Error().Str("url", url).Str("integrationID", id).Int("statusCode", resp.StatusCode()).Str("responseBody", string(resp.Body())).Msg("Evolution API: UpdateIntegration returned an error")
		return &ProtocolError{Op: "UpdateIntegration", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	log.Info().Str("integrationID", id).Msg("Successfully updated N8N integration")
	return nil
}

// CheckNumbers asks the gateway which of the given canonical numbers are
// registered on WhatsApp.
func (c *Client) CheckNumbers(ctx context.Context, numbers []string) ([]NumberStatus, error) {
	url := fmt.Sprintf("/chat/whatsappNumbers/%s", c.instance)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string][]string{"numbers": numbers}).
		Post(url)

	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Evolution API: CheckNumbers request failed")
		return nil, &TransportError{Op: "CheckNumbers", Err: err}
	}

	if resp.IsError() {
		log.Error().Str("url", url).Int("statusCode", resp.StatusCode()).Str("responseBody", string(resp.Body())).Msg("Evolution API: CheckNumbers returned an error")
		return nil, &ProtocolError{Op: "CheckNumbers", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var statuses []NumberStatus
	if err := json.Unmarshal(resp.Body(), &statuses); err != nil {
		log.Error().Err(err).Str("url", url).Str("responseBody", string(resp.Body())).Msg("Evolution API: CheckNumbers response decode failed")
		return nil, &ProtocolError{Op: "CheckNumbers", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	return statuses, nil
}
