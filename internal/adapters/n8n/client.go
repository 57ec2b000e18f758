package n8n

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 30 * time.Second

// Client posts payloads to N8N webhook URLs. The target URL is per-request
// because the webhook is operator-configured and can change at any time.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a new N8N webhook client.
func NewClient() *Client {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(requestTimeout)

	return &Client{httpClient: client}
}

// Send posts a message to the given webhook URL and returns the workflow's
// reply. A 200 with a non-JSON or output-less body is still a success; the
// workflow may have answered over another channel.
func (c *Client) Send(ctx context.Context, url string, payload Message) (*Reply, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(url)

	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("N8N webhook request failed")
		return nil, fmt.Errorf("N8N webhook request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		log.Error().Str("url", url).Int("statusCode", resp.StatusCode()).Str("responseBody", string(resp.Body())).Msg("N8N webhook returned an error")
		return nil, fmt.Errorf("N8N webhook error: status %d, body: %s", resp.StatusCode(), string(resp.Body()))
	}

	var reply Reply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		log.Debug().Str("url", url).Msg("N8N reply body is not JSON, treating as empty output")
		return &Reply{}, nil
	}

	log.Info().Str("url", url).Str("sessionId", payload.SessionID).Msg("Message relayed to N8N")
	return &reply, nil
}

// TestWebhook posts a synthetic payload to the target URL and reports
// reachability only. The response body is not interpreted.
func (c *Client) TestWebhook(ctx context.Context, url string) error {
	payload := Message{
		ChatInput: "Teste de conexão",
		SessionID: fmt.Sprintf("test_%d", time.Now().Unix()),
		Source:    "test",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(url)

	if err != nil {
		return fmt.Errorf("webhook connection failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("webhook error: status %d", resp.StatusCode())
	}

	log.Info().Str("url", url).Msg("Webhook test succeeded")
	return nil
}
