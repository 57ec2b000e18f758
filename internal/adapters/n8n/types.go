package n8n

// Message is the payload the N8N workflow consumes. The field set and key
// spelling are the wire contract of the existing flow; both the chat widget
// and the contact form produce this shape with different sections filled in.
type Message struct {
	ChatInput  string  `json:"chatInput"`
	Action     string  `json:"action,omitempty"`
	SessionID  string  `json:"sessionId"`
	RemoteJID  string  `json:"remoteJid,omitempty"`
	Source     string  `json:"source"`
	SourceType string  `json:"sourceType,omitempty"`
	Channel    string  `json:"channel,omitempty"`
	PushName   string  `json:"pushName,omitempty"`
	FromMe     *bool   `json:"fromMe,omitempty"`

	// Chat-widget requests carry page context at the top level.
	PageURL   string `json:"page_url,omitempty"`
	PageTitle string `json:"page_title,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	UserInfo       *UserInfo       `json:"userInfo,omitempty"`
	ResponseConfig *ResponseConfig `json:"responseConfig,omitempty"`
	Metadata       *Metadata       `json:"metadata,omitempty"`
	Provider       *Provider       `json:"provider,omitempty"`
}

// UserInfo identifies the visitor. Pointers because the chat widget sends
// explicit nulls for unknown fields.
type UserInfo struct {
	Nome     *string `json:"nome"`
	Email    *string `json:"email"`
	Whatsapp *string `json:"whatsapp,omitempty"`
	Telefone *string `json:"telefone"`
	Assunto  string  `json:"assunto,omitempty"`
}

// ResponseConfig tells the workflow where its answer should go.
type ResponseConfig struct {
	ShouldRespond     bool   `json:"shouldRespond"`
	ResponseTarget    string `json:"responseTarget"`
	FormSessionID     string `json:"formSessionId,omitempty"`
	WhatsappSessionID string `json:"whatsappSessionId,omitempty"`
}

// Metadata carries request context the workflow logs but does not act on.
type Metadata struct {
	PageURL        string `json:"page_url,omitempty"`
	PageTitle      string `json:"page_title,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	UserAgent      string `json:"user_agent,omitempty"`
	PhoneFormatted string `json:"phone_formatted,omitempty"`
	WordPress      bool   `json:"wordpress"`
	SiteURL        string `json:"site_url,omitempty"`
	AjaxProxy      bool   `json:"ajax_proxy"`
}

// Provider is the Evolution API connection block injected server-side so
// the workflow can answer over WhatsApp. Never exposed to the frontend.
type Provider struct {
	InstanceName string `json:"instanceName"`
	ServerURL    string `json:"serverUrl"`
	APIKey       string `json:"apiKey"`
}

// Reply is the workflow's answer. Flows that respond elsewhere (WhatsApp)
// return an empty output.
type Reply struct {
	Output string `json:"output"`
}
