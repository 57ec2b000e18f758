package evolution

import "encoding/json"

// IntegrationSettings is the full behavioral parameter set of an N8N
// integration on the Evolution API. Updates are full-record PUTs, so every
// field must be carried on every write; a sparse payload would reset the
// omitted parameters on the gateway side.
type IntegrationSettings struct {
	Enabled         bool     `json:"enabled"`
	Description     string   `json:"description"`
	WebhookURL      string   `json:"webhookUrl"`
	Expire          int      `json:"expire"`
	KeywordFinish   string   `json:"keywordFinish"`
	DelayMessage    int      `json:"delayMessage"`
	UnknownMessage  string   `json:"unknownMessage"`
	ListeningFromMe bool     `json:"listeningFromMe"`
	StopBotFromMe   bool     `json:"stopBotFromMe"`
	KeepOpen        bool     `json:"keepOpen"`
	DebounceTime    int      `json:"debounceTime"`
	IgnoreJids      []string `json:"ignoreJids"`
	SplitMessages   bool     `json:"splitMessages"`
	TimePerChar     int      `json:"timePerChar"`
	TriggerType     string   `json:"triggerType"`
	TriggerOperator string   `json:"triggerOperator"`
	TriggerValue    string   `json:"triggerValue"`
}

// Integration is one automation-integration record as stored on the gateway.
// The id is gateway-assigned and stable; everything else may be changed
// out-of-band by other writers.
type Integration struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	IntegrationSettings
}

// Settings returns a full-replace update payload carrying the record's
// current parameter set.
func (i Integration) Settings() IntegrationSettings {
	return i.IntegrationSettings
}

// integrationList decodes the three response shapes the Evolution API is
// known to produce for a find call: {"data":[...]}, {"result":[...]} or a
// bare array. Anything else is a protocol error.
type integrationList struct {
	Data   []Integration `json:"data"`
	Result []Integration `json:"result"`
}

func decodeIntegrationList(body []byte) ([]Integration, bool) {
	trimmed := trimLeadingSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var bare []Integration
		if err := json.Unmarshal(trimmed, &bare); err != nil {
			return nil, false
		}
		return bare, true
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, false
	}
	if raw, ok := envelope["data"]; ok {
		var list []Integration
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, false
		}
		return list, true
	}
	if raw, ok := envelope["result"]; ok {
		var list []Integration
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, false
		}
		return list, true
	}
	return nil, false
}

func trimLeadingSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\r' || b[0] == '\n') {
		b = b[1:]
	}
	return b
}

// NumberStatus is the gateway's verdict for one checked phone number.
type NumberStatus struct {
	Exists bool   `json:"exists"`
	JID    string `json:"jid"`
	Number string `json:"number"`
}
