package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultSMSTimeout = 15 * time.Second

// SMSClient sends SMS via an HTTP bulk-SMS gateway.
type SMSClient struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewSMSClient returns a client that uses the given API key and optional base URL/sender ID.
func NewSMSClient(apiKey, baseURL, sender string) *SMSClient {
	if baseURL == "" {
		baseURL = "https://www.smslocal.com/dev/bulkV2"
	}
	return &SMSClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultSMSTimeout},
	}
}

// Send delivers the message to the given phone number (digits only, country
// code included). The subject is ignored; SMS has no subject line.
// Does not log the body.
func (c *SMSClient) Send(to, _ string, body string) error {
	if c.APIKey == "" {
		return fmt.Errorf("sms: API key not configured")
	}
	payload := map[string]interface{}{
		"route":   "q",
		"numbers": to,
		"message": body,
	}
	if c.Sender != "" {
		payload["sender_id"] = c.Sender
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
