package feature

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioConfig carries the messaging credentials. As with SMTP, the
// values are external configuration only.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
}

func (c TwilioConfig) configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// WhatsApp delivers direct messages through the Twilio Messages API.
type WhatsApp struct {
	cfg  TwilioConfig
	http *http.Client

	// endpoint is overridable for tests.
	endpoint string
}

func NewWhatsApp(cfg TwilioConfig) *WhatsApp {
	return &WhatsApp{
		cfg:      cfg,
		http:     &http.Client{Timeout: 15 * time.Second},
		endpoint: fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", cfg.AccountSID),
	}
}

// SendDirectMessage posts one message. Recipients without a country
// prefix get "+" prepended, matching how numbers arrive from speech.
func (w *WhatsApp) SendDirectMessage(recipient, body string) error {
	if !w.cfg.configured() {
		return errors.New("twilio not configured")
	}

	if !strings.HasPrefix(recipient, "+") {
		recipient = "+" + recipient
	}

	form := url.Values{
		"To":   {"whatsapp:" + recipient},
		"From": {"whatsapp:" + w.cfg.From},
		"Body": {body},
	}

	req, err := http.NewRequest(http.MethodPost, w.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(w.cfg.AccountSID, w.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("twilio request: status %d", resp.StatusCode)
	}
	return nil
}
