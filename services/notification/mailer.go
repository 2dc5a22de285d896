package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ampquote/pkg/config"

	"go.uber.org/fx"
)

// Message is the mail provider's transactional email contract.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type mailerClient struct {
	addr   string
	apiKey string
	http   *http.Client
}

type MailerParams struct {
	fx.In

	Config *config.Config
}

func NewMailer(p MailerParams) Mailer {
	return &mailerClient{
		addr:   strings.TrimRight(p.Config.Mail.Addr, "/"),
		apiKey: p.Config.Mail.APIKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *mailerClient) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.addr+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	return nil
}
