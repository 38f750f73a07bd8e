package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Message is one outbound email.
type Message struct {
	ToEmail     string
	Subject     string
	TextContent string
}

// Client delivers email through the Mailjet v3.1 send API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	publicKey  string
	privateKey string
	fromEmail  string
}

func NewClient(publicKey, privateKey, fromEmail string) *Client {
	return &Client{
		BaseURL:    "https://api.mailjet.com",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		publicKey:  publicKey,
		privateKey: privateKey,
		fromEmail:  fromEmail,
	}
}

type sendRequest struct {
	Messages []sendMessage `json:"Messages"`
}

type sendMessage struct {
	From     address   `json:"From"`
	To       []address `json:"To"`
	Subject  string    `json:"Subject"`
	TextPart string    `json:"TextPart"`
}

type address struct {
	Email string `json:"Email"`
}

// Send attempts delivery. A nil return means Mailjet accepted the message;
// callers gate state changes on that.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c.fromEmail == "" {
		return errors.New("sender email not configured")
	}
	body, err := json.Marshal(sendRequest{
		Messages: []sendMessage{{
			From:     address{Email: c.fromEmail},
			To:       []address{{Email: msg.ToEmail}},
			Subject:  msg.Subject,
			TextPart: msg.TextContent,
		}},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v3.1/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.privateKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailjet: unexpected status %d", resp.StatusCode)
	}
	return nil
}
