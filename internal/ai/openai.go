package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
)

// Draft is the structured email content returned by the model.
type Draft struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Client calls the OpenAI chat-completions API to draft customer emails.
// BaseURL, Model and HTTPClient may be overridden before first use (tests
// point BaseURL at a local server).
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	apiKey string
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4o",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// DraftInvoiceEmail asks the model for a payment-reminder email about the
// invoice and parses the JSON it returns.
func (c *Client) DraftInvoiceEmail(ctx context.Context, customer models.Customer, invoice models.Invoice) (Draft, error) {
	if c.apiKey == "" {
		return Draft{}, errors.New("openai api key not configured")
	}

	var itemLines []string
	for _, item := range invoice.Items {
		itemLines = append(itemLines, fmt.Sprintf("- %s (Quantity: %d, Unit Price: $%s)",
			item.Description, item.Quantity, item.UnitPrice.StringFixed(2)))
	}
	prompt := fmt.Sprintf(`Create a customer email for %s regarding their invoice.
The invoice number is %s, due on %s, with a total amount of $%s.
The invoice includes the following items:
%s
Write the email in a professional tone. Address the customer politely and
include a call to action for payment.

Return JSON with separate fields for "subject" and "text" content:
{"subject": "string", "text": "string"}`,
		customer.Name, invoice.InvoiceNumber,
		invoice.DueDate.Format("2006-01-02"), invoice.TotalAmount.StringFixed(2),
		strings.Join(itemLines, "\n"))

	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return Draft{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Draft{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Draft{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Draft{}, fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Draft{}, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Draft{}, errors.New("openai: empty response")
	}
	return ParseDraft(parsed.Choices[0].Message.Content)
}

// ParseDraft turns raw model output into a Draft. Models sometimes wrap the
// JSON in markdown code fences; strip those, then parse strictly. Anything
// that still fails to parse, or parses without both fields, is an error —
// never a silent empty draft.
func ParseDraft(content string) (Draft, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var draft Draft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return Draft{}, fmt.Errorf("unparseable draft content: %w", err)
	}
	if strings.TrimSpace(draft.Subject) == "" || strings.TrimSpace(draft.Text) == "" {
		return Draft{}, errors.New("draft content missing subject or text")
	}
	return draft, nil
}
