package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/shopspring/decimal"
)

func TestParseDraftPlainJSON(t *testing.T) {
	draft, err := ParseDraft(`{"subject":"Invoice INV-0001","text":"Please pay."}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if draft.Subject != "Invoice INV-0001" || draft.Text != "Please pay." {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestParseDraftStripsCodeFences(t *testing.T) {
	content := "```json\n{\"subject\":\"Hi\",\"text\":\"Body\"}\n```"
	draft, err := ParseDraft(content)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if draft.Subject != "Hi" || draft.Text != "Body" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestParseDraftRejectsGarbage(t *testing.T) {
	cases := []string{
		"Sure! Here's your email: Dear customer...",
		"",
		"```json\nnot json\n```",
		`{"subject":"only subject"}`,
		`{"subject":"","text":""}`,
	}
	for _, content := range cases {
		if _, err := ParseDraft(content); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestDraftInvoiceEmailRequest(t *testing.T) {
	var gotAuth string
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "```json\n{\"subject\":\"Invoice INV-0007\",\"text\":\"Please settle.\"}\n```"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.BaseURL = srv.URL

	customer := models.Customer{Name: "Acme"}
	invoice := models.Invoice{
		InvoiceNumber: "INV-0007",
		DueDate:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.RequireFromString("59.97"),
		Items: []models.InvoiceItem{
			{Description: "Hosting", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
		},
	}
	draft, err := client.DraftInvoiceEmail(context.Background(), customer, invoice)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.Subject != "Invoice INV-0007" || draft.Text != "Please settle." {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("missing bearer auth, got %q", gotAuth)
	}
	if gotReq["model"] != "gpt-4o" {
		t.Fatalf("expected default model got %v", gotReq["model"])
	}
	msgs := gotReq["messages"].([]any)
	prompt := msgs[0].(map[string]any)["content"].(string)
	for _, want := range []string{"Acme", "INV-0007", "2026-10-01", "59.97", "Hosting"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestDraftInvoiceEmailErrors(t *testing.T) {
	client := NewClient("")
	if _, err := client.DraftInvoiceEmail(context.Background(), models.Customer{}, models.Invoice{}); err == nil {
		t.Fatal("expected error without api key")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	client = NewClient("k")
	client.BaseURL = srv.URL
	if _, err := client.DraftInvoiceEmail(context.Background(), models.Customer{}, models.Invoice{}); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
