package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendPayloadAndAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotBody sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3.1/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotUser, gotPass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("pub", "priv", "billing@suite.test")
	client.BaseURL = srv.URL

	err := client.Send(context.Background(), Message{
		ToEmail:     "customer@acme.test",
		Subject:     "Invoice INV-0001",
		TextContent: "Please pay.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotUser != "pub" || gotPass != "priv" {
		t.Fatalf("basic auth not set: %q %q", gotUser, gotPass)
	}
	if len(gotBody.Messages) != 1 {
		t.Fatalf("expected 1 message got %d", len(gotBody.Messages))
	}
	msg := gotBody.Messages[0]
	if msg.From.Email != "billing@suite.test" || msg.To[0].Email != "customer@acme.test" {
		t.Fatalf("addresses wrong: %+v", msg)
	}
	if msg.Subject != "Invoice INV-0001" || msg.TextPart != "Please pay." {
		t.Fatalf("content wrong: %+v", msg)
	}
}

func TestSendRejectsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("pub", "priv", "billing@suite.test")
	client.BaseURL = srv.URL
	if err := client.Send(context.Background(), Message{ToEmail: "x@test"}); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestSendRequiresFromAddress(t *testing.T) {
	client := NewClient("pub", "priv", "")
	if err := client.Send(context.Background(), Message{ToEmail: "x@test"}); err == nil {
		t.Fatal("expected error without sender address")
	}
}
