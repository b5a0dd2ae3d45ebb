package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSMSClient_Send(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotPayload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewSMSClient("key-123", srv.URL, "BIBLIO")
	if err := c.Send("919999999999", "ignored subject", "your code is 123456"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAuth != "key-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPayload["numbers"] != "919999999999" || gotPayload["message"] != "your code is 123456" {
		t.Errorf("payload = %+v", gotPayload)
	}
	if gotPayload["sender_id"] != "BIBLIO" {
		t.Errorf("sender_id = %v", gotPayload["sender_id"])
	}
}

func TestSMSClient_SendOmitsEmptySender(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotPayload)
	}))
	defer srv.Close()

	c := NewSMSClient("key-123", srv.URL, "")
	if err := c.Send("919999999999", "", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, ok := gotPayload["sender_id"]; ok {
		t.Error("sender_id present on payload without a configured sender")
	}
}

func TestSMSClient_SendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid route", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewSMSClient("key-123", srv.URL, "")
	err := c.Send("919999999999", "", "hi")
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "status=400") {
		t.Errorf("err = %v", err)
	}
}

func TestSMSClient_SendWithoutAPIKey(t *testing.T) {
	c := NewSMSClient("", "http://127.0.0.1:1", "")
	c.APIKey = ""
	if err := c.Send("919999999999", "", "hi"); err == nil {
		t.Fatal("expected error without API key")
	}
}
