package moolre

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestSendBuildsGatewayRequest(t *testing.T) {
	var captured *http.Request
	var payload map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		return respond(http.StatusOK, `{"status":1,"message":"queued"}`), nil
	})

	client, err := NewClient("vas-key", WithBaseURL("http://sms.test"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Send(context.Background(), "0241234567", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Status != 1 {
		t.Fatalf("expected accepted status, got %d", result.Status)
	}
	if captured.URL.String() != "http://sms.test/open/sms/send" {
		t.Fatalf("unexpected url %s", captured.URL)
	}
	if captured.Header.Get("X-API-VASKEY") != "vas-key" {
		t.Fatalf("missing api key header")
	}
	if payload["senderid"] != "PRODATAWLD" {
		t.Fatalf("unexpected sender %v", payload["senderid"])
	}
	if payload["type"] != float64(1) {
		t.Fatalf("unexpected type %v", payload["type"])
	}
	messages := payload["messages"].([]any)
	first := messages[0].(map[string]any)
	if first["recipient"] != "0241234567" || first["message"] != "hello" {
		t.Fatalf("unexpected message %v", first)
	}
}

func TestSendTreatsNonAcceptedStatusAsFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{"status":0,"message":"insufficient credit"}`), nil
	})
	client, err := NewClient("vas-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Send(context.Background(), "0241234567", "hello")
	if err == nil {
		t.Fatalf("expected rejection error")
	}
	if result == nil || result.Message != "insufficient credit" {
		t.Fatalf("expected gateway message to be surfaced, got %+v", result)
	}
}

func TestSendHTTPError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusUnauthorized, `{"status":0}`), nil
	})
	client, err := NewClient("vas-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Send(context.Background(), "0241234567", "hello"); err == nil {
		t.Fatalf("expected http error")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
