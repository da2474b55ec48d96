package alipay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testForm(t *testing.T) Form {
	t.Helper()
	envelope, err := AssembleEnvelope(testIntent(), testGatewayConfig(), `{"out_trade_no":"T100"}`)
	if err != nil {
		t.Fatalf("assemble envelope failed: %v", err)
	}
	form, err := AssembleForm(envelope, "c2lnbg==")
	if err != nil {
		t.Fatalf("assemble form failed: %v", err)
	}
	return form
}

func TestClientSubmitPostsForm(t *testing.T) {
	var gotMethod, gotContentType string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{})
	resp, err := client.Submit(context.Background(), server.URL, testForm(t))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/x-www-form-urlencoded; charset=utf-8" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	for _, key := range []string{"app_id", "method", "biz_content", "sign"} {
		if len(gotForm[key]) == 0 {
			t.Fatalf("form field %s missing on the wire", key)
		}
	}
	if gotForm["sign"][0] != "c2lnbg==" {
		t.Fatalf("sign field mangled: %q", gotForm["sign"][0])
	}
}

func TestClientSubmitDoesNotFollowRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cashier" {
			t.Error("redirect was followed")
			return
		}
		w.Header().Set("Location", "/cashier")
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{})
	resp, err := client.Submit(context.Background(), server.URL, testForm(t))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 passthrough, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Location") != "/cashier" {
		t.Fatalf("Location header lost: %q", resp.Header.Get("Location"))
	}
}

func TestClientSubmitUnreachable(t *testing.T) {
	client := NewClient(ClientOptions{ConnectTimeout: time.Second, ReadTimeout: time.Second})
	_, err := client.Submit(context.Background(), "http://127.0.0.1:1/gateway.do", testForm(t))
	if !errors.Is(err, ErrGatewayUnreachable) {
		t.Fatalf("expected ErrGatewayUnreachable, got %v", err)
	}
}

func TestClientSubmitEmptyEndpoint(t *testing.T) {
	client := NewClient(ClientOptions{})
	_, err := client.Submit(context.Background(), "  ", testForm(t))
	if !errors.Is(err, ErrGatewayUnreachable) {
		t.Fatalf("expected ErrGatewayUnreachable, got %v", err)
	}
}

func TestClientSubmitContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	client := NewClient(ClientOptions{})
	_, err := client.Submit(ctx, server.URL, testForm(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
