package app

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestHTTPServiceStartStop(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", http.NewServeMux())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Start(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Stop(stopCtx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("start returned error after graceful shutdown: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("start did not return after stop")
	}
}

func TestHTTPServiceNilSafety(t *testing.T) {
	var svc *HTTPService
	if err := svc.Start(context.Background()); err == nil {
		t.Fatal("nil service start should fail")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("nil service stop should be a no-op, got %v", err)
	}
	if svc.Name() != "http" {
		t.Fatalf("unexpected name %q", svc.Name())
	}
}
