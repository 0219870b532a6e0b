package daemon_test

import (
	"context"
	"net/http"
	"testing"

	"surfacegate/internal/daemon"
	"surfacegate/internal/gateway"
	"surfacegate/internal/logging"
	"surfacegate/internal/testsupport"
)

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	server, err := gateway.New(cfg, store, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}

	d, err := daemon.New(cfg, store, server, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	status := d.Status()
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.APIAddress == "" {
		t.Fatal("expected bound api address")
	}

	resp, err := http.Get("http://" + status.APIAddress + "/api/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status: got %d", resp.StatusCode)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected stopped status")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := gateway.New(cfg, store, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	d1, err := daemon.New(cfg, store, first, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d1.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d1.Stop()

	second, err := gateway.New(cfg, store, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	d2, err := daemon.New(cfg, store, second, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d2.Start(context.Background()); err == nil {
		d2.Stop()
		t.Fatal("expected second instance to be rejected")
	}
}
