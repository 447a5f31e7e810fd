package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeService struct {
	name  string
	log   *[]string
	err   error
	inits int
	ready bool
}

func (f *fakeService) Initialize() error {
	f.inits++
	if f.ready {
		return nil
	}
	*f.log = append(*f.log, "init "+f.name)
	if f.err != nil {
		return f.err
	}
	f.ready = true
	return nil
}

func (f *fakeService) Dispose() {
	*f.log = append(*f.log, "dispose "+f.name)
	f.ready = false
}

func fakeServices(log *[]string) (Services, map[string]*fakeService) {
	m := map[string]*fakeService{}
	for _, n := range []string{"resources", "ui", "maps", "players", "movement"} {
		m[n] = &fakeService{name: n, log: log}
	}
	return Services{
		Resources: m["resources"],
		UI:        m["ui"],
		Maps:      m["maps"],
		Players:   m["players"],
		Movement:  m["movement"],
	}, m
}

func TestBootOrderAndShutdownReverse(t *testing.T) {
	var log []string
	svc, _ := fakeServices(&log)
	b := NewBoot(svc, nil, zap.NewNop())
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	b.Shutdown()
	want := "init resources,init ui,init maps,init players,init movement," +
		"dispose movement,dispose players,dispose maps,dispose ui,dispose resources"
	if got := strings.Join(log, ","); got != want {
		t.Fatalf("unexpected order:\n got %s\nwant %s", got, want)
	}
}

func TestBootIsOneShot(t *testing.T) {
	var log []string
	svc, m := fakeServices(&log)
	b := NewBoot(svc, nil, zap.NewNop())
	for i := 0; i < 3; i++ {
		if err := b.Start(context.Background()); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
	}
	if m["maps"].inits != 1 {
		t.Fatalf("expected a single initialize, got %d", m["maps"].inits)
	}
	if !b.Booted() {
		t.Fatal("expected booted")
	}
}

func TestBootAbortsOnFirstFailure(t *testing.T) {
	var log []string
	svc, m := fakeServices(&log)
	boom := errors.New("boom")
	m["maps"].err = boom
	b := NewBoot(svc, nil, zap.NewNop())

	err := b.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if m["players"].inits != 0 || m["movement"].inits != 0 {
		t.Fatal("steps after the failure must not run")
	}
	if b.Booted() {
		t.Fatal("failed boot must not report booted")
	}

	log = log[:0]
	b.Shutdown()
	if got := strings.Join(log, ","); got != "dispose ui,dispose resources" {
		t.Fatalf("shutdown must only dispose completed steps, got %s", got)
	}
}

func TestBootRetryAfterFailure(t *testing.T) {
	var log []string
	svc, m := fakeServices(&log)
	m["players"].err = errors.New("no prefab")
	b := NewBoot(svc, nil, zap.NewNop())
	if err := b.Start(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	m["players"].err = nil
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if m["resources"].inits != 2 || len(log) != 6 {
		t.Fatalf("earlier steps must be re-asked but stay no-ops, log %v", log)
	}
}

func TestBootMissingService(t *testing.T) {
	var log []string
	svc, _ := fakeServices(&log)
	svc.UI = nil
	b := NewBoot(svc, nil, zap.NewNop())
	if err := b.Start(context.Background()); !errors.Is(err, ErrMissingService) {
		t.Fatalf("expected ErrMissingService, got %v", err)
	}
}
