package ui

import (
	"errors"
	"image"
	"testing"

	"go.uber.org/zap"
)

func TestManagerRequiresInitialize(t *testing.T) {
	m := NewManager(zap.NewNop())
	if _, err := m.OpenPanel("inventory", image.Rect(0, 0, 10, 10), LevelCommon); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestPointerOverVisiblePanels(t *testing.T) {
	m := NewManager(zap.NewNop())
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.OpenPanel("hud", image.Rect(0, 0, 100, 20), LevelBackground); err != nil {
		t.Fatal(err)
	}
	if _, err := m.OpenPanel("dialog", image.Rect(50, 10, 150, 80), LevelPopup); err != nil {
		t.Fatal(err)
	}

	if !m.IsPointerOver(5, 5) {
		t.Fatal("expected pointer over hud")
	}
	if m.IsPointerOver(300, 300) {
		t.Fatal("expected pointer over world")
	}
	if p, ok := m.PanelAt(60, 15); !ok || p.Name != "dialog" {
		t.Fatalf("expected dialog on top, got %+v", p)
	}

	if err := m.HidePanel("dialog"); err != nil {
		t.Fatal(err)
	}
	if p, _ := m.PanelAt(60, 15); p == nil || p.Name != "hud" {
		t.Fatalf("expected hud once dialog hidden, got %+v", p)
	}
	if m.IsPointerOver(120, 50) {
		t.Fatal("hidden panel must not capture the pointer")
	}
	if !m.IsPanelOpen("dialog") {
		t.Fatal("hidden panel stays open")
	}

	if err := m.ShowPanel("missing"); !errors.Is(err, ErrPanelNotOpen) {
		t.Fatalf("expected ErrPanelNotOpen, got %v", err)
	}

	m.Dispose()
	if m.IsPointerOver(5, 5) {
		t.Fatal("dispose must close panels")
	}
}

func TestVisibleDrawOrder(t *testing.T) {
	m := NewManager(zap.NewNop())
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []struct {
		name  string
		level Level
	}{{"popup", LevelPopup}, {"hud", LevelBackground}, {"bag", LevelCommon}, {"map", LevelCommon}} {
		if _, err := m.OpenPanel(p.name, image.Rect(0, 0, 1, 1), p.level); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.HidePanel("map"); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, p := range m.Visible() {
		names = append(names, p.Name)
	}
	if len(names) != 3 || names[0] != "hud" || names[1] != "bag" || names[2] != "popup" {
		t.Fatalf("unexpected draw order %v", names)
	}
}
