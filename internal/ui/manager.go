package ui

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"go.uber.org/zap"
)

var (
	ErrNotInitialized = errors.New("ui manager not initialized")
	ErrPanelNotOpen   = errors.New("panel not open")
)

// Level stacks panels; higher levels sit on top.
type Level int

const (
	LevelBackground Level = iota
	LevelCommon
	LevelPopup
)

// Panel is an open UI surface in screen pixels.
type Panel struct {
	Name    string
	Rect    image.Rectangle
	Level   Level
	Visible bool
	order   int
}

// Manager tracks open panels so pointer clicks over UI never reach the
// world. Drawing is left to the host.
type Manager struct {
	log         *zap.Logger
	panels      map[string]*Panel
	nextOrder   int
	initialized bool
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		log:    log.Named("ui"),
		panels: make(map[string]*Panel),
	}
}

func (m *Manager) Initialize() error {
	if m.initialized {
		return nil
	}
	m.initialized = true
	m.log.Info("ui manager initialized")
	return nil
}

func (m *Manager) Dispose() {
	if !m.initialized {
		return
	}
	m.CloseAllPanels()
	m.initialized = false
}

func (m *Manager) Initialized() bool { return m.initialized }

// OpenPanel opens name at rect, or moves and re-shows it if already open.
func (m *Manager) OpenPanel(name string, rect image.Rectangle, level Level) (*Panel, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	m.nextOrder++
	p, ok := m.panels[name]
	if !ok {
		p = &Panel{Name: name}
		m.panels[name] = p
	}
	p.Rect = rect.Canon()
	p.Level = level
	p.Visible = true
	p.order = m.nextOrder
	return p, nil
}

func (m *Manager) ClosePanel(name string) {
	if !m.initialized {
		return
	}
	delete(m.panels, name)
}

// ShowPanel makes an open panel visible again.
func (m *Manager) ShowPanel(name string) error {
	return m.setVisible(name, true)
}

// HidePanel hides an open panel without closing it.
func (m *Manager) HidePanel(name string) error {
	return m.setVisible(name, false)
}

func (m *Manager) setVisible(name string, visible bool) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	p, ok := m.panels[name]
	if !ok {
		m.log.Warn("panel not open", zap.String("panel", name))
		return fmt.Errorf("set visible %s: %w", name, ErrPanelNotOpen)
	}
	p.Visible = visible
	return nil
}

func (m *Manager) Panel(name string) (*Panel, bool) {
	if !m.initialized {
		return nil, false
	}
	p, ok := m.panels[name]
	return p, ok
}

func (m *Manager) IsPanelOpen(name string) bool {
	_, ok := m.Panel(name)
	return ok
}

func (m *Manager) CloseAllPanels() {
	clear(m.panels)
}

func (m *Manager) HideAllPanels() {
	for _, p := range m.panels {
		p.Visible = false
	}
}

// PanelAt returns the topmost visible panel under the pointer.
func (m *Manager) PanelAt(x, y int) (*Panel, bool) {
	pt := image.Pt(x, y)
	var top *Panel
	for _, p := range m.panels {
		if !p.Visible || !pt.In(p.Rect) {
			continue
		}
		if top == nil || p.Level > top.Level || (p.Level == top.Level && p.order > top.order) {
			top = p
		}
	}
	return top, top != nil
}

// IsPointerOver reports whether a visible panel covers the pointer.
func (m *Manager) IsPointerOver(x, y int) bool {
	_, ok := m.PanelAt(x, y)
	return ok
}

// Visible returns the visible panels bottom to top, the order they are drawn.
func (m *Manager) Visible() []*Panel {
	out := make([]*Panel, 0, len(m.panels))
	for _, p := range m.panels {
		if p.Visible {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].order < out[j].order
	})
	return out
}
