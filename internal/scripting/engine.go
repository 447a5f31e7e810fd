package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/farmgame/client/internal/npc"
)

// ErrNoAdvisor means no loaded script defines npc_advise.
var ErrNoAdvisor = errors.New("lua function npc_advise not defined")

// Engine wraps a single gopher-lua VM. Advise runs on brain worker
// goroutines, so every VM access is serialised by mu.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua VM and loads every .lua file in scriptsDir in name
// order. A missing directory loads nothing.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log.Named("lua")}
	e.registerHelpers()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load advisor scripts: %w", err)
	}
	return e, nil
}

// LoadString runs a chunk of Lua source, mainly for tests and tooling.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.DoString(src)
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("advisor script dir missing", zap.String("dir", dir))
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// registerHelpers exposes Go-side helpers to scripts.
func (e *Engine) registerHelpers() {
	// parse_directive(text) -> {action=..., speech=...}
	e.vm.SetGlobal("parse_directive", e.vm.NewFunction(func(L *lua.LState) int {
		d := npc.ParseDirective(L.CheckString(1))
		L.Push(directiveTable(L, d))
		return 1
	}))
	// log(msg)
	e.vm.SetGlobal("log", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Info(L.CheckString(1))
		return 0
	}))
}

func directiveTable(L *lua.LState, d npc.Directive) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("action", lua.LString(d.Action))
	t.RawSetString("speech", lua.LString(d.Speech))
	return t
}

// Advise implements npc.Advisor by calling npc_advise(ctx). The script may
// return a table {action=, speech=} or a string that is parsed as free text.
func (e *Engine) Advise(ctx context.Context, req npc.Request) (npc.Directive, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("npc_advise")
	if fn == lua.LNil {
		return npc.Directive{}, ErrNoAdvisor
	}

	t := e.vm.NewTable()
	t.RawSetString("npc", lua.LString(req.Npc))
	t.RawSetString("personality", lua.LString(req.Personality))
	t.RawSetString("situation", lua.LString(req.Situation))
	t.RawSetString("prompt", lua.LString(req.Prompt()))

	e.vm.SetContext(ctx)
	defer e.vm.RemoveContext()

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return npc.Directive{}, fmt.Errorf("lua npc_advise: %w", err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := result.(type) {
	case *lua.LTable:
		return npc.Directive{
			Action: npc.ParseAction(lStr(v, "action")),
			Speech: lStr(v, "speech"),
		}, nil
	case lua.LString:
		return npc.ParseDirective(string(v)), nil
	}
	return npc.Directive{Action: npc.ActionNone}, nil
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return ""
	}
	return lua.LVAsString(v)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
