package resource

import (
	"errors"

	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/pool"
	"go.uber.org/zap"
)

// Poster delivers a continuation to the game loop goroutine.
type Poster interface {
	Post(fn func())
}

// Cache maps asset keys to loaded templates and to at most one instance pool
// per key. All methods except the loader calls made by async loads run on
// the game loop goroutine.
type Cache struct {
	loader Loader
	poster Poster
	log    *zap.Logger

	templates map[string]*Template
	pools     map[string]*pool.Pool[*Instance]
	root      *Instance // parent of idle pooled instances
	nextID    uint64

	initialized bool
}

func NewCache(loader Loader, poster Poster, log *zap.Logger) *Cache {
	return &Cache{
		loader: loader,
		poster: poster,
		log:    log.Named("resource"),
	}
}

// Initialize prepares the cache. A second call is a no-op.
func (c *Cache) Initialize() error {
	if c.initialized {
		return nil
	}
	c.templates = make(map[string]*Template, 64)
	c.pools = make(map[string]*pool.Pool[*Instance], 16)
	c.root = &Instance{Name: "PoolRoot", active: false}
	c.initialized = true
	c.log.Info("resource cache initialized")
	return nil
}

// Dispose clears every pool and releases every template.
func (c *Cache) Dispose() {
	if !c.initialized {
		return
	}
	c.ClearAllPools()
	c.ReleaseAll()
	c.initialized = false
}

// Initialized reports whether Initialize has run.
func (c *Cache) Initialized() bool { return c.initialized }

// ── Loading ───────────────────────────────────────────────────────

// Load resolves key synchronously, caching the template.
func (c *Cache) Load(key string) (*Template, error) {
	k, err := c.validate(key)
	if err != nil {
		c.log.Error("load rejected", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	if t, ok := c.templates[k]; ok {
		return t, nil
	}
	t, err := c.loader.Load(k)
	if err != nil || t == nil {
		if err == nil {
			err = NotFound(k)
		}
		c.log.Error("load failed", zap.String("key", k), zap.Error(err))
		return nil, err
	}
	c.templates[k] = t
	return t, nil
}

// LoadAsync resolves key on a worker goroutine and invokes cb exactly once
// on the loop. Concurrent loads of one key are not merged: every call runs
// its own load and gets its own callback, but the first template to land
// keeps the cache slot.
func (c *Cache) LoadAsync(key string, cb func(*Template, error)) {
	k, err := c.validate(key)
	if err != nil {
		c.log.Error("async load rejected", zap.String("key", key), zap.Error(err))
		c.complete(cb, nil, err)
		return
	}
	if t, ok := c.templates[k]; ok {
		c.complete(cb, t, nil)
		return
	}
	loader := c.loader
	go func() {
		t, err := loader.Load(k)
		if err == nil && t == nil {
			err = NotFound(k)
		}
		c.poster.Post(func() {
			if !c.initialized {
				c.finish(cb, nil, ErrNotInitialized)
				return
			}
			if err != nil {
				c.log.Error("async load failed", zap.String("key", k), zap.Error(err))
				c.finish(cb, nil, err)
				return
			}
			if existing, ok := c.templates[k]; ok {
				t = existing
			} else {
				c.templates[k] = t
			}
			c.finish(cb, t, nil)
		})
	}()
}

// LoadManyAsync loads every key and calls cb once after all of them have
// resolved. Individual failures are joined into the error passed to cb.
// Empty keys are skipped.
func (c *Cache) LoadManyAsync(keys []string, cb func(error)) {
	pending := 0
	for _, k := range keys {
		if k != "" {
			pending++
		}
	}
	if pending == 0 {
		c.poster.Post(func() {
			if cb != nil {
				cb(nil)
			}
		})
		return
	}

	var errs []error
	for _, k := range keys {
		if k == "" {
			continue
		}
		c.LoadAsync(k, func(_ *Template, err error) {
			if err != nil {
				errs = append(errs, err)
			}
			pending--
			if pending == 0 && cb != nil {
				cb(errors.Join(errs...))
			}
		})
	}
}

// Preload warms the template cache in the background.
func (c *Cache) Preload(keys ...string) {
	c.LoadManyAsync(keys, nil)
}

// complete hands an immediately-known result to cb through the loop queue so
// callers never see their callback re-entrantly.
func (c *Cache) complete(cb func(*Template, error), t *Template, err error) {
	if cb == nil {
		return
	}
	c.poster.Post(func() { cb(t, err) })
}

func (c *Cache) finish(cb func(*Template, error), t *Template, err error) {
	if cb != nil {
		cb(t, err)
	}
}

// IsCached reports whether a template for key is held.
func (c *Cache) IsCached(key string) bool {
	if !c.initialized {
		return false
	}
	_, ok := c.templates[NormalizeKey(key)]
	return ok
}

// ── Release ───────────────────────────────────────────────────────

// Release drops the cached template for key. Unknown keys are a no-op.
func (c *Cache) Release(key string) {
	if !c.initialized {
		return
	}
	k := NormalizeKey(key)
	if k == "" {
		return
	}
	delete(c.templates, k)
}

// ReleaseAll drops every cached template.
func (c *Cache) ReleaseAll() {
	if !c.initialized {
		return
	}
	clear(c.templates)
}

// ── Pooled instances ──────────────────────────────────────────────

// Instantiate builds an unpooled instance of t under parent.
func (c *Cache) Instantiate(t *Template, parent *Instance) *Instance {
	c.nextID++
	return &Instance{
		ID:       c.nextID,
		Template: t,
		Name:     t.Name,
		Parent:   parent,
		Tint:     white,
		active:   true,
	}
}

// Spawn returns an active instance of key, reusing an idle one when the
// key's pool has any. The pool is created on first spawn.
func (c *Cache) Spawn(key string, parent *Instance) (*Instance, error) {
	k, err := c.validate(key)
	if err != nil {
		c.log.Error("spawn rejected", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	p, err := c.poolFor(k)
	if err != nil {
		return nil, err
	}
	inst, err := p.Acquire()
	if err != nil {
		return nil, err
	}
	inst.SetParent(parent)
	inst.SetActive(true)
	return inst, nil
}

// SpawnAt spawns key and places it at pos.
func (c *Cache) SpawnAt(key string, pos geom.Vec2, parent *Instance) (*Instance, error) {
	inst, err := c.Spawn(key, parent)
	if err != nil {
		return nil, err
	}
	inst.Position = pos
	return inst, nil
}

// Despawn returns inst to key's pool. Without a pool (never created, or
// cleared since the spawn) the instance is destroyed instead; despawn never
// fails.
func (c *Cache) Despawn(key string, inst *Instance) {
	if inst == nil || inst.destroyed {
		return
	}
	k := NormalizeKey(key)
	var p *pool.Pool[*Instance]
	if c.initialized && k != "" {
		p = c.pools[k]
	}
	if p == nil {
		c.log.Warn("despawn: no pool, destroying instance", zap.String("key", key))
		inst.Destroy()
		return
	}
	p.Recycle(inst)
}

// Prewarm grows key's idle set by count instances without activating any.
func (c *Cache) Prewarm(key string, count int) error {
	if count <= 0 {
		return nil
	}
	k, err := c.validate(key)
	if err != nil {
		return err
	}
	p, err := c.poolFor(k)
	if err != nil {
		return err
	}
	batch := make([]*Instance, 0, count)
	for i := 0; i < count; i++ {
		inst, err := p.Acquire()
		if err != nil {
			break
		}
		batch = append(batch, inst)
	}
	for _, inst := range batch {
		p.Recycle(inst)
	}
	c.log.Debug("pool prewarmed", zap.String("key", k), zap.Int("idle", p.Idle()))
	return nil
}

// ClearPool destroys key's idle instances and forgets the pool.
func (c *Cache) ClearPool(key string) {
	if !c.initialized {
		return
	}
	k := NormalizeKey(key)
	if p, ok := c.pools[k]; ok {
		p.Clear(destroyInstance)
		delete(c.pools, k)
	}
}

// ClearAllPools destroys every idle pooled instance and forgets all pools.
func (c *Cache) ClearAllPools() {
	if !c.initialized {
		return
	}
	for _, p := range c.pools {
		p.Clear(destroyInstance)
	}
	clear(c.pools)
}

// HasPool reports whether key has a pool.
func (c *Cache) HasPool(key string) bool {
	if !c.initialized {
		return false
	}
	_, ok := c.pools[NormalizeKey(key)]
	return ok
}

// IdleCount is the number of idle instances in key's pool.
func (c *Cache) IdleCount(key string) int {
	if !c.initialized {
		return 0
	}
	if p, ok := c.pools[NormalizeKey(key)]; ok {
		return p.Idle()
	}
	return 0
}

func (c *Cache) poolFor(k string) (*pool.Pool[*Instance], error) {
	if p, ok := c.pools[k]; ok {
		return p, nil
	}
	t, err := c.Load(k)
	if err != nil {
		return nil, err
	}
	p := pool.New(func() (*Instance, error) {
		inst := c.Instantiate(t, c.root)
		inst.Key = k
		return inst, nil
	}, c.recycleInstance)
	c.pools[k] = p
	return p, nil
}

func (c *Cache) recycleInstance(inst *Instance) {
	inst.SetActive(false)
	inst.SetParent(c.root)
	inst.Tint = white
}

func destroyInstance(inst *Instance) {
	if inst != nil {
		inst.Destroy()
	}
}

func (c *Cache) validate(key string) (string, error) {
	if !c.initialized {
		return "", ErrNotInitialized
	}
	k := NormalizeKey(key)
	if k == "" {
		return "", ErrEmptyKey
	}
	return k, nil
}
