package ecs

// World owns the entity pool, the store registry and the deferred destroy
// queue. Destruction requested mid-tick takes effect when CleanupSystem
// flushes the queue.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
	onDestroy    []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 16),
		queued:       make(map[EntityID]struct{}, 16),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// OnDestroy registers fn to run for every flushed entity, before its
// components are removed.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// MarkForDestruction queues id once. Dead ids are ignored.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestroy reports whether id is queued.
func (w *World) PendingDestroy(id EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

// FlushDestroyQueue destroys queued entities in queue order. Hooks may queue
// more entities; those are flushed in the same call.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for len(w.destroyQueue) > 0 {
		batch := w.destroyQueue
		w.destroyQueue = make([]EntityID, 0, cap(batch))
		for _, id := range batch {
			delete(w.queued, id)
			if !w.pool.Alive(id) {
				continue
			}
			for _, fn := range w.onDestroy {
				fn(id)
			}
			w.registry.RemoveAll(id)
			w.pool.Destroy(id)
			n++
		}
	}
	return n
}
