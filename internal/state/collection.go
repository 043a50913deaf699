package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shopkeeper/internal/model"
)

// Gateway is the remote surface a collection store synchronizes against.
// The HTTP client and the local user directory both satisfy it.
type Gateway[E model.Entity] interface {
	List(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id int64) (E, error)
	Create(ctx context.Context, e E) (E, error)
	Update(ctx context.Context, id int64, e E) (E, error)
	Delete(ctx context.Context, id int64) error
}

// Collection holds an ordered set of entities unique by identifier, an
// optional selection, an optional detail-view entity, and the lifecycle
// status of the most recent operation. All reads return copies; no mutable
// reference escapes the store.
type Collection[E model.Entity] struct {
	mu   sync.Mutex
	kind string
	gw   Gateway[E]
	log  *slog.Logger

	items    []E
	selected *E
	detail   *E
	status   Status
	err      string
}

// Products and Users are the two collection stores the client runs.
type (
	Products = Collection[model.Product]
	Users    = Collection[model.User]
)

// NewProducts creates the product collection store.
func NewProducts(gw Gateway[model.Product], log *slog.Logger) *Products {
	return newCollection("product", gw, log)
}

// NewUsers creates the user collection store.
func NewUsers(gw Gateway[model.User], log *slog.Logger) *Users {
	return newCollection("user", gw, log)
}

func newCollection[E model.Entity](kind string, gw Gateway[E], log *slog.Logger) *Collection[E] {
	if log == nil {
		log = slog.Default()
	}
	return &Collection[E]{kind: kind, gw: gw, log: log}
}

// CollectionView is a point-in-time copy of a collection's state.
type CollectionView[E model.Entity] struct {
	Items    []E
	Selected *E
	Detail   *E
	Status   Status
	Err      string
}

// Snapshot returns a copy of the collection state. Err is non-empty iff
// Status is StatusFailed.
func (c *Collection[E]) Snapshot() CollectionView[E] {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := CollectionView[E]{
		Items:  make([]E, len(c.items)),
		Status: c.status,
		Err:    c.err,
	}
	copy(v.Items, c.items)
	if c.selected != nil {
		sel := *c.selected
		v.Selected = &sel
	}
	if c.detail != nil {
		det := *c.detail
		v.Detail = &det
	}
	return v
}

// FetchAll replaces the collection wholesale with the gateway's list.
// The selection is left as-is; it is not refreshed from the new list.
func (c *Collection[E]) FetchAll(ctx context.Context) error {
	c.apply(colEvent[E]{op: opFetchAll, phase: phasePending})
	list, err := c.gw.List(ctx)
	if err != nil {
		c.apply(colEvent[E]{op: opFetchAll, phase: phaseRejected,
			reason: fmt.Sprintf("Failed to fetch %ss", c.kind)})
		return err
	}
	c.apply(colEvent[E]{op: opFetchAll, phase: phaseFulfilled, list: list})
	return nil
}

// FetchOne loads a single entity into the detail slot.
func (c *Collection[E]) FetchOne(ctx context.Context, id int64) error {
	c.apply(colEvent[E]{op: opFetchOne, phase: phasePending})
	e, err := c.gw.Get(ctx, id)
	if err != nil {
		c.apply(colEvent[E]{op: opFetchOne, phase: phaseRejected,
			reason: fmt.Sprintf("Failed to fetch %s #%d", c.kind, id)})
		return err
	}
	c.apply(colEvent[E]{op: opFetchOne, phase: phaseFulfilled, entity: &e})
	return nil
}

// Create sends the payload to the gateway and appends the entity it returns.
func (c *Collection[E]) Create(ctx context.Context, payload E) error {
	c.apply(colEvent[E]{op: opCreate, phase: phasePending})
	e, err := c.gw.Create(ctx, payload)
	if err != nil {
		c.apply(colEvent[E]{op: opCreate, phase: phaseRejected,
			reason: fmt.Sprintf("Failed to create %s", c.kind)})
		return err
	}
	c.apply(colEvent[E]{op: opCreate, phase: phaseFulfilled, entity: &e})
	return nil
}

// Update sends the payload to the gateway and replaces the matching entry,
// and the selection when it carries the same identifier.
func (c *Collection[E]) Update(ctx context.Context, id int64, payload E) error {
	c.apply(colEvent[E]{op: opUpdate, phase: phasePending})
	e, err := c.gw.Update(ctx, id, payload)
	if err != nil {
		c.apply(colEvent[E]{op: opUpdate, phase: phaseRejected,
			reason: fmt.Sprintf("Failed to update %s #%d", c.kind, id)})
		return err
	}
	c.apply(colEvent[E]{op: opUpdate, phase: phaseFulfilled, entity: &e})
	return nil
}

// Delete removes the matching entry on gateway success, clearing the
// selection when it was the deletion target.
func (c *Collection[E]) Delete(ctx context.Context, id int64) error {
	c.apply(colEvent[E]{op: opDelete, phase: phasePending})
	if err := c.gw.Delete(ctx, id); err != nil {
		c.apply(colEvent[E]{op: opDelete, phase: phaseRejected,
			reason: fmt.Sprintf("Failed to delete %s #%d", c.kind, id)})
		return err
	}
	c.apply(colEvent[E]{op: opDelete, phase: phaseFulfilled, id: id})
	return nil
}

// Select sets the selection. Synchronous; not part of the async protocol.
func (c *Collection[E]) Select(e E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := e
	c.selected = &sel
}

// ClearSelected drops the selection, e.g. when an edit form closes.
func (c *Collection[E]) ClearSelected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// ClearDetail drops the detail-view entity.
func (c *Collection[E]) ClearDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = nil
}

// apply is the only mutation path for collection state.
func (c *Collection[E]) apply(ev colEvent[E]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev.phase {
	case phasePending:
		c.status = StatusLoading
		c.err = ""
	case phaseRejected:
		c.status = StatusFailed
		c.err = ev.reason
	case phaseFulfilled:
		c.status = StatusSucceeded
		c.err = ""
		switch ev.op {
		case opFetchAll:
			c.items = ev.list
		case opFetchOne:
			det := *ev.entity
			c.detail = &det
		case opCreate:
			c.insertLocked(*ev.entity)
		case opUpdate:
			c.replaceLocked(*ev.entity)
		case opDelete:
			c.removeLocked(ev.id)
		}
	}
	c.log.Debug("store transition",
		"store", c.kind, "status", c.status.String(), "items", len(c.items))
}

// insertLocked appends e, or replaces in place when the gateway hands back
// an identifier that already exists, keeping identifiers unique.
func (c *Collection[E]) insertLocked(e E) {
	for i := range c.items {
		if c.items[i].EntityID() == e.EntityID() {
			c.items[i] = e
			return
		}
	}
	c.items = append(c.items, e)
}

func (c *Collection[E]) replaceLocked(e E) {
	id := e.EntityID()
	for i := range c.items {
		if c.items[i].EntityID() == id {
			c.items[i] = e
			break
		}
	}
	if c.selected != nil && (*c.selected).EntityID() == id {
		sel := e
		c.selected = &sel
	}
}

func (c *Collection[E]) removeLocked(id int64) {
	for i := range c.items {
		if c.items[i].EntityID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	if c.selected != nil && (*c.selected).EntityID() == id {
		c.selected = nil
	}
}
