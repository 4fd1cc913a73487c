// Package views holds read models kept current by subscribing to events
package views

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kode4food/eventide"
	"github.com/kode4food/eventide/inventory"
)

type (
	// ItemReadModel is the queryable shape of an active inventory item
	ItemReadModel struct {
		ID       eventide.AggregateID
		Name     string
		Quantity int
	}

	// InventoryView lists active inventory items. Deactivated items are
	// dropped from the view
	InventoryView struct {
		items map[eventide.AggregateID]ItemReadModel
		mu    sync.RWMutex
	}
)

// NewInventoryView creates an empty view
func NewInventoryView() *InventoryView {
	return &InventoryView{
		items: map[eventide.AggregateID]ItemReadModel{},
	}
}

// Subscribe registers the view's handlers with the publisher
func (v *InventoryView) Subscribe(p *eventide.Publisher) {
	p.Subscribe(inventory.ItemCreated, eventide.MakeHandler(v.created))
	p.Subscribe(inventory.ItemRenamed, eventide.MakeHandler(v.renamed))
	p.Subscribe(inventory.ItemCheckedIn, eventide.MakeHandler(v.checkedIn))
	p.Subscribe(inventory.ItemCheckedOut, eventide.MakeHandler(v.checkedOut))
	p.Subscribe(inventory.ItemDeactivated, v.deactivated)
}

// Get returns the read model for an item, if it is active
func (v *InventoryView) Get(id eventide.AggregateID) (ItemReadModel, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	item, ok := v.items[id]
	return item, ok
}

// List returns every active item ordered by name
func (v *InventoryView) List() []ItemReadModel {
	v.mu.RLock()
	res := make([]ItemReadModel, 0, len(v.items))
	for _, item := range v.items {
		res = append(res, item)
	}
	v.mu.RUnlock()

	slices.SortFunc(res, func(l, r ItemReadModel) int {
		return cmp.Or(cmp.Compare(l.Name, r.Name), cmp.Compare(l.ID, r.ID))
	})
	return res
}

func (v *InventoryView) created(
	_ context.Context, ev *eventide.Event, data inventory.ItemCreatedData,
) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items[ev.AggregateID] = ItemReadModel{
		ID:       ev.AggregateID,
		Name:     data.Name,
		Quantity: data.Quantity,
	}
	return nil
}

func (v *InventoryView) renamed(
	_ context.Context, ev *eventide.Event, data inventory.ItemRenamedData,
) error {
	return v.update(ev, func(item *ItemReadModel) {
		item.Name = data.Name
	})
}

func (v *InventoryView) checkedIn(
	_ context.Context, ev *eventide.Event, data inventory.QuantityData,
) error {
	return v.update(ev, func(item *ItemReadModel) {
		item.Quantity += data.Quantity
	})
}

func (v *InventoryView) checkedOut(
	_ context.Context, ev *eventide.Event, data inventory.QuantityData,
) error {
	return v.update(ev, func(item *ItemReadModel) {
		item.Quantity -= data.Quantity
	})
}

func (v *InventoryView) deactivated(_ context.Context, ev *eventide.Event) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.items, ev.AggregateID)
	return nil
}

func (v *InventoryView) update(
	ev *eventide.Event, fn func(*ItemReadModel),
) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	item, ok := v.items[ev.AggregateID]
	if !ok {
		return fmt.Errorf("inventory view: no item %s for %s",
			ev.AggregateID, ev.Type,
		)
	}
	fn(&item)
	v.items[ev.AggregateID] = item
	return nil
}
