// Package inventory is a small event-sourced domain: stock-keeping items that
// can be created, renamed, checked in and out, and deactivated
package inventory

import (
	"fmt"

	"github.com/kode4food/eventide"
)

type (
	// Item is the inventory aggregate
	Item struct {
		*eventide.Aggregate[ItemState]
	}

	// ItemState is the state projected from an Item's events
	ItemState struct {
		Name   string
		Stock  int
		Active bool
	}
)

var (
	// ErrNotEnoughStock is returned when checking out more than is in stock
	ErrNotEnoughStock = fmt.Errorf(
		"%w: not enough stock", eventide.ErrRuleViolation,
	)

	// ErrItemDeactivated is returned when changing a deactivated item
	ErrItemDeactivated = fmt.Errorf(
		"%w: item is deactivated", eventide.ErrRuleViolation,
	)
)

var appliers = eventide.Appliers[ItemState]{
	ItemCreated: eventide.MakeApplier(
		func(_ ItemState, _ *eventide.Event, data ItemCreatedData) ItemState {
			return ItemState{
				Name:   data.Name,
				Stock:  data.Quantity,
				Active: true,
			}
		},
	),
	ItemRenamed: eventide.MakeApplier(
		func(st ItemState, _ *eventide.Event, data ItemRenamedData) ItemState {
			st.Name = data.Name
			return st
		},
	),
	ItemCheckedIn: eventide.MakeApplier(
		func(st ItemState, _ *eventide.Event, data QuantityData) ItemState {
			st.Stock += data.Quantity
			return st
		},
	),
	ItemCheckedOut: eventide.MakeApplier(
		func(st ItemState, _ *eventide.Event, data QuantityData) ItemState {
			st.Stock -= data.Quantity
			return st
		},
	),
	ItemDeactivated: eventide.MakeSignal(
		func(st ItemState, _ *eventide.Event) ItemState {
			st.Active = false
			return st
		},
	),
}

// NewItem returns a blank Item for replay
func NewItem(id eventide.AggregateID) *Item {
	return &Item{
		Aggregate: eventide.NewAggregate(id, appliers, ItemState{}),
	}
}

// Create returns a new Item that has raised ItemCreated
func Create(id eventide.AggregateID, name string, qty int) (*Item, error) {
	if id == "" {
		return nil, eventide.Validationf("item id is required")
	}
	if name == "" {
		return nil, eventide.Validationf("item name is required")
	}
	if qty < 0 {
		return nil, eventide.Validationf("negative initial quantity %d", qty)
	}

	item := NewItem(id)
	err := eventide.Raise(item.Aggregate, ItemCreated, ItemCreatedData{
		Name:     name,
		Quantity: qty,
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Name returns the item's current name
func (i *Item) Name() string {
	return i.Value().Name
}

// Stock returns the quantity currently in stock
func (i *Item) Stock() int {
	return i.Value().Stock
}

// Active reports whether the item can still be changed
func (i *Item) Active() bool {
	return i.Value().Active
}

// Rename changes the item's name. Renaming to the current name is a no-op
func (i *Item) Rename(name string) error {
	if err := i.checkActive(); err != nil {
		return err
	}
	if name == "" {
		return eventide.Validationf("item name is required")
	}
	if name == i.Name() {
		return nil
	}
	return eventide.Raise(i.Aggregate, ItemRenamed, ItemRenamedData{
		Name: name,
	})
}

// CheckIn adds a positive quantity to the stock
func (i *Item) CheckIn(qty int) error {
	if err := i.checkActive(); err != nil {
		return err
	}
	if err := checkQuantity(qty); err != nil {
		return err
	}
	return eventide.Raise(i.Aggregate, ItemCheckedIn, QuantityData{
		Quantity: qty,
	})
}

// CheckOut removes a positive quantity from the stock
func (i *Item) CheckOut(qty int) error {
	if err := i.checkActive(); err != nil {
		return err
	}
	if err := checkQuantity(qty); err != nil {
		return err
	}
	if stock := i.Stock(); stock < qty {
		return fmt.Errorf("%w: cannot check %d %s out, only %d left",
			ErrNotEnoughStock, qty, i.Name(), stock,
		)
	}
	return eventide.Raise(i.Aggregate, ItemCheckedOut, QuantityData{
		Quantity: qty,
	})
}

// Deactivate retires the item. Deactivating twice raises nothing
func (i *Item) Deactivate() error {
	if !i.Active() {
		return nil
	}
	return eventide.Raise(i.Aggregate, ItemDeactivated, struct{}{})
}

func (i *Item) checkActive() error {
	if !i.Active() {
		return fmt.Errorf("%w: %s (id %s)", ErrItemDeactivated, i.Name(), i.ID())
	}
	return nil
}

func checkQuantity(qty int) error {
	if qty <= 0 {
		return eventide.Validationf("quantity must be positive, got %d", qty)
	}
	return nil
}
