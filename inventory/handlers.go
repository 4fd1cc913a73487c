package inventory

import (
	"context"
	"errors"

	"github.com/kode4food/eventide"
)

// Handlers executes inventory commands against a repository
type Handlers struct {
	repo eventide.Repository[*Item]
}

// NewHandlers binds the command handlers to repo
func NewHandlers(repo eventide.Repository[*Item]) *Handlers {
	return &Handlers{repo: repo}
}

// Register binds every inventory command on d
func (h *Handlers) Register(d *eventide.Dispatcher) error {
	return errors.Join(
		eventide.Register(d, h.Create),
		eventide.Register(d, h.Rename),
		eventide.Register(d, h.CheckIn),
		eventide.Register(d, h.CheckOut),
		eventide.Register(d, h.Deactivate),
	)
}

func (h *Handlers) Create(ctx context.Context, cmd CreateItem) error {
	item, err := Create(cmd.AggregateID(), cmd.Name(), cmd.Quantity())
	if err != nil {
		return err
	}
	return h.repo.Save(ctx, item)
}

func (h *Handlers) Rename(ctx context.Context, cmd RenameItem) error {
	return h.update(ctx, cmd, func(item *Item) error {
		return item.Rename(cmd.Name())
	})
}

func (h *Handlers) CheckIn(ctx context.Context, cmd CheckInItem) error {
	return h.update(ctx, cmd, func(item *Item) error {
		return item.CheckIn(cmd.Quantity())
	})
}

func (h *Handlers) CheckOut(ctx context.Context, cmd CheckOutItem) error {
	return h.update(ctx, cmd, func(item *Item) error {
		return item.CheckOut(cmd.Quantity())
	})
}

func (h *Handlers) Deactivate(ctx context.Context, cmd DeactivateItem) error {
	return h.update(ctx, cmd, (*Item).Deactivate)
}

func (h *Handlers) update(
	ctx context.Context, cmd eventide.Command, fn func(*Item) error,
) error {
	item, err := h.repo.GetByID(ctx, cmd.AggregateID())
	if err != nil {
		return err
	}
	if err := fn(item); err != nil {
		return err
	}
	return h.repo.Save(ctx, item)
}
