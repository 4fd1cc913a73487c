package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kode4food/eventide"
	"github.com/kode4food/eventide/inventory"
	"github.com/kode4food/eventide/views"
)

type app struct {
	store      eventide.ClosableStore
	dispatcher *eventide.Dispatcher
	view       *views.InventoryView
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := eventide.LoadConfig()
	if err != nil {
		return err
	}

	log, err := eventide.NewLogger(cfg.LogMode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc, err := wire(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer func() { _ = svc.store.Close() }()

	if err := scenario(ctx, svc.dispatcher, log); err != nil {
		return err
	}

	for _, item := range svc.view.List() {
		log.Info("inventory",
			zap.String("id", item.ID.String()),
			zap.String("name", item.Name),
			zap.Int("quantity", item.Quantity),
		)
	}
	return nil
}

func wire(
	ctx context.Context, cfg eventide.Config, log *zap.Logger,
	reg prometheus.Registerer,
) (*app, error) {
	opts := []eventide.Option{
		eventide.WithLogger(log),
		eventide.WithMetrics(eventide.NewMetrics(reg)),
		eventide.WithRetries(cfg.MaxRetries),
	}

	pub := eventide.NewPublisher(opts...)
	view := views.NewInventoryView()
	view.Subscribe(pub)

	store, err := eventide.OpenStore(ctx, cfg.Store, pub, opts...)
	if err != nil {
		return nil, err
	}

	repo := eventide.NewStoreRepository(store, inventory.NewItem, opts...)
	dispatcher := eventide.NewDispatcher(opts...)
	if err := inventory.NewHandlers(repo).Register(dispatcher); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		store:      store,
		dispatcher: dispatcher,
		view:       view,
	}, nil
}

func scenario(
	ctx context.Context, d *eventide.Dispatcher, log *zap.Logger,
) error {
	send := func(cmd eventide.Command, err error) error {
		if err != nil {
			return err
		}
		return d.Dispatch(ctx, cmd)
	}

	apple, err := create(ctx, d, "Apple", 10)
	if err != nil {
		return err
	}
	banana, err := create(ctx, d, "Banana", 7)
	if err != nil {
		return err
	}
	orange, err := create(ctx, d, "Orange", 5)
	if err != nil {
		return err
	}

	// distinct items in parallel, plus two check outs racing on bananas
	var g errgroup.Group
	for _, out := range []struct {
		id  eventide.AggregateID
		qty int
	}{{apple, 5}, {banana, 3}, {banana, 2}, {orange, 5}} {
		g.Go(func() error {
			return send(inventory.NewCheckOutItem(out.id, out.qty))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	err = send(inventory.NewCheckOutItem(orange, 5))
	if !errors.Is(err, inventory.ErrNotEnoughStock) {
		return fmt.Errorf("expected not enough stock, got %v", err)
	}
	log.Info("rejected", zap.Error(err))

	if err := send(inventory.NewRenameItem(orange, "Pear")); err != nil {
		return err
	}
	if err := send(inventory.NewCheckInItem(banana, 3)); err != nil {
		return err
	}
	if err := send(inventory.NewDeactivateItem(apple)); err != nil {
		return err
	}

	err = send(inventory.NewCheckInItem(apple, 5))
	if !errors.Is(err, inventory.ErrItemDeactivated) {
		return fmt.Errorf("expected item deactivated, got %v", err)
	}
	log.Info("rejected", zap.Error(err))
	return nil
}

func create(
	ctx context.Context, d *eventide.Dispatcher, name string, qty int,
) (eventide.AggregateID, error) {
	cmd, err := inventory.NewCreateItem(name, qty)
	if err != nil {
		return "", err
	}
	return cmd.AggregateID(), d.Dispatch(ctx, cmd)
}
