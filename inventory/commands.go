package inventory

import "github.com/kode4food/eventide"

type (
	// CreateItem asks for a new item with an initial stock
	CreateItem struct {
		eventide.CommandHeader
		name     string
		quantity int
	}

	// RenameItem asks for an item to be renamed
	RenameItem struct {
		eventide.CommandHeader
		name string
	}

	// CheckInItem asks for stock to be added to an item
	CheckInItem struct {
		eventide.CommandHeader
		quantity int
	}

	// CheckOutItem asks for stock to be removed from an item
	CheckOutItem struct {
		eventide.CommandHeader
		quantity int
	}

	// DeactivateItem asks for an item to be retired
	DeactivateItem struct {
		eventide.CommandHeader
	}
)

// NewCreateItem targets a freshly generated item id
func NewCreateItem(name string, qty int) (CreateItem, error) {
	if name == "" {
		return CreateItem{}, eventide.Validationf("item name is required")
	}
	if qty < 0 {
		return CreateItem{}, eventide.Validationf(
			"negative initial quantity %d", qty,
		)
	}
	hdr, err := eventide.NewCommandHeader(eventide.NewAggregateID())
	if err != nil {
		return CreateItem{}, err
	}
	return CreateItem{CommandHeader: hdr, name: name, quantity: qty}, nil
}

func NewRenameItem(id eventide.AggregateID, name string) (RenameItem, error) {
	if name == "" {
		return RenameItem{}, eventide.Validationf("item name is required")
	}
	hdr, err := eventide.NewCommandHeader(id)
	if err != nil {
		return RenameItem{}, err
	}
	return RenameItem{CommandHeader: hdr, name: name}, nil
}

func NewCheckInItem(id eventide.AggregateID, qty int) (CheckInItem, error) {
	if err := checkQuantity(qty); err != nil {
		return CheckInItem{}, err
	}
	hdr, err := eventide.NewCommandHeader(id)
	if err != nil {
		return CheckInItem{}, err
	}
	return CheckInItem{CommandHeader: hdr, quantity: qty}, nil
}

func NewCheckOutItem(id eventide.AggregateID, qty int) (CheckOutItem, error) {
	if err := checkQuantity(qty); err != nil {
		return CheckOutItem{}, err
	}
	hdr, err := eventide.NewCommandHeader(id)
	if err != nil {
		return CheckOutItem{}, err
	}
	return CheckOutItem{CommandHeader: hdr, quantity: qty}, nil
}

func NewDeactivateItem(id eventide.AggregateID) (DeactivateItem, error) {
	hdr, err := eventide.NewCommandHeader(id)
	if err != nil {
		return DeactivateItem{}, err
	}
	return DeactivateItem{CommandHeader: hdr}, nil
}

func (c CreateItem) Name() string   { return c.name }
func (c CreateItem) Quantity() int  { return c.quantity }
func (c RenameItem) Name() string   { return c.name }
func (c CheckInItem) Quantity() int { return c.quantity }

func (c CheckOutItem) Quantity() int { return c.quantity }
