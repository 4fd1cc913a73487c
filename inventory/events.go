package inventory

import "github.com/kode4food/eventide"

type (
	// ItemCreatedData is the payload of ItemCreated
	ItemCreatedData struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}

	// ItemRenamedData is the payload of ItemRenamed
	ItemRenamedData struct {
		Name string `json:"name"`
	}

	// QuantityData is the payload of ItemCheckedIn and ItemCheckedOut
	QuantityData struct {
		Quantity int `json:"quantity"`
	}
)

const (
	ItemCreated     eventide.EventType = "inventory.item_created"
	ItemRenamed     eventide.EventType = "inventory.item_renamed"
	ItemCheckedIn   eventide.EventType = "inventory.item_checked_in"
	ItemCheckedOut  eventide.EventType = "inventory.item_checked_out"
	ItemDeactivated eventide.EventType = "inventory.item_deactivated"
)

// EventTypes lists every event an Item can raise
var EventTypes = []eventide.EventType{
	ItemCreated, ItemRenamed, ItemCheckedIn, ItemCheckedOut, ItemDeactivated,
}
