package service

const (
	EventCartChanged    = "cart.changed"
	EventCatalogChanged = "catalog.changed"
)

// ViewEvent tells connected views which projection to redraw.
type ViewEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id,omitempty"`
	ItemCount int    `json:"item_count,omitempty"`
}

type Notifier interface {
	NotifySession(sessionID string, event ViewEvent)
	Broadcast(event ViewEvent)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) NotifySession(string, ViewEvent) {}
func (NopNotifier) Broadcast(ViewEvent)             {}
