package services

import (
	"encoding/json"
	"log/slog"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/pkg/event"
)

// Publisher delivers a message to every subscriber of topic. *ws.Hub
// satisfies it.
type Publisher interface {
	Publish(topic string, data []byte) bool
}

// FeedMessage is what order feed subscribers receive.
type FeedMessage struct {
	Event string       `json:"event"`
	Order models.Order `json:"order"`
}

// StoreTopic names the feed topic of a store.
func StoreTopic(storeID string) string { return "store:" + storeID }

// ListenOrderFeed forwards order events to the store's feed topic.
func ListenOrderFeed(d *event.Dispatcher, pub Publisher, log *slog.Logger) {
	forward := func(name string) event.Handler {
		return func(payload interface{}) {
			order, ok := payload.(models.Order)
			if !ok {
				return
			}
			data, err := json.Marshal(FeedMessage{Event: name, Order: order})
			if err != nil {
				log.Error("encode order event", "event", name, "error", err)
				return
			}
			if !pub.Publish(StoreTopic(order.StoreID), data) {
				log.Warn("order feed dropped event", "event", name, "s_id", order.StoreID)
			}
		}
	}
	d.Listen(event.OrderPlaced, forward(event.OrderPlaced))
	d.Listen(event.OrderStatusChanged, forward(event.OrderStatusChanged))
}
