package order

// Domain event types published to the shared event channel.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
)

type eventItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// releaseItem mirrors the release list sent to the catalog: product and
// quantity only.
type releaseItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type orderCreatedEvent struct {
	OrderID     string      `json:"order_id"`
	UserID      int64       `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Items       []eventItem `json:"items"`
}

type orderStatusChangedEvent struct {
	OrderID   string `json:"order_id"`
	UserID    int64  `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type orderCancelledEvent struct {
	OrderID string        `json:"order_id"`
	UserID  int64         `json:"user_id"`
	Items   []releaseItem `json:"items"`
}
