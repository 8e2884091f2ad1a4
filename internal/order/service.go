package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/microshop/order-service/internal/client"
	"github.com/rs/zerolog/log"
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

var (
	ErrShippingAddressRequired = errors.New("shipping address is required")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrUserUnresolved          = errors.New("user not found")
	ErrInsufficientStock       = errors.New("failed to reserve products, some items may be out of stock")
)

// StatusTransitionError reports an attempted transition that is not in the
// state machine. The order is left unchanged when it is returned.
type StatusTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %s to %s", e.From, e.To)
}

// CartClient fetches the caller's cart from the cart service.
type CartClient interface {
	GetCart(ctx context.Context, token string) (*client.Cart, error)
}

// AuthClient resolves the caller's profile from the auth service.
type AuthClient interface {
	GetUser(ctx context.Context, token string) (*client.UserProfile, error)
}

// CatalogClient reserves and releases stock in the catalog service.
type CatalogClient interface {
	ReserveStock(ctx context.Context, items []client.Reservation) error
	ReleaseStock(ctx context.Context, items []client.Reservation) error
}

// EventPublisher pushes domain events onto the shared channel. Errors are an
// explicit result the orchestrator logs and ignores; publication is never
// part of the consistency boundary.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

type Service interface {
	CreateOrderFromCart(ctx context.Context, userID int64, token, shippingAddress string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) (*Order, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID, userID int64) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]Order, error)
	GetStatistics(ctx context.Context, userID int64) (*Statistics, error)
}

type service struct {
	repo    Repository
	carts   CartClient
	users   AuthClient
	catalog CatalogClient
	events  EventPublisher
}

func NewService(repo Repository, carts CartClient, users AuthClient, catalog CatalogClient, events EventPublisher) Service {
	return &service{
		repo:    repo,
		carts:   carts,
		users:   users,
		catalog: catalog,
		events:  events,
	}
}

// CreateOrderFromCart runs the order-creation saga: cart fetch, user fetch,
// stock reservation, transactional persist, event publish. The remote calls
// happen outside the database transaction, so the sequence as a whole is not
// atomic: a reservation that fails partway leaves earlier decrements in
// place, and the operation is not idempotent across client retries.
func (s *service) CreateOrderFromCart(ctx context.Context, userID int64, token, shippingAddress string) (*Order, error) {
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, ErrShippingAddressRequired
	}

	cart, err := s.carts.GetCart(ctx, token)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("service: failed to fetch cart")
		return nil, ErrEmptyCart
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	profile, err := s.users.GetUser(ctx, token)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("service: failed to fetch user profile")
		return nil, ErrUserUnresolved
	}
	if profile == nil {
		return nil, ErrUserUnresolved
	}

	reservations := make([]client.Reservation, 0, len(cart.Items))
	items := make([]OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		reservations = append(reservations, client.Reservation{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
		items = append(items, OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.ProductPrice,
			Quantity:    line.Quantity,
		})
	}

	ord := &Order{
		UserID:          userID,
		UserEmail:       profile.Email,
		UserName:        strings.TrimSpace(profile.FirstName + " " + profile.LastName),
		ShippingAddress: shippingAddress,
		Status:          StatusPending,
		TotalAmount:     cart.TotalAmount,
		Items:           items,
	}

	steps := []sagaStep{
		{
			name: "reserve_stock",
			run: func(ctx context.Context) error {
				if err := s.catalog.ReserveStock(ctx, reservations); err != nil {
					log.Warn().Err(err).Int64("user_id", userID).Msg("service: stock reservation failed")
					return ErrInsufficientStock
				}
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.catalog.ReleaseStock(ctx, reservations)
			},
		},
		{
			name: "persist_order",
			run: func(ctx context.Context) error {
				if _, err := s.repo.CreateOrder(ctx, ord); err != nil {
					return fmt.Errorf("service: failed to create order: %w", err)
				}
				return nil
			},
		},
	}

	if err := runSaga(ctx, steps); err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, EventOrderCreated, orderCreatedEvent{
		OrderID:     ord.ID.String(),
		UserID:      ord.UserID,
		TotalAmount: ord.TotalAmount,
		Items:       toEventItems(ord.Items),
	}); err != nil {
		log.Error().Err(err).Stringer("order_id", ord.ID).Msg("service: failed to publish order.created event")
	}

	log.Info().Stringer("order_id", ord.ID).Int64("user_id", ord.UserID).Msg("service: order created successfully")

	return ord, nil
}

// UpdateOrderStatus applies the status state machine. The new status is
// durable before any event is emitted; on cancellation the reserved stock is
// released best effort and an extra order.cancelled event follows the
// order.status_changed one.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) (*Order, error) {
	currentOrder, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	transitions, ok := allowedTransitions[currentOrder.Status]
	if !ok || !transitions[newStatus] {
		log.Warn().
			Stringer("order_id", currentOrder.ID).
			Stringer("current_status", currentOrder.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, &StatusTransitionError{From: currentOrder.Status, To: newStatus}
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	oldStatus := currentOrder.Status
	currentOrder.Status = newStatus

	if err := s.events.Publish(ctx, EventOrderStatusChanged, orderStatusChangedEvent{
		OrderID:   currentOrder.ID.String(),
		UserID:    currentOrder.UserID,
		OldStatus: oldStatus.String(),
		NewStatus: newStatus.String(),
	}); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to publish order.status_changed event")
	}

	if newStatus == StatusCancelled {
		s.releaseCancelledOrder(ctx, currentOrder)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", oldStatus).Stringer("new_status", newStatus).Msg("service: order status updated successfully")

	return currentOrder, nil
}

func (s *service) releaseCancelledOrder(ctx context.Context, ord *Order) {
	releases := make([]client.Reservation, 0, len(ord.Items))
	for _, item := range ord.Items {
		releases = append(releases, client.Reservation{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.catalog.ReleaseStock(ctx, releases); err != nil {
		log.Error().Err(err).Stringer("order_id", ord.ID).Msg("service: failed to release stock for cancelled order")
	}

	released := make([]releaseItem, 0, len(releases))
	for _, rel := range releases {
		released = append(released, releaseItem{ProductID: rel.ProductID, Quantity: rel.Quantity})
	}

	if err := s.events.Publish(ctx, EventOrderCancelled, orderCancelledEvent{
		OrderID: ord.ID.String(),
		UserID:  ord.UserID,
		Items:   released,
	}); err != nil {
		log.Error().Err(err).Stringer("order_id", ord.ID).Msg("service: failed to publish order.cancelled event")
	}
}

// GetOrderByID returns the order only when it belongs to userID; anything
// else looks like a missing order to the caller.
func (s *service) GetOrderByID(ctx context.Context, orderID uuid.UUID, userID int64) (*Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.repo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) GetStatistics(ctx context.Context, userID int64) (*Statistics, error) {
	stats, err := s.repo.GetStatisticsByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("service: failed to fetch order statistics in repository")
		return nil, fmt.Errorf("service: failed to fetch order statistics: %w", err)
	}

	return stats, nil
}

func toEventItems(items []OrderItem) []eventItem {
	out := make([]eventItem, 0, len(items))
	for _, item := range items {
		out = append(out, eventItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}
	return out
}
