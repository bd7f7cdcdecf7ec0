package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasleem/internal/models"
	"tasleem/internal/store"
	"tasleem/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher publishes committed ledger events
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *models.LedgerEvent) error
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishLedgerEvent(context.Context, *models.LedgerEvent) error { return nil }

// OrderService handles order pricing and the order side of the merchant ledger
type OrderService struct {
	store     *store.Store
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, publisher EventPublisher) *OrderService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Items          []OrderItemRequest `json:"items"`
	CustomerName   string             `json:"customerName"`
	CustomerPhone  string             `json:"customerPhone"`
	Province       string             `json:"province"`
	Address        string             `json:"address"`
	Notes          string             `json:"notes"`
	PromoCode      string             `json:"promoCode"`
	IdempotencyKey string             `json:"idempotencyKey,omitempty"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID    int64 `json:"productId"`
	Quantity     int   `json:"quantity"`
	SellingPrice int64 `json:"sellingPrice"`
}

func (r *CreateOrderRequest) validate() error {
	if len(r.Items) == 0 {
		return newError(KindValidation, MsgEmptyOrder)
	}
	if len(r.Items) > MaxOrderLines {
		return newError(KindValidation, MsgTooManyItems)
	}
	for _, item := range r.Items {
		if item.Quantity < 1 || item.Quantity > MaxLineQuantity ||
			item.SellingPrice < 0 || item.SellingPrice > MaxUnitPrice {
			return newError(KindValidation, fmt.Sprintf("بيانات المنتج %d غير صحيحة", item.ProductID))
		}
	}
	if strings.TrimSpace(r.CustomerName) == "" || strings.TrimSpace(r.CustomerPhone) == "" ||
		strings.TrimSpace(r.Province) == "" || strings.TrimSpace(r.Address) == "" {
		return newError(KindValidation, MsgCustomerRequired)
	}
	return nil
}

// CreateOrder prices and persists an order for merchant. Every product is
// resolved before anything is written; the order, its items and the pending
// balance credit are committed together.
func (s *OrderService) CreateOrder(ctx context.Context, merchant *models.User, req *CreateOrderRequest) (order *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer func() { util.EndSpan(span, err) }()

	if err := req.validate(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	var idempotencyKey *string
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		idempotencyKey = &key
		existing, err := s.store.GetOrderByIdempotencyKey(ctx, merchant.ID, key)
		if err != nil {
			return nil, Unexpected(fmt.Errorf("failed to check idempotency: %w", err))
		}
		if existing != nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", key),
				zap.Int64("order_id", existing.ID))
			return existing, nil
		}
	}

	products, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	promo, err := s.resolvePromo(ctx, req.PromoCode)
	if err != nil {
		return nil, err
	}

	lines := make([]PricedLine, len(req.Items))
	items := make([]models.OrderItem, len(req.Items))
	for i, item := range req.Items {
		product := products[item.ProductID]
		lines[i] = PricedLine{
			SellingPrice:   item.SellingPrice,
			WholesalePrice: product.WholesalePrice,
			Quantity:       item.Quantity,
		}
		items[i] = models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.SellingPrice,
			Cost:      product.WholesalePrice,
		}
	}

	if !LinesWithinBounds(lines) {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, newError(KindValidation, MsgProductInvalid)
	}

	var percent int64
	var promoCode *string
	if promo != nil {
		percent = promo.DiscountPercent
		promoCode = &promo.Code
	}
	quote := CalculateQuote(lines, req.Province, percent)
	if quote.TotalProfit < 0 {
		util.OrdersFailedTotal.WithLabelValues("negative_profit").Inc()
		return nil, newError(KindValidation, MsgNegativeProfit)
	}

	order = &models.Order{
		MerchantID:     merchant.ID,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		Province:       strings.TrimSpace(req.Province),
		Address:        strings.TrimSpace(req.Address),
		Notes:          req.Notes,
		Status:         models.OrderStatusPending,
		Subtotal:       quote.ItemsTotal,
		TotalAmount:    quote.CustomerTotal,
		ShippingCost:   quote.ShippingCost,
		TotalProfit:    quote.TotalProfit,
		PromoCode:      promoCode,
		PromoDiscount:  quote.PromoDiscount,
		IdempotencyKey: idempotencyKey,
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		if errors.Is(err, store.ErrDuplicate) && idempotencyKey != nil {
			existing, lookupErr := s.store.GetOrderByIdempotencyKey(ctx, merchant.ID, *idempotencyKey)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, Unexpected(fmt.Errorf("failed to create order: %w", err))
	}

	util.OrdersCreatedTotal.Inc()
	util.PendingProfitTotal.Add(float64(order.TotalProfit))
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("merchant_id", merchant.ID),
		zap.Int64("total_profit", order.TotalProfit),
		zap.Int64("total_amount", order.TotalAmount))

	s.publish(ctx, models.EventTypeOrderCreated, order, "")

	created, err := s.store.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return created, nil
}

// resolveProducts loads every referenced product, failing on the first missing one
func (s *OrderService) resolveProducts(ctx context.Context, items []OrderItemRequest) (map[int64]*models.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, Unexpected(fmt.Errorf("failed to load products: %w", err))
	}

	productMap := make(map[int64]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	for _, item := range items {
		if _, ok := productMap[item.ProductID]; !ok {
			return nil, newError(KindNotFound, fmt.Sprintf("المنتج %d غير موجود", item.ProductID))
		}
	}
	return productMap, nil
}

// resolvePromo returns the active promo for code. Unknown or inactive codes
// yield nil without an error.
func (s *OrderService) resolvePromo(ctx context.Context, code string) (*models.PromoCode, error) {
	code = NormalizePromoCode(code)
	if code == "" {
		return nil, nil
	}

	promo, err := s.store.GetPromoCodeByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug("Ignoring unknown promo code", zap.String("code", code))
		return nil, nil
	}
	if err != nil {
		return nil, Unexpected(fmt.Errorf("failed to load promo code: %w", err))
	}
	if !promo.IsActive {
		s.logger.Debug("Ignoring inactive promo code", zap.String("code", code))
		return nil, nil
	}
	return promo, nil
}

// UpdateOrderStatus moves an order to status. The first transition into
// delivered moves the order's profit from pending to withdrawable balance.
// Setting the current status again is a no-op.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (order *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer func() { util.EndSpan(span, err) }()

	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidOrderStatus(status) {
		return nil, newError(KindValidation, MsgInvalidStatus)
	}

	current, err := s.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, MsgOrderNotFound)
	}
	if err != nil {
		return nil, Unexpected(err)
	}

	if current.Status == status {
		return current, nil
	}
	if !models.CanTransitionOrder(current.Status, status) {
		return nil, newError(KindValidation, fmt.Sprintf("لا يمكن تغيير حالة الطلب من %s إلى %s", current.Status, status))
	}

	credit := status == models.OrderStatusDelivered
	updated, err := s.store.TransitionOrderStatus(ctx, orderID, current.Status, status, credit)
	if errors.Is(err, store.ErrStatusConflict) {
		return nil, newError(KindConflict, MsgStatusConflict)
	}
	if err != nil {
		return nil, Unexpected(err)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", current.Status),
		zap.String("to", status))

	s.publish(ctx, models.EventTypeOrderStatusChanged, updated, current.Status)
	if credit {
		util.ProfitCreditedTotal.Add(float64(updated.TotalProfit))
		s.logger.Info("Profit credited",
			zap.Int64("order_id", orderID),
			zap.Int64("merchant_id", updated.MerchantID),
			zap.Int64("amount", updated.TotalProfit))
		s.publish(ctx, models.EventTypeProfitCredited, updated, current.Status)
	}

	return updated, nil
}

// GetOrder retrieves an order. Merchants may only see their own orders.
func (s *OrderService) GetOrder(ctx context.Context, user *models.User, orderID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, MsgOrderNotFound)
	}
	if err != nil {
		return nil, Unexpected(err)
	}
	if !user.IsAdmin() && order.MerchantID != user.ID {
		return nil, newError(KindAuthorization, MsgForbidden)
	}
	return order, nil
}

// ListOrders lists the user's orders, or every order for admins
func (s *OrderService) ListOrders(ctx context.Context, user *models.User) ([]models.Order, error) {
	var merchantID *int64
	if !user.IsAdmin() {
		merchantID = &user.ID
	}
	orders, err := s.store.ListOrders(ctx, merchantID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return orders, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order, previous string) {
	orderID := order.ID
	event := &models.LedgerEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now().UTC(),
		},
		MerchantID:     order.MerchantID,
		OrderID:        &orderID,
		Amount:         order.TotalProfit,
		PreviousStatus: previous,
		Status:         order.Status,
	}

	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish ledger event",
			zap.String("event_type", eventType),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}
