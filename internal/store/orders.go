package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasleem/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrder writes the order header, its items and the merchant's pending
// balance credit in a single transaction. Nothing is written if any step fails.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	order.CreatedAt = now()
	order.UpdatedAt = order.CreatedAt

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO orders (merchant_id, customer_name, customer_phone, province, address, notes, status,
			                    subtotal, total_amount, shipping_cost, total_profit, promo_code, promo_discount,
			                    idempotency_key, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`)

		if err := tx.GetContext(ctx, &order.ID, query,
			order.MerchantID, order.CustomerName, order.CustomerPhone, order.Province, order.Address, order.Notes,
			order.Status, order.Subtotal, order.TotalAmount, order.ShippingCost, order.TotalProfit,
			order.PromoCode, order.PromoDiscount, order.IdempotencyKey, order.CreatedAt, order.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		itemQuery := tx.Rebind(`
			INSERT INTO order_items (order_id, product_id, quantity, price, cost)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`)
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.GetContext(ctx, &items[i].ID, itemQuery,
				items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].Price, items[i].Cost); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE users SET pending_balance = pending_balance + ? WHERE id = ?"),
			order.TotalProfit, order.MerchantID)
		if err != nil {
			return fmt.Errorf("failed to credit pending balance: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Items = items
	return nil
}

// GetOrderByID retrieves an order and its items
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, s.db.Rebind("SELECT * FROM orders WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	orders := []models.Order{order}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// GetOrderByIdempotencyKey retrieves a merchant's order by idempotency key.
// Returns nil, nil when no such order exists.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, merchantID int64, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		s.db.Rebind("SELECT id FROM orders WHERE merchant_id = ? AND idempotency_key = ?"), merchantID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetOrderByID(ctx, order.ID)
}

// ListOrders retrieves orders newest first. A nil merchantID lists every merchant's orders.
func (s *Store) ListOrders(ctx context.Context, merchantID *int64) ([]models.Order, error) {
	orders := []models.Order{}
	var err error
	if merchantID != nil {
		err = s.db.SelectContext(ctx, &orders,
			s.db.Rebind("SELECT * FROM orders WHERE merchant_id = ? ORDER BY id DESC"), *merchantID)
	} else {
		err = s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY id DESC")
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// TransitionOrderStatus moves an order from one status to another with a
// compare-and-swap on the previous status. When credit is true the order's
// profit moves from the merchant's pending balance to the withdrawable
// balance in the same transaction; the pending debit is floored at zero.
func (s *Store) TransitionOrderStatus(ctx context.Context, orderID int64, from, to string, credit bool) (*models.Order, error) {
	var order models.Order

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?"),
			to, now(), orderID, from)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrStatusConflict
		}

		if err := tx.GetContext(ctx, &order, tx.Rebind("SELECT * FROM orders WHERE id = ?"), orderID); err != nil {
			return err
		}

		if !credit {
			return nil
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE users SET
			  pending_balance = CASE WHEN pending_balance > ? THEN pending_balance - ? ELSE 0 END,
			  balance = balance + ?
			WHERE id = ?`),
			order.TotalProfit, order.TotalProfit, order.TotalProfit, order.MerchantID)
		if err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders := []models.Order{order}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

type orderItemRow struct {
	models.OrderItem
	ProductRefID    sql.NullInt64  `db:"p_id"`
	ProductName     sql.NullString `db:"p_name"`
	ProductImageURL sql.NullString `db:"p_image_url"`
	ProductCategory sql.NullString `db:"p_category"`
}

// attachItems loads the items of the given orders joined with a product summary
func (s *Store) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	query, args, err := sqlx.In(`
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.cost,
		       p.id AS p_id, p.name AS p_name, p.image_url AS p_image_url, p.category AS p_category
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.id`, ids)
	if err != nil {
		return err
	}

	var rows []orderItemRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	byOrder := make(map[int64][]models.OrderItem, len(orders))
	for _, row := range rows {
		item := row.OrderItem
		if row.ProductRefID.Valid {
			item.Product = &models.ProductSummary{
				ID:       row.ProductRefID.Int64,
				Name:     row.ProductName.String,
				ImageURL: row.ProductImageURL.String,
				Category: row.ProductCategory.String,
			}
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return nil
}
