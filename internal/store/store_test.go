package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tasleem/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedMerchant(t *testing.T, s *Store, phone string) *models.User {
	t.Helper()
	u := &models.User{
		Phone:        phone,
		PasswordHash: "hash",
		StoreName:    "store " + phone,
		Role:         models.RoleMerchant,
		MerchantCode: "TSL-" + phone,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, s *Store, wholesale int64) *models.Product {
	t.Helper()
	p := &models.Product{Name: fmt.Sprintf("product %d", wholesale), WholesalePrice: wholesale, SellingPriceMin: wholesale, Category: "عام"}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func seedOrder(t *testing.T, s *Store, merchantID, productID, profit int64) *models.Order {
	t.Helper()
	order := &models.Order{
		MerchantID:    merchantID,
		CustomerName:  "customer",
		CustomerPhone: "0770",
		Province:      "بغداد",
		Address:       "street",
		Status:        models.OrderStatusPending,
		Subtotal:      3000,
		TotalAmount:   8000,
		ShippingCost:  5000,
		TotalProfit:   profit,
	}
	items := []models.OrderItem{{ProductID: productID, Quantity: 2, Price: 1500, Cost: 1000}}
	require.NoError(t, s.CreateOrder(context.Background(), order, items))
	return order
}

func setBalance(t *testing.T, s *Store, userID, balance, pending int64) {
	t.Helper()
	_, err := s.GetDB().Exec("UPDATE users SET balance = ?, pending_balance = ? WHERE id = ?", balance, pending, userID)
	require.NoError(t, err)
}

func TestCreateUserDuplicatePhone(t *testing.T) {
	s := newTestStore(t)
	seedMerchant(t, s, "0770000001")

	err := s.CreateUser(context.Background(), &models.User{
		Phone: "0770000001", PasswordHash: "x", StoreName: "other", Role: models.RoleMerchant, MerchantCode: "TSL-OTHER",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateOrderCreditsPendingBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000002")
	product := seedProduct(t, s, 1000)

	order := seedOrder(t, s, merchant.ID, product.ID, 1000)
	assert.NotZero(t, order.ID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	got, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.TotalProfit)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, product.Name, got.Items[0].Product.Name)

	u, err := s.GetUserByID(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), u.PendingBalance)
	assert.Equal(t, int64(0), u.Balance)
}

func TestCreateOrderUnknownMerchantWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedProduct(t, s, 1000)

	order := &models.Order{MerchantID: 999, CustomerName: "c", CustomerPhone: "p", Province: "x", Address: "a", Status: models.OrderStatusPending}
	err := s.CreateOrder(ctx, order, []models.OrderItem{{ProductID: product.ID, Quantity: 1, Price: 1, Cost: 1}})
	require.Error(t, err)

	orders, err := s.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)

	var items int
	require.NoError(t, s.GetDB().Get(&items, "SELECT COUNT(*) FROM order_items"))
	assert.Zero(t, items)
}

func TestOrderItemsKeepSnapshotAfterProductEdit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000003")
	product := seedProduct(t, s, 1000)
	order := seedOrder(t, s, merchant.ID, product.ID, 1000)

	product.WholesalePrice = 1400
	require.NoError(t, s.UpdateProduct(ctx, product))

	got, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Items[0].Cost)
	assert.Equal(t, int64(1000), got.TotalProfit)

	require.NoError(t, s.DeleteProduct(ctx, product.ID))
	got, err = s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Items[0].Product)
}

func TestTransitionOrderStatusCredit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000004")
	product := seedProduct(t, s, 1000)
	order := seedOrder(t, s, merchant.ID, product.ID, 1000)

	updated, err := s.TransitionOrderStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusDelivered, true)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
	assert.Len(t, updated.Items, 1)

	u, err := s.GetUserByID(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.PendingBalance)
	assert.Equal(t, int64(1000), u.Balance)

	// stale previous status loses the compare-and-swap
	_, err = s.TransitionOrderStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusDelivered, true)
	assert.ErrorIs(t, err, ErrStatusConflict)

	u, err = s.GetUserByID(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), u.Balance)
}

func TestTransitionOrderStatusClampsPendingAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000005")
	product := seedProduct(t, s, 1000)
	order := seedOrder(t, s, merchant.ID, product.ID, 1000)
	setBalance(t, s, merchant.ID, 0, 400)

	_, err := s.TransitionOrderStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusDelivered, true)
	require.NoError(t, err)

	u, err := s.GetUserByID(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.PendingBalance)
	assert.Equal(t, int64(1000), u.Balance)
}

func TestCreateWithdrawal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000006")
	setBalance(t, s, merchant.ID, 1000, 0)

	over := &models.Withdrawal{MerchantID: merchant.ID, Amount: 1500, Method: "manual", Status: models.WithdrawalStatusPending}
	assert.ErrorIs(t, s.CreateWithdrawal(ctx, over), ErrInsufficientFunds)

	list, err := s.ListWithdrawals(ctx, &merchant.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	w := &models.Withdrawal{MerchantID: merchant.ID, Amount: 1000, Method: "zaincash", Status: models.WithdrawalStatusPending}
	require.NoError(t, s.CreateWithdrawal(ctx, w))
	assert.NotZero(t, w.ID)

	u, err := s.GetUserByID(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Balance)

	missing := &models.Withdrawal{MerchantID: 999, Amount: 1, Method: "manual", Status: models.WithdrawalStatusPending}
	assert.ErrorIs(t, s.CreateWithdrawal(ctx, missing), ErrNotFound)
}

func TestConcurrentWithdrawalsCannotOverdraw(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000012")
	setBalance(t, s, merchant.ID, 1000, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := &models.Withdrawal{MerchantID: merchant.ID, Amount: 1000, Method: "manual", Status: models.WithdrawalStatusPending}
			errs[i] = s.CreateWithdrawal(ctx, w)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	}
	assert.Equal(t, 1, succeeded)

	u, err := s.GetUserByID(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Balance)

	list, err := s.ListWithdrawals(ctx, &merchant.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateWithdrawalStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000007")
	setBalance(t, s, merchant.ID, 500, 0)

	w := &models.Withdrawal{MerchantID: merchant.ID, Amount: 500, Method: "manual", Status: models.WithdrawalStatusPending}
	require.NoError(t, s.CreateWithdrawal(ctx, w))

	updated, err := s.UpdateWithdrawalStatus(ctx, w.ID, models.WithdrawalStatusPending, models.WithdrawalStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusCompleted, updated.Status)

	_, err = s.UpdateWithdrawalStatus(ctx, w.ID, models.WithdrawalStatusPending, models.WithdrawalStatusRejected)
	assert.ErrorIs(t, err, ErrStatusConflict)

	u, err := s.GetUserByID(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Balance)
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedMerchant(t, s, "0770000008")
	b := seedMerchant(t, s, "0770000009")
	product := seedProduct(t, s, 1000)

	first := seedOrder(t, s, a.ID, product.ID, 100)
	second := seedOrder(t, s, a.ID, product.ID, 200)
	seedOrder(t, s, b.ID, product.ID, 300)

	mine, err := s.ListOrders(ctx, &a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := s.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestIdempotencyKeyLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000010")
	product := seedProduct(t, s, 1000)

	key := "key-1"
	order := &models.Order{MerchantID: merchant.ID, CustomerName: "c", CustomerPhone: "p", Province: "x", Address: "a",
		Status: models.OrderStatusPending, IdempotencyKey: &key}
	require.NoError(t, s.CreateOrder(ctx, order, []models.OrderItem{{ProductID: product.ID, Quantity: 1, Price: 1, Cost: 1}}))

	got, err := s.GetOrderByIdempotencyKey(ctx, merchant.ID, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.ID, got.ID)

	none, err := s.GetOrderByIdempotencyKey(ctx, merchant.ID, "other")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPromoCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &models.PromoCode{Code: "SAVE10", DiscountPercent: 10, IsActive: true}
	require.NoError(t, s.CreatePromoCode(ctx, p))
	assert.ErrorIs(t, s.CreatePromoCode(ctx, &models.PromoCode{Code: "SAVE10", DiscountPercent: 5}), ErrDuplicate)

	got, err := s.GetPromoCodeByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, int64(10), got.DiscountPercent)

	require.NoError(t, s.DeletePromoCode(ctx, p.ID))
	_, err = s.GetPromoCodeByCode(ctx, "SAVE10")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePromoCode(ctx, p.ID), ErrNotFound)
}

func TestAppendJournalEntryOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orderID := int64(7)

	entry := &models.JournalEntry{
		EventID:    "evt-1",
		EventType:  models.EventTypeProfitCredited,
		MerchantID: 3,
		OrderID:    &orderID,
		Amount:     1000,
		Status:     models.OrderStatusDelivered,
		OccurredAt: time.Now().UTC(),
		RecordedAt: time.Now().UTC(),
	}

	inserted, err := s.AppendJournalEntry(ctx, entry)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.AppendJournalEntry(ctx, entry)
	require.NoError(t, err)
	assert.False(t, inserted)

	entries, err := s.ListJournal(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].OrderID)
	assert.Equal(t, orderID, *entries[0].OrderID)
	assert.Nil(t, entries[0].WithdrawalID)
}

func TestUpdateProfileKeepsBalances(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	merchant := seedMerchant(t, s, "0770000011")
	setBalance(t, s, merchant.ID, 250, 750)

	u, err := s.UpdateProfile(ctx, merchant.ID, "new name", merchant.Phone, "new address")
	require.NoError(t, err)
	assert.Equal(t, "new name", u.StoreName)
	assert.Equal(t, int64(250), u.Balance)
	assert.Equal(t, int64(750), u.PendingBalance)

	_, err = s.UpdateProfile(ctx, 999, "x", "y", "z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIdempotencyKeyScopedToMerchant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedMerchant(t, s, "0770000013")
	b := seedMerchant(t, s, "0770000014")
	product := seedProduct(t, s, 1000)
	items := []models.OrderItem{{ProductID: product.ID, Quantity: 1, Price: 1, Cost: 1}}

	key := "retry-1"
	newOrder := func(merchantID int64) *models.Order {
		return &models.Order{MerchantID: merchantID, CustomerName: "c", CustomerPhone: "p", Province: "x", Address: "a",
			Status: models.OrderStatusPending, IdempotencyKey: &key}
	}

	orderA := newOrder(a.ID)
	require.NoError(t, s.CreateOrder(ctx, orderA, items))
	orderB := newOrder(b.ID)
	require.NoError(t, s.CreateOrder(ctx, orderB, items))
	assert.NotEqual(t, orderA.ID, orderB.ID)

	assert.ErrorIs(t, s.CreateOrder(ctx, newOrder(a.ID), items), ErrDuplicate)

	got, err := s.GetOrderByIdempotencyKey(ctx, b.ID, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, orderB.ID, got.ID)
}
