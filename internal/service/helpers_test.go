package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"tasleem/internal/models"
	"tasleem/internal/redisclient"
	"tasleem/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.LedgerEvent
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, event *models.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]int64
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]int64{}}
}

func (m *memSessions) CreateSession(_ context.Context, userID int64, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := uuid.NewString()
	m.sessions[token] = userID
	return token, nil
}

func (m *memSessions) SessionUser(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sessions[token]
	if !ok {
		return 0, redisclient.ErrSessionNotFound
	}
	return id, nil
}

func (m *memSessions) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type fixture struct {
	store       *store.Store
	publisher   *recordingPublisher
	sessions    *memSessions
	orders      *OrderService
	withdrawals *WithdrawalService
	auth        *AuthService
	catalog     *CatalogService
	promos      *PromoService
	journal     *JournalRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewStore("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	pub := &recordingPublisher{}
	sessions := newMemSessions()
	auth := NewAuthService(s, sessions, 30*24*time.Hour)
	auth.hashCost = bcrypt.MinCost

	return &fixture{
		store:       s,
		publisher:   pub,
		sessions:    sessions,
		orders:      NewOrderService(s, pub),
		withdrawals: NewWithdrawalService(s, pub),
		auth:        auth,
		catalog:     NewCatalogService(s),
		promos:      NewPromoService(s),
		journal:     NewJournalRecorder(s),
	}
}

func (f *fixture) merchant(t *testing.T, phone string) *models.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), &RegisterRequest{
		Phone:     phone,
		Password:  "secret1",
		StoreName: "متجر " + phone,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) product(t *testing.T, wholesale int64) *models.Product {
	t.Helper()
	name := "منتج"
	p, err := f.catalog.CreateProduct(context.Background(), &ProductRequest{Name: &name, WholesalePrice: &wholesale})
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id int64) *models.User {
	t.Helper()
	u, err := f.store.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func orderRequest(province string, items ...OrderItemRequest) *CreateOrderRequest {
	return &CreateOrderRequest{
		Items:         items,
		CustomerName:  "علي",
		CustomerPhone: "07701234567",
		Province:      province,
		Address:       "شارع فلسطين",
	}
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), err.Error())
}
