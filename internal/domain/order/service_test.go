package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeyev/storefront/internal/events"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID       map[int64]*Order
	nextID     int64
	carts      map[uuid.UUID][]Item
	convertErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		byID:   map[int64]*Order{},
		nextID: 1,
		carts:  map[uuid.UUID][]Item{},
	}
}

func (m *mockOrderRepo) ConvertCart(_ context.Context, cartID uuid.UUID, ownerID int64) (*Order, error) {
	if m.convertErr != nil {
		return nil, m.convertErr
	}
	items, ok := m.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}
	delete(m.carts, cartID)

	o := &Order{
		ID:            m.nextID,
		OwnerID:       ownerID,
		PaymentStatus: StatusPending,
		PlacedAt:      time.Now(),
		Items:         items,
	}
	m.nextID++
	m.byID[o.ID] = o
	return o, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByOwner(_ context.Context, ownerID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		if o.OwnerID == ownerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

type capturingPublisher struct {
	published []events.Event
}

func (c *capturingPublisher) Publish(_ context.Context, _, _ string, e events.Event) error {
	c.published = append(c.published, e)
	return nil
}

func (c *capturingPublisher) Close() error { return nil }

// --- Tests ---

func TestConvert(t *testing.T) {
	repo := newMockOrderRepo()
	cartID := uuid.New()
	repo.carts[cartID] = []Item{
		{ProductID: 1, ProductName: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: 2, ProductName: "Gadget", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
	}
	pub := &capturingPublisher{}
	svc := NewService(repo, pub)

	o, err := svc.Convert(context.Background(), cartID, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), o.OwnerID)
	assert.Equal(t, StatusPending, o.PaymentStatus)
	assert.Len(t, o.Items, 2)
	assert.True(t, decimal.RequireFromString("25.00").Equal(o.Total()))

	require.Len(t, pub.published, 1)
	assert.Equal(t, "order_created", pub.published[0]["type"])
}

func TestConvert_ConsumesCart(t *testing.T) {
	repo := newMockOrderRepo()
	cartID := uuid.New()
	repo.carts[cartID] = []Item{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
	}
	svc := NewService(repo, &capturingPublisher{})

	_, err := svc.Convert(context.Background(), cartID, 7)
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), cartID, 7)
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestConvert_EmptyCart(t *testing.T) {
	repo := newMockOrderRepo()
	cartID := uuid.New()
	repo.carts[cartID] = nil
	svc := NewService(repo, &capturingPublisher{})

	o, err := svc.Convert(context.Background(), cartID, 7)

	require.NoError(t, err)
	assert.Empty(t, o.Items)
	assert.True(t, decimal.Zero.Equal(o.Total()))
}

func TestConvert_UnknownCart(t *testing.T) {
	svc := NewService(newMockOrderRepo(), &capturingPublisher{})

	_, err := svc.Convert(context.Background(), uuid.New(), 7)
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestGet_OwnerScoped(t *testing.T) {
	repo := newMockOrderRepo()
	repo.byID[1] = &Order{ID: 1, OwnerID: 7}
	svc := NewService(repo, &capturingPublisher{})

	o, err := svc.Get(context.Background(), 1, 7, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.ID)

	// Someone else's order reads as not found.
	_, err = svc.Get(context.Background(), 1, 8, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGet_StaffSeesAll(t *testing.T) {
	repo := newMockOrderRepo()
	repo.byID[1] = &Order{ID: 1, OwnerID: 7}
	svc := NewService(repo, &capturingPublisher{})

	o, err := svc.Get(context.Background(), 1, 99, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), o.OwnerID)
}

func TestList_Scoping(t *testing.T) {
	repo := newMockOrderRepo()
	repo.byID[1] = &Order{ID: 1, OwnerID: 7}
	repo.byID[2] = &Order{ID: 2, OwnerID: 8}
	svc := NewService(repo, &capturingPublisher{})

	mine, err := svc.List(context.Background(), 7, false)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(7), mine[0].OwnerID)

	all, err := svc.List(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderTotal_RoundsToCents(t *testing.T) {
	o := Order{Items: []Item{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("3.333")},
	}}
	assert.True(t, decimal.RequireFromString("10.00").Equal(o.Total()))
}
