package product

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeyev/storefront/internal/events"
)

// --- Mock implementations ---

type mockRepo struct {
	bySlug    map[string]*Product
	slugTaken map[string]bool
	created   *Product
	updated   *Product
	deletedID int64
	createErr error
	updateErr error
}

func newMockRepo(products ...Product) *mockRepo {
	bySlug := make(map[string]*Product, len(products))
	for i := range products {
		bySlug[products[i].Slug] = &products[i]
	}
	return &mockRepo{bySlug: bySlug, slugTaken: map[string]bool{}}
}

func (m *mockRepo) List(_ context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.bySlug))
	for _, p := range m.bySlug {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Product, error) {
	for _, p := range m.bySlug {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetBySlug(_ context.Context, slug string) (*Product, error) {
	p, ok := m.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return m.slugTaken[slug], nil
}

func (m *mockRepo) Create(_ context.Context, p *Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = int64(len(m.bySlug) + 1)
	m.created = p
	m.bySlug[p.Slug] = p
	return nil
}

func (m *mockRepo) Update(_ context.Context, p *Product) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	m.deletedID = id
	return nil
}

type capturingPublisher struct {
	published []events.Event
}

func (c *capturingPublisher) Publish(_ context.Context, _, _ string, e events.Event) error {
	c.published = append(c.published, e)
	return nil
}

func (c *capturingPublisher) Close() error { return nil }

func newTestService(repo *mockRepo) (*Service, *capturingPublisher) {
	pub := &capturingPublisher{}
	return NewService(repo, NewSlugger([]byte("test-secret")), pub), pub
}

// --- Discount tests ---

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		original string
		percent  string
		want     string
	}{
		{"twenty percent", "100.00", "20", "80.00"},
		{"zero percent", "49.99", "0", "49.99"},
		{"rounds to cents", "9.99", "33.33", "6.66"},
		{"full discount", "15.00", "100", "0.00"},
		// Percentages above 100 are accepted and drive the price negative.
		{"over hundred", "100.00", "150", "-50.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{
				OriginalPrice:      decimal.RequireFromString(tt.original),
				DiscountPercentage: decimal.RequireFromString(tt.percent),
			}
			p.ApplyDiscount()
			assert.True(t, decimal.RequireFromString(tt.want).Equal(p.DiscountPrice),
				"got %s", p.DiscountPrice)
		})
	}
}

func TestDiscountAmount(t *testing.T) {
	p := Product{
		OriginalPrice:      decimal.RequireFromString("100.00"),
		DiscountPercentage: decimal.RequireFromString("25"),
	}
	p.ApplyDiscount()

	assert.True(t, decimal.RequireFromString("25.00").Equal(p.DiscountAmount()))
}

func TestDiscountAmount_NoDiscount(t *testing.T) {
	p := Product{OriginalPrice: decimal.RequireFromString("100.00")}
	p.ApplyDiscount()

	assert.True(t, decimal.Zero.Equal(p.DiscountAmount()))
}

// --- Service tests ---

func TestCreate_AssignsSlugAndDiscountPrice(t *testing.T) {
	repo := newMockRepo()
	svc, pub := newTestService(repo)

	p := &Product{
		Name:               "Almond Pack",
		OriginalPrice:      decimal.RequireFromString("100.00"),
		DiscountPercentage: decimal.RequireFromString("20"),
	}
	err := svc.Create(context.Background(), p)

	require.NoError(t, err)
	assert.NotEmpty(t, p.Slug)
	assert.True(t, decimal.RequireFromString("80.00").Equal(p.DiscountPrice))
	require.Len(t, pub.published, 1)
	assert.Equal(t, "product_created", pub.published[0]["type"])
}

func TestCreate_EmptyName(t *testing.T) {
	svc, _ := newTestService(newMockRepo())

	err := svc.Create(context.Background(), &Product{
		OriginalPrice: decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestCreate_NonPositivePrice(t *testing.T) {
	svc, _ := newTestService(newMockRepo())

	err := svc.Create(context.Background(), &Product{
		Name:          "Free Stuff",
		OriginalPrice: decimal.Zero,
	})
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreate_NegativeDiscount(t *testing.T) {
	svc, _ := newTestService(newMockRepo())

	err := svc.Create(context.Background(), &Product{
		Name:               "Widget",
		OriginalPrice:      decimal.NewFromInt(10),
		DiscountPercentage: decimal.NewFromInt(-5),
	})
	require.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestCreate_RepoError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = errors.New("db write failed")
	svc, pub := newTestService(repo)

	err := svc.Create(context.Background(), &Product{
		Name:          "Widget",
		OriginalPrice: decimal.NewFromInt(10),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create product")
	assert.Empty(t, pub.published)
}

func TestUpdate_RecomputesDiscountPrice(t *testing.T) {
	repo := newMockRepo()
	svc, pub := newTestService(repo)

	p := &Product{
		ID:                 7,
		Name:               "Widget",
		Slug:               "abc",
		OriginalPrice:      decimal.RequireFromString("50.00"),
		DiscountPercentage: decimal.RequireFromString("10"),
		DiscountPrice:      decimal.RequireFromString("50.00"), // stale
	}
	err := svc.Update(context.Background(), p)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("45.00").Equal(repo.updated.DiscountPrice))
	require.Len(t, pub.published, 1)
	assert.Equal(t, "product_updated", pub.published[0]["type"])
}

func TestDelete(t *testing.T) {
	p := Product{ID: 3, Name: "Widget", Slug: "abc", OriginalPrice: decimal.NewFromInt(5)}
	repo := newMockRepo(p)
	svc, pub := newTestService(repo)

	err := svc.Delete(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, int64(3), repo.deletedID)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "product_deleted", pub.published[0]["type"])
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(newMockRepo())

	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
