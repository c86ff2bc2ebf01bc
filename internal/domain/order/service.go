package order

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avdeyev/storefront/internal/events"
)

// Service encapsulates order business logic: conversion of carts into orders
// and owner-scoped order access.
type Service struct {
	orders Repository
	events events.Publisher
}

// NewService creates an order Service.
func NewService(orders Repository, pub events.Publisher) *Service {
	return &Service{orders: orders, events: pub}
}

// Convert turns the cart into a pending order owned by ownerID. The cart is
// consumed: converting it a second time yields ErrCartNotFound. An empty cart
// converts into an order with no items.
func (s *Service) Convert(ctx context.Context, cartID uuid.UUID, ownerID int64) (*Order, error) {
	o, err := s.orders.ConvertCart(ctx, cartID, ownerID)
	if err != nil {
		return nil, err
	}

	event := events.Event{
		"type":     "order_created",
		"order_id": o.ID,
		"owner_id": o.OwnerID,
		"status":   string(o.PaymentStatus),
		"total":    o.Total().InexactFloat64(),
		"items":    len(o.Items),
	}
	if err := s.events.Publish(ctx, events.TopicOrders, strconv.FormatInt(o.ID, 10), event); err != nil {
		zctx.From(ctx).Warn("Publish order event", zap.Error(err))
	}

	return o, nil
}

// Get returns a single order. Non-staff callers only see their own orders;
// an order owned by someone else reads as not found rather than forbidden.
func (s *Service) Get(ctx context.Context, id, callerID int64, staff bool) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && o.OwnerID != callerID {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns the caller's orders, or every order when the caller is staff.
func (s *Service) List(ctx context.Context, callerID int64, staff bool) ([]Order, error) {
	if staff {
		orders, err := s.orders.ListAll(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list orders")
		}
		return orders, nil
	}
	orders, err := s.orders.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}
