package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RoutesByEventType(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())

	var handled []string
	d.Register(domain.EventPurchaseConfirmed, ports.HandlerFunc(func(_ context.Context, e *domain.Event) error {
		handled = append(handled, "purchase:"+e.ID)
		return nil
	}))
	d.Register(domain.EventInventoryUpdated, ports.HandlerFunc(func(_ context.Context, e *domain.Event) error {
		handled = append(handled, "inventory:"+e.ID)
		return nil
	}))

	err := d.Dispatch(context.Background(), &domain.Event{ID: "evt_1", EventType: domain.EventPurchaseConfirmed})
	require.NoError(t, err)
	err = d.Dispatch(context.Background(), &domain.Event{ID: "evt_2", EventType: domain.EventInventoryUpdated})
	require.NoError(t, err)

	assert.Equal(t, []string{"purchase:evt_1", "inventory:evt_2"}, handled)
}

func TestDispatcher_UnknownType_Acknowledged(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())

	err := d.Dispatch(context.Background(), &domain.Event{ID: "evt_9", EventType: "loyalty.points_awarded"})
	assert.NoError(t, err, "unknown event types are acknowledged, not failed")
}

func TestDispatcher_HandlerFailure_WrappedAsHandlerError(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())

	cause := fmt.Errorf("inventory lookup failed")
	d.Register(domain.EventInventoryUpdated, ports.HandlerFunc(func(context.Context, *domain.Event) error {
		return cause
	}))

	err := d.Dispatch(context.Background(), &domain.Event{ID: "evt_3", EventType: domain.EventInventoryUpdated})
	require.Error(t, err)

	var he *HandlerError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "evt_3", he.EventID)
	assert.Equal(t, domain.EventInventoryUpdated, he.EventType)
	assert.True(t, errors.Is(err, cause))
}

func TestDispatcher_Register_Replaces(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())

	d.Register(domain.EventOrderCreated, ports.HandlerFunc(func(context.Context, *domain.Event) error {
		return fmt.Errorf("old handler")
	}))
	d.Register(domain.EventOrderCreated, ports.HandlerFunc(func(context.Context, *domain.Event) error {
		return nil
	}))

	err := d.Dispatch(context.Background(), &domain.Event{ID: "evt_4", EventType: domain.EventOrderCreated})
	assert.NoError(t, err)
}
