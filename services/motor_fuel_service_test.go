package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"motofuel-api/models"
)

func TestNextFuelLevel(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		capacity float64
		liters   float64
		want     float64
	}{
		{"empty tank half fill", 0, 10, 5, 50},
		{"quarter plus three liters", 25, 12, 3, 50},
		{"overfill clamps to 100", 80, 10, 5, 100},
		{"out of range current is clamped first", 140, 10, 0, 100},
		{"negative current is clamped first", -20, 10, 2, 20},
		{"zero capacity keeps level", 30, 0, 5, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, NextFuelLevel(tc.current, tc.capacity, tc.liters), 1e-9)
		})
	}
}

func TestMotorFuelService_ApplyRefuel(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 2, 1, 7, 30, 0, 0, time.UTC)}
	store := newMemoryMotorcycleStore(
		models.Motorcycle{ID: "declared", UserID: "user-1", TankCapacity: ptr(8.0), CurrentFuelLevel: 25},
		models.Motorcycle{ID: "undeclared", UserID: "user-1", CurrentFuelLevel: 20},
	)
	svc := NewMotorFuelService(store, 15, clock)
	ctx := context.Background()

	t.Run("uses declared capacity", func(t *testing.T) {
		svc.ApplyRefuel(ctx, "declared", 4)
		moto, err := store.FindByID(ctx, "declared")
		require.NoError(t, err)
		assert.InDelta(t, 75.0, moto.CurrentFuelLevel, 1e-9)
		require.NotNil(t, moto.AnalyticsUpdatedAt)
		assert.Equal(t, clock.Now(), *moto.AnalyticsUpdatedAt)
	})

	t.Run("falls back to configured default", func(t *testing.T) {
		svc.ApplyRefuel(ctx, "undeclared", 6)
		moto, err := store.FindByID(ctx, "undeclared")
		require.NoError(t, err)
		assert.InDelta(t, 60.0, moto.CurrentFuelLevel, 1e-9)
	})

	t.Run("missing motorcycle is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { svc.ApplyRefuel(ctx, "ghost", 6) })
	})

	t.Run("write failure is swallowed", func(t *testing.T) {
		store.updateErr = errors.New("lock wait timeout")
		defer func() { store.updateErr = nil }()
		assert.NotPanics(t, func() { svc.ApplyRefuel(ctx, "declared", 1) })
	})
}
