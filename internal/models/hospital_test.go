package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestDeriveLitsDisponibles(t *testing.T) {
	t.Run("both operands present", func(t *testing.T) {
		h := Hospital{LitsTotales: intPtr(100), LitsOccupees: intPtr(30)}
		h.DeriveLitsDisponibles()
		assert.Equal(t, 70, *h.LitsDisponibles)
	})

	t.Run("overwrites a stale value", func(t *testing.T) {
		h := Hospital{LitsTotales: intPtr(50), LitsOccupees: intPtr(20), LitsDisponibles: intPtr(999)}
		h.DeriveLitsDisponibles()
		assert.Equal(t, 30, *h.LitsDisponibles)
	})

	t.Run("missing total keeps supplied value", func(t *testing.T) {
		h := Hospital{LitsOccupees: intPtr(20), LitsDisponibles: intPtr(12)}
		h.DeriveLitsDisponibles()
		assert.Equal(t, 12, *h.LitsDisponibles)
	})

	t.Run("missing occupied keeps nil", func(t *testing.T) {
		h := Hospital{LitsTotales: intPtr(50)}
		h.DeriveLitsDisponibles()
		assert.Nil(t, h.LitsDisponibles)
	})
}
