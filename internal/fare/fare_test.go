package fare_test

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/railbook/train-reservation/internal/fare"
)

func TestCompute(t *testing.T) {
    total, err := fare.Compute(1050, 3)
    require.NoError(t, err)
    assert.Equal(t, int64(3150), total)
}

func TestComputeSinglePassenger(t *testing.T) {
    total, err := fare.Compute(250000, 1)
    require.NoError(t, err)
    assert.Equal(t, int64(250000), total)
}

func TestComputeRejectsZeroPassengers(t *testing.T) {
    _, err := fare.Compute(1050, 0)
    assert.ErrorIs(t, err, fare.ErrNoPassengers)
}

func TestComputeRejectsNonPositiveUnitFare(t *testing.T) {
    _, err := fare.Compute(0, 2)
    assert.ErrorIs(t, err, fare.ErrInvalidUnitFare)

    _, err = fare.Compute(-100, 2)
    assert.ErrorIs(t, err, fare.ErrInvalidUnitFare)
}

func TestComputeTatkal(t *testing.T) {
    // 2 passengers in 3A: base 2*150000 plus 2*30000 surcharge.
    total, err := fare.ComputeTatkal(150000, 2, "3A")
    require.NoError(t, err)
    assert.Equal(t, int64(360000), total)
}

func TestComputeTatkalUnknownClassFallsBackToSleeper(t *testing.T) {
    known, err := fare.ComputeTatkal(50000, 1, "SL")
    require.NoError(t, err)
    unknown, err2 := fare.ComputeTatkal(50000, 1, "XX")
    require.NoError(t, err2)
    assert.Equal(t, known, unknown)
}

func TestComputeTatkalRejectsCallerErrors(t *testing.T) {
    _, err := fare.ComputeTatkal(50000, 0, "SL")
    assert.ErrorIs(t, err, fare.ErrNoPassengers)
}

func TestDistanceCharge(t *testing.T) {
    assert.Equal(t, int64(60000), fare.DistanceCharge(25, 1200, 2))
    assert.Equal(t, int64(0), fare.DistanceCharge(0, 1200, 2))
    assert.Equal(t, int64(0), fare.DistanceCharge(25, -5, 2))
    assert.Equal(t, int64(0), fare.DistanceCharge(25, 1200, 0))
}
