package pnr_test

import (
    "context"
    "errors"
    "regexp"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/railbook/train-reservation/internal/pnr"
)

func TestGenerateUniqueCodeShape(t *testing.T) {
    code, err := pnr.GenerateUniqueCode(context.Background(), func(ctx context.Context, c string) (bool, error) {
        return false, nil
    })
    require.NoError(t, err)
    assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{9}$`), code)
}

func TestGenerateUniqueCodeRetriesOnCollision(t *testing.T) {
    calls := 0
    var candidates []string
    code, err := pnr.GenerateUniqueCode(context.Background(), func(ctx context.Context, c string) (bool, error) {
        calls++
        candidates = append(candidates, c)
        return calls <= 2, nil // first two candidates are taken
    })
    require.NoError(t, err)
    assert.Equal(t, 3, calls)
    assert.Equal(t, candidates[2], code)
}

func TestGenerateUniqueCodePropagatesCheckError(t *testing.T) {
    boom := errors.New("store down")
    _, err := pnr.GenerateUniqueCode(context.Background(), func(ctx context.Context, c string) (bool, error) {
        return false, boom
    })
    assert.ErrorIs(t, err, boom)
}

func TestGenerateUniqueCodeExhaustsEventually(t *testing.T) {
    calls := 0
    _, err := pnr.GenerateUniqueCode(context.Background(), func(ctx context.Context, c string) (bool, error) {
        calls++
        return true, nil // everything is taken
    })
    assert.ErrorIs(t, err, pnr.ErrExhausted)
    assert.Equal(t, 100, calls)
}

func TestGenerateSeatLabel(t *testing.T) {
    sleeper := regexp.MustCompile(`^S([1-9]|10)-([1-9]|[1-6][0-9]|7[0-2])$`)
    for i := 0; i < 50; i++ {
        assert.Regexp(t, sleeper, pnr.GenerateSeatLabel("SL"))
    }

    ac3 := regexp.MustCompile(`^B[1-6]-([1-9]|[1-5][0-9]|6[0-4])$`)
    for i := 0; i < 50; i++ {
        assert.Regexp(t, ac3, pnr.GenerateSeatLabel("3A"))
    }
}

func TestGenerateSeatLabelUnknownClassUsesSleeperSpace(t *testing.T) {
    sleeper := regexp.MustCompile(`^S([1-9]|10)-([1-9]|[1-6][0-9]|7[0-2])$`)
    for i := 0; i < 50; i++ {
        assert.Regexp(t, sleeper, pnr.GenerateSeatLabel("NOPE"))
    }
}
