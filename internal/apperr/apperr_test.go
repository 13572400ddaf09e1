package apperr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ourstory/scrapbook/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestStoreWrapsKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store("recipes.select", cause)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrValidationFailed)
	require.Contains(t, err.Error(), "recipes.select")
}

func TestValidation(t *testing.T) {
	err := Validation("id is required")
	require.ErrorIs(t, err, ErrValidationFailed)
	require.Contains(t, err.Error(), "id is required")
}

func TestBestEffortLog(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.SetOutput(&buf)
	defer logger.Restore(prev)
	logger.Init("info")

	log := logger.Named("test")
	Done("asset.delete").Log(log)
	require.Empty(t, buf.String())

	out := Failed("asset.delete", Asset("remove", errors.New("boom")))
	require.True(t, out.Failed())
	require.ErrorIs(t, out.Err, ErrAssetOperationFailed)
	out.Log(log)
	require.Contains(t, buf.String(), "asset.delete failed (ignored)")
}
