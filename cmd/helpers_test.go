package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapway/valuation-engine/internal/config"
	"github.com/tapway/valuation-engine/internal/refdata"
	"github.com/tapway/valuation-engine/internal/valuation"
)

func defaultTestEngineConfig() config.EngineConfig {
	return valuation.DefaultEngineConfig()
}

func builtinTestEngine(t *testing.T) *valuation.Engine {
	t.Helper()

	snap, err := refdata.Default()
	require.NoError(t, err)

	eng, err := valuation.New(snap, defaultTestEngineConfig())
	require.NoError(t, err)
	return eng
}
