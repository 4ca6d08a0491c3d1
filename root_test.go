package main

import (
	"errors"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd-dashboard/utils"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "summary", "export", "snapshot"} {
		assert.Contains(t, names, want)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, f)
	assert.Equal(t, "v", f.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("no-color"))
}

func TestCommandFlags(t *testing.T) {
	assert.NotNil(t, serveCmd.Flags().Lookup("addr"))
	assert.NotNil(t, exportCmd.Flags().Lookup("postgres"))
}

func TestPersistentPreRunNoColor(t *testing.T) {
	prevNoColor, prevFlag := color.NoColor, noColor
	t.Cleanup(func() { color.NoColor, noColor = prevNoColor, prevFlag })

	color.NoColor = false
	require.NoError(t, rootCmd.PersistentFlags().Set("no-color", "true"))
	rootCmd.PersistentPreRun(rootCmd, nil)

	require.NotNil(t, cfg)
	require.NotNil(t, logger)
	assert.True(t, color.NoColor)
}

type fakeCounter struct {
	n   int
	err error
}

func (f fakeCounter) Count() (int, error) { return f.n, f.err }

func TestVerifyMirror(t *testing.T) {
	logger = utils.NewLoggerTo(io.Discard, io.Discard)

	assert.NoError(t, verifyMirror(fakeCounter{n: 5}, 5))

	err := verifyMirror(fakeCounter{n: 3}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds 3 complaints, expected 5")

	boom := errors.New("postgres: count: no connection")
	assert.ErrorIs(t, verifyMirror(fakeCounter{err: boom}, 5), boom)
}
