package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	t.Run("exposes the config flag", func(t *testing.T) {
		flag := rootCmd.Flags().Lookup("config")

		require.NotNil(t, flag)
		assert.Equal(t, "", flag.DefValue)
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		assert.Error(t, rootCmd.Args(rootCmd, []string{"extra"}))
	})
}

func TestServe(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		err := serve(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})

	t.Run("invalid server mode fails before gin is configured", func(t *testing.T) {
		t.Setenv("IMGCLS_SERVER_MODE", "production")

		err := serve(context.Background(), "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "server mode")
	})

	t.Run("unknown model", func(t *testing.T) {
		t.Setenv("IMGCLS_MODEL_NAME", "resnet")

		err := serve(context.Background(), "")

		assert.Error(t, err)
	})
}
