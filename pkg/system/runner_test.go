package system

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerRun(t *testing.T) {
	runner := &ExecRunner{Timeout: 30 * time.Second}
	ctx := context.Background()

	t.Run("stdout", func(t *testing.T) {
		out, err := runner.Run(ctx, "sh", "-c", "echo hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", strings.TrimSpace(out))
	})

	t.Run("stderr only output is returned", func(t *testing.T) {
		out, err := runner.Run(ctx, "sh", "-c", `echo 'openjdk version "21.0.2"' >&2`)
		require.NoError(t, err)
		assert.Contains(t, out, `openjdk version "21.0.2"`)
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		_, err := runner.Run(ctx, "sh", "-c", "echo broken >&2; exit 3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sh failed")
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := runner.Run(cancelled, "sh", "-c", "echo hello")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
