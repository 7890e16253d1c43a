package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/on-the-ground/memoized_go/internal/cli"
	"github.com/on-the-ground/memoized_go/observe"
	"github.com/on-the-ground/memoized_go/signature"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := cli.New().WithOutput(&stdout, &stderr).WithLogger(zaptest.NewLogger(t))
	err := app.ExecuteWithArgs(context.Background(), args)
	return stdout.String(), err
}

func TestHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "describe")
	assert.Contains(t, out, "demo")
}

func TestDescribe(t *testing.T) {
	out, err := run(t, "describe", "req:a", "rest:xs", "keyreq:k", "key:o=1", "keyrest:opts", "opt:b=10")
	require.NoError(t, err)
	assert.Contains(t, out, "original: (a, b = 10, *xs, k:, o: 1, **opts)")
	assert.Contains(t, out, "memoized: (a, b = <omitted>, *xs, k:, o: <omitted>, **opts)")
	assert.Contains(t, out, "arity:    -3")
}

func TestDescribeUsesConfiguredSignature(t *testing.T) {
	out, err := run(t, "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "arity:    -2")
}

func TestDescribeRejectsCallback(t *testing.T) {
	_, err := run(t, "describe", "req:a", "block:fn")
	assert.ErrorIs(t, err, signature.ErrUnsupportedParameter)

	_, err = run(t, "describe", "rest:a", "rest:b")
	assert.ErrorIs(t, err, signature.ErrInvalidSignature)
}

func TestDemo(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "15")
	assert.Contains(t, lines[0], "computed")
	assert.Contains(t, lines[1], "cached")
	assert.Contains(t, lines[2], "16")
	assert.Contains(t, lines[2], "computed")
	assert.Contains(t, lines[3], "cached")
	assert.Contains(t, lines[4], "cleared")
	assert.Contains(t, lines[5], "computed")
	assert.Equal(t, "computations: 3, cached keys: 1", lines[6])
}

func TestDemoWithMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memoctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics:\n  enabled: true\n  meter_name: memoctl-demo\n"), 0o600))

	out, err := run(t, "--config", path, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "scope memoctl-demo\n")
	assert.Contains(t, out, observe.MetricHits+" 2")
	assert.Contains(t, out, observe.MetricMisses+" 3")
	assert.Contains(t, out, observe.MetricInvalidations+" 1")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "describe")
	assert.Error(t, err)
}
