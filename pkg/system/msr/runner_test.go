//go:build linux

package msr

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("skipping: no shell available: %v", err)
	}
	return sh
}

func TestExecRunner_CapturesOutput(t *testing.T) {
	sh := requireShell(t)
	r := NewExecRunner(5 * time.Second)
	res, err := r.Run(context.Background(), sh, "-c", "echo f5c00000; echo oops >&2")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "f5c00000\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	sh := requireShell(t)
	res, err := NewExecRunner(5*time.Second).Run(context.Background(), sh, "-c", "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunner_Timeout(t *testing.T) {
	sh := requireShell(t)
	start := time.Now()
	_, err := NewExecRunner(100*time.Millisecond).Run(context.Background(), sh, "-c", "sleep 5")
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecRunner_NotFound(t *testing.T) {
	_, err := NewExecRunner(time.Second).Run(context.Background(), "definitely-not-a-real-wrmsr-binary")
	require.ErrorIs(t, err, ErrToolNotFound)

	_, err = NewExecRunner(time.Second).Run(context.Background(), filepath.Join(t.TempDir(), "rdmsr"))
	require.ErrorIs(t, err, ErrToolNotFound)
}

func TestExecRunner_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, (&ExecRunner{}).timeout())
	var nilRunner *ExecRunner
	assert.Equal(t, DefaultTimeout, nilRunner.timeout())
	assert.Equal(t, time.Second, NewExecRunner(time.Second).timeout())
}

func TestExecRunner_ParentCancel(t *testing.T) {
	sh := requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExecRunner(5*time.Second).Run(ctx, sh, "-c", "true")
	require.ErrorIs(t, err, context.Canceled)
}
