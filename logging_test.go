package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	local := time.Local
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		time.Local = local
	})
}

func TestSetupLoggingWritesFile(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "logs", "sparta.log")

	logger, closeLog := setupLogging(path)
	logger.Printf("[SYNC] hello")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[SYNC] hello")
}

func TestSetupLoggingWithoutFile(t *testing.T) {
	restoreGlobals(t)
	_, closeLog := setupLogging("")
	assert.NoError(t, closeLog())
}

func TestRunLogsErrorBeforeExit(t *testing.T) {
	restoreGlobals(t)
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "sparta.log")

	code := run([]string{"bogus", "--log-file", path, "--env-file", ""})
	assert.Equal(t, 1, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `unknown command "bogus"`)
}

func TestRunHelpAndBadFlags(t *testing.T) {
	restoreGlobals(t)
	clearConfigEnv(t)
	assert.Equal(t, 0, run([]string{"--help"}))
	assert.Equal(t, 2, run([]string{"--nope"}))
}
