package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const evkBoard = "../../boards/evkmimxrt1170.yaml"

const cyclicBoard = `
board: evk
steps:
  - id: a
    action: mpu.configure
    depends_on: [b]
  - id: b
    action: mpu.configure
    depends_on: [a]
`

const danglingBoard = `
board: evk
steps:
  - id: gate:gpio1
    action: clock.enable
    params: {gate: gpio1}
    depends_on: [reset:gpio1]
`

// executeCommand runs rootCmd with args and returns what it wrote to
// stdout and stderr. Flags are reset first since the command tree is global.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeBoard(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearEnv keeps BRINGUP_* settings from the host out of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BRINGUP_LOG_LEVEL", "BRINGUP_LOG_FORMAT", "BRINGUP_LOG_BACKEND",
		"BRINGUP_METRICS_FILE", "BRINGUP_NO_COLOR", "BRINGUP_RETRIES",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
