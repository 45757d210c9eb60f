package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	registerFlags(cmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))

	return cmd
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(newTestCmd(t))
		require.NoError(t, err)
		require.Equal(t, ":8088", cfg.NET.Addr)
		require.Equal(t, "./src", cfg.Files.Root)
	})

	t.Run("flags override the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sonnet.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"NET": {"Addr": ":9000"}, "Files": {"Root": "/srv"}}`), 0o644))

		cfg, err := loadConfig(newTestCmd(t,
			"--config", path, "--root", "/var/www", "--read-timeout", "3s", "--proxy-protocol",
		))
		require.NoError(t, err)
		require.Equal(t, ":9000", cfg.NET.Addr)
		require.Equal(t, "/var/www", cfg.Files.Root)
		require.Equal(t, 3*time.Second, cfg.NET.ReadTimeout.Std())
		require.True(t, cfg.NET.ProxyProtocol)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := loadConfig(newTestCmd(t, "--addr", ""))
		require.Error(t, err)
	})
}

func TestRoutesCommand(t *testing.T) {
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"routes", "--root", "/srv/site"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	require.Contains(t, out.String(), filepath.Join("/srv/site", "poem", "sonnet-18.html"))
	require.Contains(t, out.String(), "https://www.youtube.com/watch?v=LfaMVlDaQ24&ab_channel=freeCodeCamp.org")
	require.True(t, strings.HasPrefix(lines[0], "/ "))
}
