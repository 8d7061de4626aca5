package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	stopPidFile string
	stopForce   bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running server",
	Long: `Signal a running kvfs server to shut down.

The default SIGTERM lets in-flight requests drain. --force sends SIGKILL
instead, which stops the process immediately.

Examples:
  # Graceful shutdown
  kvfs stop

  # A server started with a custom PID file
  kvfs stop --pid-file /var/run/kvfs.pid

  # Kill without draining
  kvfs stop --force`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/kvfs/kvfs.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Send SIGKILL instead of SIGTERM")
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath := stopPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pid, err := readPidFile(pidPath)
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	sig, sigName := syscall.SIGTERM, "SIGTERM"
	if stopForce {
		sig, sigName = syscall.SIGKILL, "SIGKILL"
	}

	fmt.Printf("Sending %s to process %d\n", sigName, pid)
	err = process.Signal(sig)
	switch {
	case errors.Is(err, os.ErrProcessDone):
		fmt.Println("Server already stopped")
		_ = os.Remove(pidPath)
		return nil
	case err != nil:
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	if stopForce {
		fmt.Println("Server killed")
	} else {
		fmt.Println("Server will drain connections and exit")
	}
	return nil
}

// readPidFile reads and parses a PID file left by a detached 'kvfs start'.
func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("no PID file at %s\n\nIs the server running?", path)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("malformed PID file %s: %q", path, text)
	}
	return pid, nil
}
