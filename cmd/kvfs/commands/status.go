package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/marmos91/kvfs/internal/cli/health"
	"github.com/marmos91/kvfs/internal/cli/output"
	"github.com/marmos91/kvfs/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the server is running",
	Long: `Report whether the kvfs server is running and healthy.

The check combines the PID file with a call to the health endpoint, so it
works for both detached and foreground servers.

Examples:
  # Check status
  kvfs status

  # Check a server on a non-default API port
  kvfs status --api-port 9080

  # Structured output
  kvfs status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/kvfs/kvfs.pid)")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "Port the API server listens on")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format: table, json, or yaml")
}

// ServerStatus is the result of a status probe.
type ServerStatus struct {
	Running   bool   `json:"running" yaml:"running"`
	PID       int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message   string `json:"message" yaml:"message"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Healthy   bool   `json:"healthy" yaml:"healthy"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := collectStatus()

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
		return nil
	}
}

var errServerUnreachable = errors.New("health endpoint unreachable")

// collectStatus combines the PID file check with a health probe. The probe
// also catches foreground servers, which leave no PID file behind.
func collectStatus() ServerStatus {
	status := ServerStatus{Message: "Server is not running"}

	if pid, ok := runningPID(statusPidFile); ok {
		status.Running = true
		status.PID = pid
		status.Message = "Process is alive but the health check failed"
	}

	report, err := fetchHealth(statusAPIPort)
	switch {
	case errors.Is(err, errServerUnreachable):
		return status
	case err != nil:
		status.Running = true
		status.Message = "Server is running but health response invalid"
		return status
	}

	status.Running = true
	status.Healthy = report.Status == "healthy"
	status.StartedAt = report.Data.StartedAt
	status.Uptime = report.Data.Uptime
	if status.Healthy {
		status.Message = "Server is running and healthy"
	} else {
		status.Message = fmt.Sprintf("Server is running but unhealthy: %s", report.Error)
	}
	return status
}

// runningPID reads the PID file and checks that the process is alive.
// Signal 0 probes for existence without touching the process.
func runningPID(path string) (int, bool) {
	if path == "" {
		path = GetDefaultPidFile()
	}

	pid, err := readPidFile(path)
	if err != nil {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	return pid, process.Signal(syscall.Signal(0)) == nil
}

// fetchHealth calls the liveness endpoint on localhost.
func fetchHealth(port int) (*health.Response, error) {
	const probeTimeout = 2 * time.Second

	client := http.Client{Timeout: probeTimeout}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", port))
	if err != nil {
		return nil, errServerUnreachable
	}
	defer func() { _ = resp.Body.Close() }()

	var report health.Response
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("invalid health payload: %w", err)
	}
	return &report, nil
}

func printStatusTable(status ServerStatus) {
	row := func(label, value string) { fmt.Printf("  %-11s %s\n", label+":", value) }

	fmt.Println()
	fmt.Println("kvfs Server Status")
	fmt.Println("==================")
	fmt.Println()

	switch {
	case status.Running && status.Healthy:
		row("Status", "\033[32m● Running\033[0m")
	case status.Running:
		row("Status", "\033[33m● Running (unhealthy)\033[0m")
	default:
		row("Status", "\033[31m○ Stopped\033[0m")
	}
	if status.PID != 0 {
		row("PID", strconv.Itoa(status.PID))
	}
	if status.StartedAt != "" {
		row("Started", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		row("Uptime", timeutil.FormatUptime(status.Uptime))
	}

	fmt.Println()
	fmt.Println("  " + status.Message)
	fmt.Println()
}
