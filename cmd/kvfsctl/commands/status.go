package commands

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/internal/cli/health"
	"github.com/marmos91/kvfs/internal/cli/output"
	"github.com/marmos91/kvfs/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the connected server's health",
	Long: `Probe the health endpoint of the current context's server.

Reports reachability, uptime, and any error the server is sitting on.

Examples:
  # Human-readable summary
  kvfsctl status

  # JSON for monitoring scripts
  kvfsctl status -o json`,
	RunE: runStatus,
}

// ServerStatus is the health summary the status command renders.
type ServerStatus struct {
	Server    string `json:"server" yaml:"server"`
	Status    string `json:"status" yaml:"status"`
	Healthy   bool   `json:"healthy" yaml:"healthy"`
	Service   string `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := cmdutil.OpenCredentials()
	if err != nil {
		return err
	}
	ctx, err := store.GetCurrentContext()
	if err != nil {
		return fmt.Errorf("not logged in. Run 'kvfsctl login' first")
	}

	serverURL := cmp.Or(cmdutil.Flags.ServerURL, ctx.ServerURL)
	if serverURL == "" {
		return fmt.Errorf("no server configured. Run 'kvfsctl login' first")
	}

	status := probeHealth(serverURL)

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}
	return nil
}

// probeHealth hits the server's /health endpoint. An unreachable server
// is a result, not an error: the command still renders a status block.
func probeHealth(serverURL string) ServerStatus {
	const probeTimeout = 5 * time.Second

	status := ServerStatus{Server: serverURL, Status: "unreachable"}

	client := http.Client{Timeout: probeTimeout}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	var report health.Response
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		status.Status = "unknown"
		status.Error = "invalid health payload"
		return status
	}

	status.Status = report.Status
	status.Healthy = report.Status == "healthy"
	status.Service = report.Data.Service
	status.StartedAt = report.Data.StartedAt
	status.Uptime = report.Data.Uptime
	if report.Error != "" {
		status.Error = report.Error
	}
	return status
}

func printStatusTable(status ServerStatus) {
	row := func(label, value string) { fmt.Printf("  %-11s %s\n", label+":", value) }

	fmt.Println()
	fmt.Println("kvfs Server Status")
	fmt.Println("==================")
	fmt.Println()
	row("Server", status.Server)

	switch {
	case status.Healthy:
		row("Status", "\033[32m● "+status.Status+"\033[0m")
	case status.Status == "unreachable":
		row("Status", "\033[31m○ "+status.Status+"\033[0m")
	default:
		row("Status", "\033[33m● "+status.Status+"\033[0m")
	}

	if status.Service != "" {
		row("Service", status.Service)
	}
	if status.StartedAt != "" {
		row("Started", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		row("Uptime", timeutil.FormatUptime(status.Uptime))
	}
	if status.Error != "" {
		row("Error", status.Error)
	}
	fmt.Println()
}
