package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/marmos91/kvfs/pkg/config"
	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show or follow the server log",
	Long: `Display and optionally follow the kvfs server logs.

The log file is taken from 'logging.output' in the configuration when it
names a file. When the server logs to stdout or stderr, this command falls
back to the daemon log file written by a background 'kvfs start'.

Examples:
  # Last 100 lines (the default)
  kvfs logs

  # Last 50 lines
  kvfs logs -n 50

  # Stream new entries as they are written
  kvfs logs -f

  # Only entries at or after a given time
  kvfs logs --since "2026-01-15T10:00:00Z"

  # Follow, starting from the last 20 lines
  kvfs logs -f -n 20`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep the file open and stream appended lines")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "How many trailing lines to print")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Drop entries older than this RFC3339 timestamp")
}

func runLogs(cmd *cobra.Command, args []string) error {
	logPath, err := resolveLogFile()
	if err != nil {
		return err
	}

	var since time.Time
	if logsSince != "" {
		since, err = time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("--since must be an RFC3339 timestamp: %w", err)
		}
	}

	if err := printTail(logPath, logsLines, since); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}
	return followLog(logPath)
}

// resolveLogFile picks the log file to read: the configured file output when
// one is set, otherwise the daemon log written by a background 'kvfs start'.
func resolveLogFile() (string, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return "", err
	}

	out := cfg.Logging.Output
	if out != "stdout" && out != "stderr" {
		if _, err := os.Stat(out); err != nil {
			return "", fmt.Errorf("log file not found: %s\nThe server may not have started yet or is logging elsewhere", out)
		}
		return out, nil
	}

	daemonLog := GetDefaultLogFile()
	if _, err := os.Stat(daemonLog); err == nil {
		return daemonLog, nil
	}

	return "", fmt.Errorf("server is configured to log to %s and no daemon log exists at %s\n"+
		"Set 'logging.output' to a file path or start the server in the background with 'kvfs start'",
		out, daemonLog)
}

// printTail prints the last n lines of the log, skipping entries older
// than since. A ring buffer keeps memory flat on large files.
func printTail(path string, n int, since time.Time) error {
	if n <= 0 {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ring := make([]string, 0, n)
	oldest := 0
	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if ts := extractTimestamp(line); !ts.IsZero() && ts.Before(since) {
				continue
			}
		}
		if len(ring) < n {
			ring = append(ring, line)
			continue
		}
		ring[oldest] = line
		oldest = (oldest + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for i := range ring {
		fmt.Println(ring[(oldest+i)%len(ring)])
	}
	return nil
}

// followLog watches the file and prints lines as they are appended, until
// the user interrupts.
func followLog(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	// Only entries appended from now on are followed.
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)...\n", path)

	reader := bufio.NewReader(file)
	var pending strings.Builder
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				copyNewLines(reader, &pending)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("log watcher: %w", err)
		}
	}
}

// copyNewLines prints every complete line the reader has buffered. A line
// written in several chunks accumulates in pending until its newline
// arrives, so partial writes are never lost.
func copyNewLines(reader *bufio.Reader, pending *strings.Builder) {
	for {
		chunk, err := reader.ReadString('\n')
		pending.WriteString(chunk)
		if err != nil {
			return
		}
		fmt.Print(pending.String())
		pending.Reset()
	}
}

// extractTimestamp pulls the timestamp out of a log line when it has one.
//
// Text-format lines start with "2006-01-02 15:04:05" in local time; JSON
// lines carry an RFC3339 "time" field.
func extractTimestamp(line string) time.Time {
	const textLayout = "2006-01-02 15:04:05"
	if len(line) >= len(textLayout) {
		if t, err := time.ParseInLocation(textLayout, line[:len(textLayout)], time.Local); err == nil {
			return t
		}
	}

	const jsonTimeKey = `"time":"`
	if idx := strings.Index(line, jsonTimeKey); idx >= 0 {
		start := idx + len(jsonTimeKey)
		for i := start; i < len(line) && i < start+40; i++ {
			if line[i] == '"' {
				if t, err := time.Parse(time.RFC3339Nano, line[start:i]); err == nil {
					return t
				}
				break
			}
		}
	}

	return time.Time{}
}
