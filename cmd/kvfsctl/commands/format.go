package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/marmos91/kvfs/pkg/apiclient"
)

// formatMode renders the POSIX permission bits in ls style, with a leading
// "d" for directories.
func formatMode(info *apiclient.FileInfo) string {
	perm := os.FileMode(info.Mode & 0o777)
	if info.IsDir() {
		return "d" + perm.String()[1:]
	}
	return perm.String()
}

// formatSize renders a byte count in human-readable binary units.
func formatSize(size uint64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := uint64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// formatTimestamp renders a unix timestamp for table display.
func formatTimestamp(sec int64) string {
	return time.Unix(sec, 0).Format("2006-01-02 15:04:05")
}

// joinRemotePath joins a directory path and an entry name.
func joinRemotePath(dir, name string) string {
	if dir == "" || dir == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}
