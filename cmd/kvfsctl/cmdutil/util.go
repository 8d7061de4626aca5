// Package cmdutil provides shared plumbing for kvfsctl commands: resolving
// an authenticated API client from flags or stored credentials, and
// rendering results in the format selected by --output.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/kvfs/internal/cli/credentials"
	"github.com/marmos91/kvfs/internal/cli/output"
	"github.com/marmos91/kvfs/internal/cli/prompt"
	"github.com/marmos91/kvfs/pkg/apiclient"
)

// Flags holds the global flag values synced by the root command before any
// subcommand runs.
var Flags = &GlobalFlags{}

// GlobalFlags mirrors the persistent flags of the root command.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
	Verbose   bool
}

// GetOutputFormatParsed returns the Format selected by --output.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled reports whether --no-color was given.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// IsVerbose reports whether --verbose was given.
func IsVerbose() bool {
	return Flags.Verbose
}

// OpenCredentials opens the on-disk credential store.
func OpenCredentials() (*credentials.Store, error) {
	store, err := credentials.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	return store, nil
}

// GetAuthenticatedClient builds an API client for the current session.
// Explicit --server and --token flags win over the stored context; when only
// the stored context is available and its access token has expired, the
// refresh token is redeemed and the new pair persisted before returning.
func GetAuthenticatedClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token), nil
	}

	store, err := OpenCredentials()
	if err != nil {
		return nil, err
	}
	ctx, err := store.GetCurrentContext()
	if err != nil {
		return nil, fmt.Errorf("not logged in. Run 'kvfsctl login' first")
	}

	url := ctx.ServerURL
	if Flags.ServerURL != "" {
		url = Flags.ServerURL
	}
	if url == "" {
		return nil, fmt.Errorf("no server URL configured. Run 'kvfsctl login --server <url>' first")
	}

	tok := ctx.AccessToken
	switch {
	case Flags.Token != "":
		tok = Flags.Token
	case ctx.IsExpired() && ctx.HasRefreshToken():
		if tok, err = refreshSession(store, url, ctx.RefreshToken); err != nil {
			return nil, err
		}
	}
	if tok == "" {
		return nil, fmt.Errorf("no access token. Run 'kvfsctl login' first")
	}

	return apiclient.New(url).WithToken(tok), nil
}

// refreshSession redeems the refresh token and persists the new pair so the
// next command skips the round trip.
func refreshSession(store *credentials.Store, url, refreshToken string) (string, error) {
	tokens, err := apiclient.New(url).RefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("session expired. Run 'kvfsctl login' to re-authenticate")
	}
	if err := store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to save refreshed tokens: %w", err)
	}
	if IsVerbose() {
		fmt.Fprintln(os.Stderr, "Refreshed expired access token")
	}
	return tokens.AccessToken, nil
}

// renderEncoded writes data as JSON or YAML when format asks for a
// structured encoding. It reports false when the caller should render the
// table form instead.
func renderEncoded(w io.Writer, format output.Format, data any) (bool, error) {
	switch format {
	case output.FormatJSON:
		return true, output.PrintJSON(w, data)
	case output.FormatYAML:
		return true, output.PrintYAML(w, data)
	default:
		return false, nil
	}
}

// PrintOutput renders a listing. Structured formats receive data as-is;
// table format prints emptyMsg for an empty listing and the rendered table
// otherwise.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, table output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if done, err := renderEncoded(w, format, data); done {
		return err
	}
	if isEmpty {
		_, _ = fmt.Fprintln(w, emptyMsg)
		return nil
	}
	return output.PrintTable(w, table)
}

// PrintResource renders a single resource in the selected format.
func PrintResource(w io.Writer, data any, table output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if done, err := renderEncoded(w, format, data); done {
		return err
	}
	return output.PrintTable(w, table)
}

// PrintResourceWithSuccess renders the outcome of a mutation: structured
// formats receive the resulting resource, table format a success line.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if done, err := renderEncoded(w, format, data); done {
		return err
	}
	PrintSuccess(successMsg)
	return nil
}

// statusPrinter returns a Printer for table-mode status lines, or nil when
// the output format is structured and status chatter must stay out of the
// stream.
func statusPrinter() *output.Printer {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return nil
	}
	return output.NewPrinter(os.Stdout, !IsColorDisabled())
}

// PrintSuccess prints a success line in table format, and nothing otherwise.
func PrintSuccess(msg string) {
	if p := statusPrinter(); p != nil {
		p.Success(msg)
	}
}

// PrintSuccessWithInfo prints a success line followed by plain info lines,
// table format only.
func PrintSuccessWithInfo(msg string, infoLines ...string) {
	p := statusPrinter()
	if p == nil {
		return
	}
	p.Success(msg)
	for _, line := range infoLines {
		p.Println(line)
	}
}

// RunDeleteWithConfirmation asks before deleting a named resource (unless
// force is set), runs deleteFn, and reports the outcome.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	return nil
}

// HandleAbort turns a Ctrl+C during an interactive prompt into a clean
// "Aborted." line instead of an error exit. Other errors pass through.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// BoolToYesNo renders a boolean as "yes" or "no" for table cells.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr substitutes fallback for an empty table cell value.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
