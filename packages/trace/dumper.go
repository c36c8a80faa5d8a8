package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// Dumper writes one line per request and response, with optional header
// and body detail. Transport failures never reach the after hook, so only
// completed exchanges are dumped.
type Dumper struct {
	writer   io.Writer
	verbose  bool
	noColor  bool
	maxBody  int
	sanitize []string // Headers to redact
}

// DumperOption configures a Dumper.
type DumperOption func(*Dumper)

// WithWriter directs output somewhere other than stderr.
func WithWriter(w io.Writer) DumperOption {
	return func(d *Dumper) {
		d.writer = w
	}
}

// WithVerbose includes headers and a body preview in the dump.
func WithVerbose(v bool) DumperOption {
	return func(d *Dumper) {
		d.verbose = v
	}
}

// WithNoColor disables ANSI colors.
func WithNoColor(nc bool) DumperOption {
	return func(d *Dumper) {
		d.noColor = nc
	}
}

// WithMaxBody caps the body preview length in verbose mode.
func WithMaxBody(n int) DumperOption {
	return func(d *Dumper) {
		d.maxBody = n
	}
}

// WithSanitize replaces the default list of headers whose values are
// masked in the dump.
func WithSanitize(headers []string) DumperOption {
	return func(d *Dumper) {
		d.sanitize = headers
	}
}

// NewDumper creates a Dumper writing to stderr.
func NewDumper(opts ...DumperOption) *Dumper {
	d := &Dumper{
		writer:   os.Stderr,
		maxBody:  512,
		sanitize: []string{"Authorization", "Cookie", "X-Api-Key", "Api-Key"},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.noColor {
		color.NoColor = true
	}
	return d
}

// Hooks returns the before/after hook pair that dumps each exchange. Both
// pass their inputs through unchanged.
func (d *Dumper) Hooks() (fetch.BeforeHook, fetch.AfterHook) {
	before := func(ctx context.Context, url string, opts *fetch.Options) (string, *fetch.Options, error) {
		d.dumpRequest(url, opts)
		return "", nil, nil
	}
	after := func(ctx context.Context, resp *fetch.Response, body any) (any, error) {
		d.dumpResponse(resp)
		return body, nil
	}
	return before, after
}

func (d *Dumper) dumpRequest(url string, opts *fetch.Options) {
	cyan := color.New(color.FgCyan).SprintFunc()

	method := opts.Method
	if method == "" {
		method = "GET"
	}

	fmt.Fprintf(d.writer, "%s %s %s\n", cyan("→"), method, url)

	if !d.verbose {
		return
	}
	for _, name := range sortedKeys(opts.Headers) {
		fmt.Fprintf(d.writer, "  %s: %s\n", name, d.headerValue(name, opts.Headers[name]))
	}
	if len(opts.Body) > 0 {
		fmt.Fprintf(d.writer, "  %s\n", preview(opts.Body, d.maxBody))
	}
}

func (d *Dumper) dumpResponse(resp *fetch.Response) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	status := resp.Status
	switch {
	case resp.IsSuccess():
		status = green(status)
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		status = yellow(status)
	default:
		status = red(status)
	}

	fmt.Fprintf(d.writer, "← %s (%.1fms)\n", status, resp.DurationMs())

	if !d.verbose {
		return
	}
	for _, name := range sortedKeys(resp.Headers) {
		fmt.Fprintf(d.writer, "  %s: %s\n", name, d.headerValue(name, resp.Headers[name]))
	}
	if len(resp.Body) > 0 {
		fmt.Fprintf(d.writer, "  %s\n", preview(resp.Body, d.maxBody))
	}
}

func (d *Dumper) headerValue(name, value string) string {
	for _, s := range d.sanitize {
		if strings.EqualFold(name, s) {
			return "{{" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "}}"
		}
	}
	return value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func preview(body []byte, maxLen int) string {
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
