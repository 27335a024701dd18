// Command projektor is a paged document viewer for the terminal.
//
// It opens a document with one of the builtin renderers, shows the first
// page and then follows key presses: arrows scroll, PageUp/PageDown/Home/End
// turn pages, + and - zoom, Space toggles the fit-to-window zoom, digits
// followed by Enter jump to a page and Escape quits. With -out the composed
// window is written as PNG instead.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/projektor"
	"github.com/gogpu/projektor/backend/builtin"
	"github.com/gogpu/projektor/internal/termview"
)

// EnvRenderer names the renderer used when -r is not given.
const EnvRenderer = "PROJEKTOR_RENDERER"

// Default window size.
const (
	defaultWidth  = 800
	defaultHeight = 600
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	optimal  bool
	renderer string
	size     string
	zoom     string
	dpi      float64
	out      string
	digest   bool
	verbose  bool
	filename string
}

// usage prints the help text with the supported renderers.
func usage(w io.Writer, renderers []string) {
	fmt.Fprint(w, "Paged Document Viewer\n\n")
	fmt.Fprint(w, "Usage: projektor [options] filename\n\n")
	fmt.Fprint(w, "Options:\n\n")
	fmt.Fprint(w, "  -o, --optimal                    Use optimal zoom factor.\n")
	fmt.Fprint(w, "  -r, --renderer <renderer>        Set document renderer.\n")
	fmt.Fprint(w, "  -s, --size     <width>x<height>  Set viewer size.\n")
	fmt.Fprint(w, "  -z, --zoom     <zoom>            Set zoom factor.\n")
	fmt.Fprint(w, "      --dpi      <dpi>             Set scan resolution.\n")
	fmt.Fprint(w, "      --out      <file.png>        Write the window to a PNG file and exit.\n")
	fmt.Fprint(w, "      --digest                     Print the page digest and exit.\n")
	fmt.Fprint(w, "  -v, --verbose                    Log to standard error.\n")
	fmt.Fprint(w, "  -h, --help                       Print usage information.\n\n")
	fmt.Fprint(w, "Supported renderers:\n\n")
	for _, name := range renderers {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w)
}

// parseArgs parses flags and the file name. Flags may follow the file name.
func parseArgs(args []string, stdout, stderr io.Writer, renderers []string) (*options, error) {
	o := &options{renderer: os.Getenv(EnvRenderer)}

	fs := flag.NewFlagSet("projektor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stdout, renderers) }
	for _, name := range []string{"o", "optimal"} {
		fs.BoolVar(&o.optimal, name, false, "use optimal zoom factor")
	}
	for _, name := range []string{"r", "renderer"} {
		fs.StringVar(&o.renderer, name, o.renderer, "document renderer")
	}
	for _, name := range []string{"s", "size"} {
		fs.StringVar(&o.size, name, "", "viewer size WIDTHxHEIGHT")
	}
	for _, name := range []string{"z", "zoom"} {
		fs.StringVar(&o.zoom, name, "", "zoom factor")
	}
	for _, name := range []string{"v", "verbose"} {
		fs.BoolVar(&o.verbose, name, false, "log to standard error")
	}
	fs.Float64Var(&o.dpi, "dpi", 0, "scan resolution")
	fs.StringVar(&o.out, "out", "", "write the window to a PNG file")
	fs.BoolVar(&o.digest, "digest", false, "print the page digest")

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		if o.filename != "" {
			fs.Usage()
			return nil, errUsage
		}
		o.filename = fs.Arg(0)
		rest = fs.Args()[1:]
	}
	if o.filename == "" {
		fs.Usage()
		return nil, errUsage
	}
	return o, nil
}

var (
	errUsage       = errors.New("invalid usage")
	errInvalidSize = errors.New("invalid size")
	errInvalidZoom = errors.New("invalid zoom factor")
)

// parseSize parses WIDTHxHEIGHT. The height must leave room for the status
// bar.
func parseSize(s string) (image.Point, error) {
	if s == "" {
		return image.Pt(defaultWidth, defaultHeight), nil
	}
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return image.Point{}, fmt.Errorf("%w %q", errInvalidSize, s)
	}
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(hs)
	if werr != nil || herr != nil || w < 1 || h <= termview.StatusHeight {
		return image.Point{}, fmt.Errorf("%w %q", errInvalidSize, s)
	}
	return image.Pt(w, h), nil
}

// parseZoom parses a zoom factor in [MinZoom, MaxZoom].
func parseZoom(s string) (float64, error) {
	if s == "" {
		return projektor.DefaultZoom, nil
	}
	z, err := strconv.ParseFloat(s, 32)
	if err != nil || z < projektor.MinZoom || z > projektor.MaxZoom {
		return 0, fmt.Errorf("%w %q", errInvalidZoom, s)
	}
	return z, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	renderers := builtin.NewRegistry(builtin.Config{}).Names()

	o, err := parseArgs(args, stdout, stderr, renderers)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}

	fail := func(err error) int {
		fmt.Fprintf(stderr, "projektor: %v\n", err)
		return 1
	}

	size, err := parseSize(o.size)
	if err != nil {
		return fail(err)
	}
	zoom, err := parseZoom(o.zoom)
	if err != nil {
		return fail(err)
	}

	if o.verbose {
		projektor.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	reg := builtin.NewRegistry(builtin.Config{ScanDPI: o.dpi})
	name, err := reg.Resolve(o.renderer)
	if err != nil {
		return fail(fmt.Errorf("invalid renderer: %w", err))
	}
	b, err := reg.Lookup(name)
	if err != nil {
		return fail(err)
	}

	in, isFile := stdin.(*os.File)
	interactive := isFile && o.out == "" && !o.digest && termview.IsTerminal(in)

	viewport := image.Pt(size.X, size.Y-termview.StatusHeight)
	status := termview.New(viewport,
		termview.WithOutput(stdout),
		termview.WithInteractive(interactive))
	v := projektor.NewViewer(
		projektor.WithViewport(viewport.X, viewport.Y),
		projektor.WithZoom(zoom),
		projektor.WithPresenter(status))

	if err := v.Open(b, o.filename); err != nil {
		_ = status.Flush()
		return fail(err)
	}
	defer func() { _ = v.Close() }() // failures are logged by Close

	if err := v.GotoPage(1); err != nil {
		_ = status.Flush()
		return fail(err)
	}
	if o.optimal {
		if err := v.SetOptimalZoom(); err != nil {
			_ = status.Flush()
			return fail(err)
		}
	}
	if err := status.Flush(); err != nil {
		return fail(err)
	}

	if o.digest {
		if s := v.Surface(); s != nil {
			fmt.Fprintf(stdout, "%x\n", s.Digest())
		}
	}
	if o.out != "" {
		if err := writeSnapshot(status, o.out); err != nil {
			return fail(err)
		}
	}
	if o.digest || o.out != "" {
		return 0
	}

	if interactive {
		restore, err := termview.RawMode(in)
		if err != nil {
			return fail(err)
		}
		defer func() {
			restore()
			fmt.Fprintln(stdout)
		}()
	}
	if err := termview.NewSession(v, status).Run(stdin); err != nil {
		return fail(err)
	}
	return 0
}

func writeSnapshot(status *termview.Presenter, path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := status.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
