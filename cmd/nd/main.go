// Command nd streams a file (or several) through a pipeline of byte and
// segment transforms, optionally rendering the result as hex text or
// writing it back through a patch-back collaborator. See the options
// below; there is no flag framework here, matching the rest of this
// codebase's CLI entry points.
package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"nd/internal/bytestream"
	"nd/internal/hextext"
	"nd/internal/mapper"
	"nd/internal/ndlog"
	"nd/internal/ndproc"
	"nd/internal/pipeline"
	"nd/internal/segstream"
	"nd/internal/walkexpr"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, pipeline.RenderError(err))
		os.Exit(1)
	}
}

// options collects everything parsed off the command line before any
// byte is touched. Errors in a single flag's value are raised while
// building this struct; checks that combine options with the inputs
// being run (--inplace with --patch-back or with stdin, --patch-back
// without a slicer, a --patch/--guide file that is not text) are raised
// later, by run and buildResult.
type options struct {
	files []string

	zipWord   int
	catForced bool

	byteNodes []pipeline.Node
	patchFile string

	slicer    pipeline.Node
	guideFile string

	segNodes []pipeline.Node

	outBase  int64
	outWidth int64

	inplace   bool
	patchBack string
	pagerCmd  string

	verbosity int
	logFile   string
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("nd: %w", err)
	}

	logger, rotator := ndlog.Setup(ndlog.Options{Verbosity: opts.verbosity, LogFile: opts.logFile})
	if rotator != nil {
		defer rotator.Close()
	}
	logger.Debug("nd.start", "files", opts.files, "inplace", opts.inplace)

	fs := afero.NewOsFs()
	stdinUsed := false

	if opts.inplace {
		if opts.patchBack != "" {
			return fmt.Errorf("nd: --inplace and --patch-back are mutually exclusive")
		}
		for _, path := range opts.files {
			if path == "-" || path == "/dev/stdin" {
				return fmt.Errorf("nd: --inplace cannot run against stdin")
			}
			err := pipeline.ProcessInPlace(fs, path, func(src bytestream.ByteStream) (pipeline.Result, error) {
				return buildResult(fs, opts, []bytestream.ByteStream{src}, &stdinUsed)
			})
			if err != nil {
				return err
			}
		}
		return nil
	}

	inputs, closers, err := openInputs(fs, opts.files, &stdinUsed)
	defer closeAll(closers)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(opts)
	if err != nil {
		return err
	}
	defer closeOut()

	if opts.patchBack != "" {
		if opts.slicer == nil {
			return fmt.Errorf("nd: --patch-back requires a slicer (--width/--find/--slice/...)")
		}
		combined, err := combineInputs(inputs, opts.zipWord)
		if err != nil {
			return fmt.Errorf("nd: %w", err)
		}
		return pipeline.RunPatchBack(out, combined, func(teed bytestream.ByteStream) (segstream.SegmentStream, error) {
			res, err := buildResult(fs, opts, []bytestream.ByteStream{teed}, &stdinUsed)
			if err != nil {
				return nil, err
			}
			return res.Segments, nil
		}, pipeline.PatchBackOptions{
			Command:  opts.patchBack,
			Base:     opts.outBase,
			Width:    opts.outWidth,
			Fs:       fs,
			SpillDir: os.TempDir(),
		})
	}

	res, err := buildResult(fs, opts, inputs, &stdinUsed)
	if err != nil {
		return err
	}
	if res.Segments != nil {
		return pipeline.Drain(out, pipeline.Result{Segments: hextext.NewFormatter(res.Segments, opts.outBase, opts.outWidth)})
	}
	return pipeline.Drain(out, res)
}

// combineInputs merges multiple already-opened inputs the same way
// pipeline.Assemble does internally, for the patch-back path where the
// Tee has to wrap one combined stream before any stage sees it.
func combineInputs(inputs []bytestream.ByteStream, zipWord int) (bytestream.ByteStream, error) {
	switch {
	case len(inputs) == 0:
		return nil, fmt.Errorf("no input stream given")
	case len(inputs) == 1:
		return inputs[0], nil
	case zipWord > 0:
		return bytestream.NewZip(inputs, zipWord), nil
	default:
		return bytestream.NewCat(inputs), nil
	}
}

func buildResult(fs afero.Fs, opts *options, inputs []bytestream.ByteStream, stdinUsed *bool) (pipeline.Result, error) {
	req := pipeline.Request{
		Inputs:    inputs,
		ZipWord:   opts.zipWord,
		ByteNodes: opts.byteNodes,
		Slicer:    opts.slicer,
		SegNodes:  opts.segNodes,
	}

	if opts.patchFile != "" {
		if err := requireHexText(opts.patchFile); err != nil {
			return pipeline.Result{}, fmt.Errorf("nd: patch file %q: %w", opts.patchFile, err)
		}
		src, closer, err := openSideInput(fs, opts.patchFile, stdinUsed)
		if err != nil {
			return pipeline.Result{}, fmt.Errorf("nd: patch file %q: %w", opts.patchFile, err)
		}
		defer closer.Close()
		req.Patches = hextext.NewPatchSource(hextext.NewReader(src))
	}
	if opts.guideFile != "" {
		if err := requireHexText(opts.guideFile); err != nil {
			return pipeline.Result{}, fmt.Errorf("nd: guide file %q: %w", opts.guideFile, err)
		}
		src, closer, err := openSideInput(fs, opts.guideFile, stdinUsed)
		if err != nil {
			return pipeline.Result{}, fmt.Errorf("nd: guide file %q: %w", opts.guideFile, err)
		}
		defer closer.Close()
		req.Guide = hextext.NewGuideSource(hextext.NewReader(src))
	}

	return pipeline.Assemble(req)
}

func openOutput(opts *options) (io.Writer, func(), error) {
	if opts.pagerCmd == "" {
		return os.Stdout, func() {}, nil
	}
	pager, err := ndproc.StartPager(opts.pagerCmd)
	if err != nil {
		return nil, nil, fmt.Errorf("nd: --pager %q: %w", opts.pagerCmd, err)
	}
	return pager, func() { pager.CloseAndWait() }, nil
}

func openInputs(fs afero.Fs, paths []string, stdinUsed *bool) ([]bytestream.ByteStream, []io.Closer, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("nd: no input files given")
	}
	streams := make([]bytestream.ByteStream, 0, len(paths))
	closers := make([]io.Closer, 0, len(paths))
	for _, p := range paths {
		s, c, err := openSideInput(fs, p, stdinUsed)
		if err != nil {
			return nil, closers, fmt.Errorf("nd: input %q: %w", p, err)
		}
		streams = append(streams, s)
		closers = append(closers, c)
	}
	return streams, closers, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSideInput opens path as a ByteStream: "-"/"/dev/stdin" map to the
// process's stdin (at most once across every side input, per spec),
// anything else opens through fs so tests can substitute an in-memory
// filesystem.
func openSideInput(fs afero.Fs, path string, stdinUsed *bool) (bytestream.ByteStream, io.Closer, error) {
	if path == "-" || path == "/dev/stdin" {
		if *stdinUsed {
			return nil, nil, fmt.Errorf("stdin already used by another input")
		}
		*stdinUsed = true
		return bytestream.NewEofStream(bytestream.NewRaw(os.Stdin, 1)), nopCloser{}, nil
	}
	raw, f, err := bytestream.OpenRaw(fs, path, 1)
	if err != nil {
		return nil, nil, err
	}
	return bytestream.NewEofStream(raw), f, nil
}

// requireHexText sniffs path's content type before it's handed to
// hextext.Reader, so a binary file passed as a --patch/--guide side
// input (which must be hex text, unlike the primary input) fails fast
// as a configuration error instead of producing confusing parse
// errors deep in the reader. Best-effort: stdin and paths the sniff
// itself can't open (e.g. a test double that only exists on an
// in-memory afero.Fs) are let through unchecked rather than failing
// the whole run over a diagnostic that couldn't run.
func requireHexText(path string) error {
	if path == "-" || path == "/dev/stdin" {
		return nil
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil
	}
	if !strings.HasPrefix(mime.String(), "text/") {
		return fmt.Errorf("expected hex text, detected %s", mime.String())
	}
	return nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		if c != nil {
			c.Close()
		}
	}
}

// parseArgs walks args by hand instead of using the flag package so
// that order is preserved across differently-named options: the byte
// and segment stages run in the order they were given on the command
// line, which a name-keyed flag set can't express.
func parseArgs(args []string) (*options, error) {
	opts := &options{outWidth: 16}

	next := func(i *int, name string) (string, error) {
		*i++
		if *i >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-v":
			opts.verbosity++
		case a == "-vv":
			opts.verbosity += 2
		case a == "--inplace":
			opts.inplace = true
		case a == "--cat":
			opts.catForced = true

		case a == "--zip":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("--zip: %w", err)
			}
			opts.zipWord = n

		case a == "--pad":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			l, r, err := parsePair(v)
			if err != nil {
				return nil, fmt.Errorf("--pad: %w", err)
			}
			opts.byteNodes = append(opts.byteNodes, pipeline.PadNode{Left: l, Right: r})

		case a == "--cut":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			ranges, err := parseRanges(v)
			if err != nil {
				return nil, fmt.Errorf("--cut: %w", err)
			}
			opts.byteNodes = append(opts.byteNodes, pipeline.CutNode{Ranges: ranges})

		case a == "--patch":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			opts.patchFile = v
			opts.byteNodes = append(opts.byteNodes, pipeline.PatchNode{})

		case a == "--width":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			node, err := parseWidth(v)
			if err != nil {
				return nil, fmt.Errorf("--width: %w", err)
			}
			if opts.slicer != nil {
				return nil, fmt.Errorf("--width: only one slicer may be given")
			}
			opts.slicer = node

		case a == "--slice":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			ranges, err := parseRanges(v)
			if err != nil {
				return nil, fmt.Errorf("--slice: %w", err)
			}
			if opts.slicer != nil {
				return nil, fmt.Errorf("--slice: only one slicer may be given")
			}
			opts.slicer = pipeline.RangeSliceNode{Ranges: ranges}

		case a == "--walk":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			exprs, err := parseWalkExprs(v)
			if err != nil {
				return nil, fmt.Errorf("--walk: %w", err)
			}
			if opts.slicer != nil {
				return nil, fmt.Errorf("--walk: only one slicer may be given")
			}
			opts.slicer = pipeline.WalkSliceNode{Exprs: exprs}

		case a == "--find":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			lit, err := parseLiteral(v)
			if err != nil {
				return nil, fmt.Errorf("--find: %w", err)
			}
			if opts.slicer != nil {
				return nil, fmt.Errorf("--find: only one slicer may be given")
			}
			opts.slicer = pipeline.ExactSliceNode{Literal: lit}

		case a == "--fuzz":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			budget, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("--fuzz: %w", err)
			}
			exact, ok := opts.slicer.(pipeline.ExactSliceNode)
			if !ok {
				return nil, fmt.Errorf("--fuzz requires a preceding --find")
			}
			opts.slicer = pipeline.HammingSliceNode{Literal: exact.Literal, Budget: budget}

		case a == "--guide":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			opts.guideFile = v
			if opts.slicer != nil {
				return nil, fmt.Errorf("--guide: only one slicer may be given")
			}
			opts.slicer = pipeline.GuidedSliceNode{}

		case a == "--regex":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			re, err := regexp.Compile(v)
			if err != nil {
				return nil, fmt.Errorf("--regex: %w", err)
			}
			if opts.slicer == nil {
				opts.slicer = pipeline.RegexSliceNode{Pattern: re}
			} else {
				opts.segNodes = append(opts.segNodes, pipeline.RegexRefineNode{Pattern: re})
			}

		case a == "--lines":
			opts.segNodes = append(opts.segNodes, pipeline.RegexRefineNode{Pattern: regexp.MustCompile(`[^\n]*\n?`)})

		case a == "--invert":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			l, r, err := parsePair(v)
			if err != nil {
				return nil, fmt.Errorf("--invert: %w", err)
			}
			opts.segNodes = append(opts.segNodes, pipeline.BridgeNode{OffL: l, OffR: r})

		case a == "--extend":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			mappers, err := parseRanges(v)
			if err != nil {
				return nil, fmt.Errorf("--extend: %w", err)
			}
			opts.segNodes = append(opts.segNodes, pipeline.ExtendNode{Mappers: mappers})

		case a == "--merge":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			l, r, m, err := parseTriple(v)
			if err != nil {
				return nil, fmt.Errorf("--merge: %w", err)
			}
			opts.segNodes = append(opts.segNodes, pipeline.MergeNode{ExtL: l, ExtR: r, MinOverlap: m})

		case a == "--output":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			base, width, err := parseOutput(v)
			if err != nil {
				return nil, fmt.Errorf("--output: %w", err)
			}
			opts.outBase, opts.outWidth = base, width

		case a == "--patch-back":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			opts.patchBack = v

		case a == "--pager":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			opts.pagerCmd = v

		case a == "--filler":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("--filler: %w", err)
			}
			if n != 0 {
				return nil, fmt.Errorf("--filler: only 0 (the zero byte) is supported")
			}

		case a == "--log-file":
			v, err := next(&i, a)
			if err != nil {
				return nil, err
			}
			opts.logFile = v

		case strings.HasPrefix(a, "--"):
			return nil, fmt.Errorf("unrecognized option %q", a)

		default:
			opts.files = append(opts.files, a)
		}
	}

	if opts.catForced && opts.zipWord > 0 {
		return nil, fmt.Errorf("--cat and --zip are mutually exclusive")
	}

	if opts.pagerCmd == "" {
		opts.pagerCmd = os.Getenv("PAGER")
		if opts.pagerCmd != "" && !opts.inplace {
			// PAGER never starts a pager: it is cleared here on every
			// run without --inplace, and the --inplace path does not
			// open a pager at all. Only an explicit --pager value
			// starts one.
			opts.pagerCmd = ""
		}
	}

	return opts, nil
}

func parsePair(s string) (int64, int64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected L,R, got %q", s)
	}
	l, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	r, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

func parseTriple(s string) (int64, int64, int64, error) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected L,R,M, got %q", s)
	}
	vals := make([]int64, 3)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, 0, 0, err
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}

func parseRanges(s string) ([]mapper.RangeMapper, error) {
	parts := strings.Split(s, ",")
	out := make([]mapper.RangeMapper, 0, len(parts))
	for _, p := range parts {
		rm, err := mapper.ParseRange(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, nil
}

func parseWalkExprs(s string) ([]*walkexpr.Expr, error) {
	parts := strings.Split(s, ",")
	out := make([]*walkexpr.Expr, 0, len(parts))
	for _, p := range parts {
		e, err := walkexpr.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// parseWidth accepts "PITCH,SPAN" or "PITCH,SPAN,FLAGS", where the
// characters 'h'/'t' in FLAGS set HeadOpen/TailOpen. Without FLAGS,
// TailOpen is true and HeadOpen false.
func parseWidth(s string) (pipeline.WidthNode, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return pipeline.WidthNode{}, fmt.Errorf("expected PITCH,SPAN[,flags], got %q", s)
	}
	pitch, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return pipeline.WidthNode{}, err
	}
	span, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return pipeline.WidthNode{}, err
	}
	node := pipeline.WidthNode{Pitch: pitch, Span: span, TailOpen: true}
	if len(parts) >= 3 {
		node.HeadOpen = strings.Contains(parts[2], "h")
		node.TailOpen = strings.Contains(parts[2], "t")
	}
	return node, nil
}

// parseLiteral accepts a hex string (e.g. "DEADBEEF") naming the bytes
// --find searches for.
func parseLiteral(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits in %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte %q", s[2*i:2*i+2])
		}
		out[i] = byte(v)
	}
	return out, nil
}

// parseOutput reads a width,base pair for the hex-text formatter. The
// full n/d/x/b/a per-column format signature isn't implemented: the
// formatter kernel (internal/hextext.Formatter) only ever renders an
// x-mode offset/span column and a b-mode hex body, so only the numeric
// base and width knobs it actually exposes are wired here.
func parseOutput(s string) (base, width int64, err error) {
	parts := strings.SplitN(s, ",", 2)
	width, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if len(parts) == 2 {
		base, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, err
		}
	}
	return base, width, nil
}
