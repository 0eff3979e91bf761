package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	framedecode "github.com/e7canasta/orion-care-sensor/modules/framedecode"
	"gopkg.in/yaml.v3"
)

// Version information
const version = "v0.1.0"

func main() {
	// Parse command-line flags
	input := flag.String("input", "", "Input file: frame container or single raw dump (required)")
	format := flag.String("format", "", "Pixel format tag for raw dumps (YUYV, BGR888, SRGGB10, ...)")
	width := flag.Int("width", 0, "Frame width for raw dumps")
	height := flag.Int("height", 0, "Frame height for raw dumps")
	outputDir := flag.String("output-dir", "", "Directory to save decoded frames (optional)")
	saveFormat := flag.String("save-format", "png", "Save format: png, jpeg")
	jpegQuality := flag.Int("jpeg-quality", 90, "JPEG quality (1-100, only for jpeg format)")
	maxFrames := flag.Int("max-frames", 0, "Maximum frames to decode (0 = unlimited)")
	resize := flag.String("resize", "", "Resize decoded frames to WxH (e.g. 640x360)")
	statsInterval := flag.Int("stats", 10, "Seconds between stats reports (0 = off)")
	manifestPath := flag.String("manifest", "", "Write a YAML run manifest to this path")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("test-decode %s\n", version)
		os.Exit(0)
	}

	// Validate required flags
	if *input == "" {
		fmt.Fprintf(os.Stderr, "Error: --input flag is required\n\n")
		fmt.Fprintf(os.Stderr, "Usage examples:\n")
		fmt.Fprintf(os.Stderr, "  test-decode --input capture.frames --output-dir ./decoded\n")
		fmt.Fprintf(os.Stderr, "  test-decode --input dump.raw --format SRGGB10 --width 1920 --height 1080\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Set up logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Validate save format
	if *saveFormat != "png" && *saveFormat != "jpeg" {
		fatal("Invalid save format (must be png or jpeg)", "save_format", *saveFormat)
	}

	// Parse resize geometry
	resizeW, resizeH := 0, 0
	if *resize != "" {
		var err error
		resizeW, resizeH, err = parseGeometry(*resize)
		if err != nil {
			fatal("Invalid --resize", "error", err)
		}
	}

	// Create output directory if specified
	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			fatal("Failed to create output directory", "error", err)
		}
		slog.Info("Frame saving enabled",
			"directory", *outputDir,
			"format", *saveFormat,
			"jpeg_quality", *jpegQuality,
		)
	}

	// Open input: frame container, or raw dump with flag-supplied geometry
	source, err := openSource(*input, *format, *width, *height)
	if err != nil {
		fatal("Failed to open input", "error", err)
	}
	defer source.Close()

	// Print banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║          Frame Decode Test - Orion 2.0 Module             ║\n")
	fmt.Printf("║                      Version %s                        ║\n", version)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Input:         %s (%s)\n", *input, source.mode)
	if source.mode == "raw" {
		fmt.Printf("  Raw Geometry:  %s %dx%d\n", *format, *width, *height)
	}
	if *outputDir != "" {
		fmt.Printf("  Output Dir:    %s (%s)\n", *outputDir, *saveFormat)
	} else {
		fmt.Printf("  Output Dir:    (none - frames not saved)\n")
	}
	if *maxFrames > 0 {
		fmt.Printf("  Max Frames:    %d\n", *maxFrames)
	} else {
		fmt.Printf("  Max Frames:    unlimited\n")
	}
	if resizeW > 0 {
		fmt.Printf("  Resize:        %dx%d\n", resizeW, resizeH)
	}
	fmt.Printf("\n")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	decoder := framedecode.New()
	tally := newRunTally()
	startTime := time.Now()

	// Launch stats reporter goroutine
	if *statsInterval > 0 {
		statsTicker := time.NewTicker(time.Duration(*statsInterval) * time.Second)
		defer statsTicker.Stop()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-statsTicker.C:
					printStats(tally, startTime)
				}
			}
		}()
	}

	fmt.Printf("Starting frame decode...\n")
	fmt.Printf("Press Ctrl+C to stop gracefully\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n\n")

	// Main frame processing loop
	frameCount := 0
loop:
	for {
		select {
		case <-sigChan:
			fmt.Printf("\n\nReceived interrupt signal, shutting down...\n")
			break loop
		default:
		}

		frame, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("Failed to read frame", "error", err)
			break
		}
		frameCount++

		start := time.Now()
		raster, err := decodeFrame(decoder, frame)
		elapsed := time.Since(start)
		if err != nil {
			slog.Warn("framedecode: decode failed",
				"format", string(frame.Format),
				"seq", frame.Seq,
				"trace_id", frame.TraceID,
				"error", err,
			)
			tally.noteFailed()
			continue
		}
		tally.noteDecoded(string(frame.Format), elapsed)

		if resizeW > 0 {
			raster = raster.Resize(resizeW, resizeH)
		}

		// Log frame arrival (compact format)
		fmt.Printf("[%s] Frame #%-6d | Seq: %-8d | %-8s | %4dx%-4d | %6.2f ms\n",
			time.Now().Format("15:04:05"),
			frameCount,
			frame.Seq,
			string(frame.Format),
			raster.Width,
			raster.Height,
			float64(elapsed.Microseconds())/1000,
		)

		// Save frame if output directory specified
		if *outputDir != "" {
			path, err := saveRaster(*outputDir, raster, *saveFormat, *jpegQuality)
			if err != nil {
				slog.Error("Failed to save frame", "error", err, "seq", raster.Seq)
			} else {
				tally.noteSaved(path)
			}
		}

		// Stop if max frames reached
		if *maxFrames > 0 && frameCount >= *maxFrames {
			fmt.Printf("\nReached maximum frames (%d), stopping...\n", *maxFrames)
			break
		}
	}

	cancel()

	// Final stats
	snap := tally.snapshot()
	uptime := time.Since(startTime)

	fmt.Printf("\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("                     Final Statistics                      \n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("  Total Uptime:       %s\n", uptime.Round(time.Second))
	fmt.Printf("  Frames Decoded:     %d frames\n", snap.decoded)
	if snap.failed > 0 {
		fmt.Printf("  Decode Errors:      %d frames\n", snap.failed)
	}
	if *outputDir != "" {
		fmt.Printf("  Frames Saved:       %d frames\n", snap.saved)
	}
	fmt.Printf("  Mean Decode:        %.2f ms\n", snap.meanDecodeMS)
	if len(snap.perFormat) > 0 {
		fmt.Printf("  Formats:\n")
		for _, f := range sortedKeys(snap.perFormat) {
			fmt.Printf("    %-12s %6d frames\n", f, snap.perFormat[f])
		}
	}
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("\n")

	// Write run manifest
	if *manifestPath != "" {
		if err := writeManifest(*manifestPath, source, snap, *input); err != nil {
			slog.Error("Failed to write manifest", "error", err)
			os.Exit(1)
		}
		slog.Info("Run manifest written", "path", *manifestPath)
	}

	slog.Info("Test decode completed successfully")
}

// fatal logs a setup failure and exits. The frame loop never calls it:
// per-frame errors warn and continue.
func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

// frameSource yields frames from either input shape: a multi-frame
// container, or a single raw dump whose geometry comes from flags.
type frameSource struct {
	mode    string // "container" or "raw"
	file    *os.File
	reader  *framedecode.FrameReader
	raw     *framedecode.Frame // raw mode: the one frame
	rawDone bool
}

// openSource opens the input as a frame container, falling back to raw
// dump mode when the container magic does not match.
func openSource(path, format string, width, height int) (*frameSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader, err := framedecode.NewFrameReader(file)
	if err == nil {
		return &frameSource{mode: "container", file: file, reader: reader}, nil
	}
	file.Close()
	if !errors.Is(err, framedecode.ErrBadMagic) {
		return nil, err
	}

	if format == "" || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s is not a frame container; raw dumps need --format, --width and --height", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	timestamp := time.Now()
	if info, err := os.Stat(path); err == nil {
		timestamp = info.ModTime()
	}

	return &frameSource{
		mode: "raw",
		raw: &framedecode.Frame{
			Seq:          1,
			Timestamp:    timestamp,
			Format:       framedecode.PixelFormat(format),
			Width:        width,
			Height:       height,
			Data:         data,
			SourceStream: filepath.Base(path),
		},
	}, nil
}

// Next returns the next frame, or io.EOF when the input is exhausted.
func (s *frameSource) Next() (framedecode.Frame, error) {
	if s.reader != nil {
		return s.reader.Read()
	}
	if s.rawDone {
		return framedecode.Frame{}, io.EOF
	}
	s.rawDone = true
	return *s.raw, nil
}

func (s *frameSource) Close() {
	if s.reader != nil {
		s.reader.Close()
	}
	if s.file != nil {
		s.file.Close()
	}
}

// decodeFrame routes raw classes through Decode and compressed frames
// through the image-codec path, keeping the frame's identity metadata
// on the raster either way.
func decodeFrame(d *framedecode.Decoder, frame framedecode.Frame) (*framedecode.Raster, error) {
	if frame.Format.Class() != framedecode.ClassCompressed {
		return d.Decode(frame)
	}

	img, err := d.DecodeImage(frame)
	if err != nil {
		return nil, err
	}
	raster := framedecode.RasterFromImage(img)
	raster.Seq = frame.Seq
	raster.Timestamp = frame.Timestamp
	raster.SourceStream = frame.SourceStream
	raster.TraceID = frame.TraceID
	return raster, nil
}

// runTally accumulates decode statistics. The stats reporter goroutine
// reads it concurrently with the main loop, hence the mutex.
type runTally struct {
	mu        sync.Mutex
	decoded   int
	failed    int
	saved     int
	perFormat map[string]int
	decodeNS  int64
	outputs   []string
}

// tallySnapshot is a consistent copy of the counters for printing.
type tallySnapshot struct {
	decoded      int
	failed       int
	saved        int
	perFormat    map[string]int
	meanDecodeMS float64
	outputs      []string
}

func newRunTally() *runTally {
	return &runTally{perFormat: make(map[string]int)}
}

func (t *runTally) noteDecoded(format string, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.decoded++
	t.perFormat[format]++
	t.decodeNS += elapsed.Nanoseconds()
}

func (t *runTally) noteFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed++
}

func (t *runTally) noteSaved(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saved++
	t.outputs = append(t.outputs, path)
}

func (t *runTally) snapshot() tallySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := tallySnapshot{
		decoded:   t.decoded,
		failed:    t.failed,
		saved:     t.saved,
		perFormat: make(map[string]int, len(t.perFormat)),
		outputs:   append([]string(nil), t.outputs...),
	}
	for f, n := range t.perFormat {
		snap.perFormat[f] = n
	}
	if t.decoded > 0 {
		snap.meanDecodeMS = float64(t.decodeNS) / float64(t.decoded) / 1e6
	}
	return snap
}

// printStats renders the periodic statistics block.
func printStats(t *runTally, startTime time.Time) {
	snap := t.snapshot()
	uptime := time.Since(startTime)

	fmt.Printf("\n")
	fmt.Printf("╭─────────────────────────────────────────────────────────╮\n")
	fmt.Printf("│ Decode Statistics (Uptime: %s)\n", uptime.Round(time.Second))
	fmt.Printf("├─────────────────────────────────────────────────────────┤\n")
	fmt.Printf("│ Frames Decoded:     %6d frames\n", snap.decoded)
	if snap.failed > 0 {
		fmt.Printf("│ Decode Errors:      %6d frames\n", snap.failed)
	}
	if snap.saved > 0 {
		fmt.Printf("│ Frames Saved:       %6d frames\n", snap.saved)
	}
	fmt.Printf("│ Mean Decode:        %6.2f ms\n", snap.meanDecodeMS)
	for _, f := range sortedKeys(snap.perFormat) {
		fmt.Printf("│   %-14s %6d frames\n", f, snap.perFormat[f])
	}
	fmt.Printf("╰─────────────────────────────────────────────────────────╯\n")
	fmt.Printf("\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runManifest is the YAML record of one tool invocation.
type runManifest struct {
	Run struct {
		Timestamp string `yaml:"timestamp"`
		Command   string `yaml:"command"`
		Version   string `yaml:"version"`
	} `yaml:"run"`

	Input struct {
		Path   string `yaml:"path"`
		Mode   string `yaml:"mode"`
		Format string `yaml:"format,omitempty"`
		Width  int    `yaml:"width,omitempty"`
		Height int    `yaml:"height,omitempty"`
	} `yaml:"input"`

	Results struct {
		FramesDecoded int            `yaml:"frames_decoded"`
		DecodeErrors  int            `yaml:"decode_errors"`
		FramesSaved   int            `yaml:"frames_saved"`
		MeanDecodeMS  float64        `yaml:"mean_decode_ms"`
		PerFormat     map[string]int `yaml:"frames_per_format"`
		OutputFiles   []string       `yaml:"output_files,omitempty"`
	} `yaml:"results"`
}

func writeManifest(path string, source *frameSource, snap tallySnapshot, input string) error {
	m := runManifest{}
	m.Run.Timestamp = time.Now().Format(time.RFC3339)
	m.Run.Command = strings.Join(os.Args, " ")
	m.Run.Version = version

	m.Input.Path = input
	m.Input.Mode = source.mode
	if source.mode == "raw" && source.raw != nil {
		m.Input.Format = string(source.raw.Format)
		m.Input.Width = source.raw.Width
		m.Input.Height = source.raw.Height
	}

	m.Results.FramesDecoded = snap.decoded
	m.Results.DecodeErrors = snap.failed
	m.Results.FramesSaved = snap.saved
	m.Results.MeanDecodeMS = snap.meanDecodeMS
	m.Results.PerFormat = snap.perFormat
	m.Results.OutputFiles = snap.outputs

	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// saveRaster writes a decoded raster as PNG or JPEG and returns the
// file path.
func saveRaster(outputDir string, raster *framedecode.Raster, format string, jpegQuality int) (string, error) {
	filename := fmt.Sprintf("frame_%06d_%s.%s",
		raster.Seq, raster.Timestamp.Format("20060102_150405.000"), format)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	img := raster.ToImage()
	switch format {
	case "png":
		if err := png.Encode(file, img); err != nil {
			return "", fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "jpeg":
		if err := jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return "", fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	return path, nil
}

// parseGeometry parses a WxH string like "640x360".
func parseGeometry(s string) (int, int, error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("geometry %q: want WxH", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("geometry %q: %w", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("geometry %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("geometry %q: dimensions must be positive", s)
	}
	return w, h, nil
}
