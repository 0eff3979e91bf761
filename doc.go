// Package framedecode converts raw camera frames into RGB rasters for
// the Orion inference planes.
//
// # Philosophy
//
// "Decode is pure. Same bytes in, same raster out."
//
// Capture planes hand over whatever their sensor produces: packed YUV,
// 24/32-bit RGB in either byte order, or raw Bayer mosaics at 8, 10 or
// 12 bits. This module turns each of those into one canonical shape
// (interleaved 8-bit RGB rows) with no I/O, no global state and no
// hidden codecs, so downstream workers never care which camera a
// deployment runs.
//
// # Supported Formats
//
//	YUYV                 packed 4:2:2 YUV, 2 bytes per pixel
//	RGB888 / BGR888      24-bit packed, either memory order
//	ARGB8888 / XRGB8888  32-bit packed, alpha/padding dropped
//	SRGGB8 .. SBGGR12    Bayer mosaics: any 2x2 pattern, 8/10/12-bit
//	MJPEG                compressed: served by DecodeImage only
//
// Compressed formats are deliberately refused by the raw path: Decode
// never hides a codec. DecodeImage is the explicit bridge to the
// standard image decoders.
//
// # Basic Usage
//
// Pure decoding, one frame at a time:
//
//	decoder := framedecode.New()
//	raster, err := decoder.Decode(frame)
//	if err != nil {
//	    log.Printf("decode failed: %v", err)
//	    return
//	}
//	img := raster.ToImage() // standard image.RGBA when needed
//
// Continuous decoding behind a pipeline. Producer side (capture plane):
//
//	pipeline, _ := framedecode.NewPipeline(framedecode.PipelineConfig{Name: "main"})
//	pipeline.Start(ctx)
//	defer pipeline.Stop()
//
//	for frame := range captureChan {
//	    pipeline.Submit(frame) // non-blocking, latest frame wins
//	}
//
// Consumer side (worker):
//
//	read, err := pipeline.Subscribe("PersonDetector")
//	if err != nil { ... }
//	defer pipeline.Unsubscribe("PersonDetector")
//
//	for {
//	    raster, err := read(ctx) // blocks until a raster is ready
//	    if err != nil {
//	        break // pipeline stopped or ctx done
//	    }
//	    runInference(raster)
//	}
//
// # Drop Semantics
//
// The pipeline carries the Orion just-in-time philosophy: drop frames,
// never queue. The submit inbox and every worker slot hold exactly one
// frame; a newer frame overwrites an unconsumed older one and the
// overwrite is counted. Drops are EXPECTED and HEALTHY when a worker
// runs slower than the source. They indicate the worker reads the
// latest frame instead of an ever-older backlog. Stats() exposes the
// counters for monitoring.
//
// # Frame Statistics
//
// Decoded rasters feed sensor-style statistics: channel histograms
// with quantile queries, and grey-world white balance with correlated
// color temperature.
//
//	hist := framedecode.ChannelHistogram(raster, framedecode.ChannelG, 256)
//	exposure := hist.InterQuantileMean(0.02, 0.98)
//
//	wb, err := framedecode.EstimateWhiteBalance(raster)
//	// wb.RedGain, wb.BlueGain, wb.TemperatureK
//
// # Recording and Replay
//
// FrameWriter and FrameReader persist raw frames (before decoding) in
// a compressed container, so a field recording replays byte-identical
// decoder input:
//
//	writer, _ := framedecode.NewFrameWriter(file)
//	writer.Write(frame)
//	writer.Close()
//
//	reader, _ := framedecode.NewFrameReader(file)
//	for {
//	    frame, err := reader.Read()
//	    if err == io.EOF { break }
//	    ...
//	}
//
// # Thread Safety
//
// A single Decoder is safe for concurrent use by any number of
// goroutines. All Pipeline methods are thread-safe; a worker's read
// function is meant for that worker's goroutine only. Frame.Data is
// shared by reference under an immutability contract: neither the
// producer nor any consumer may modify it after Submit.
//
// # Module Context
//
// framedecode is part of the Orion 2.0 modular architecture:
//
//   - Bounded Context: pixel-format decoding, decoded-frame fan-out,
//     frame statistics (not capture, not inference)
//   - Upstream: stream-capture (produces raw frames)
//   - Downstream: worker modules (consume rasters)
package framedecode
