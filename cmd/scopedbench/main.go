// Scopedbench benchmarks the scopedio library.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/calvinalkan/scopedio"
)

const (
	workLines  = "lines"
	workChars  = "chars"
	workBuffer = "buffer"
)

type benchResult struct {
	Timestamp time.Time `json:"ts"`

	Case  string `json:"case,omitempty"`
	Notes string `json:"notes,omitempty"`

	Work      string `json:"work"`
	Lines     int    `json:"lines"`
	LineBytes int    `json:"line_bytes"`
	Buffering string `json:"buffering"`
	Repeat    int    `json:"repeat"`

	BytesTotal  uint64        `json:"bytes_total"`
	Duration    time.Duration `json:"duration"`
	BytesPerSec float64       `json:"bytes_per_sec"`
	LinesPerSec float64       `json:"lines_per_sec,omitempty"`

	GoVersion  string `json:"go"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`
	GOMAXPROCS int    `json:"gomaxprocs"`
	NumCPU     int    `json:"numcpu"`
}

type benchFlags struct {
	work       string
	lines      int
	lineBytes  int
	buffering  string
	repeat     int
	quiet      bool
	caseName   string
	notes      string
	out        string
	cpuProfile string
}

func parseFlags() *benchFlags {
	flags := &benchFlags{}

	flag.StringVar(&flags.work, "work", workLines, "workload: lines | chars | buffer")
	flag.IntVar(&flags.lines, "lines", 100_000, "lines in the generated input file")
	flag.IntVar(&flags.lineBytes, "line-bytes", 64, "payload bytes per line")
	flag.StringVar(&flags.buffering, "buffering", "block", "read buffering: none | line | block")
	flag.IntVar(&flags.repeat, "repeat", 1, "repeat the read pass N times per invocation")
	flag.BoolVar(&flags.quiet, "q", false, "quiet: print only bytes/sec")
	flag.StringVar(&flags.caseName, "case", "", "optional short case name to store in JSON output")
	flag.StringVar(&flags.notes, "notes", "", "optional freeform notes to store in JSON output")
	flag.StringVar(&flags.out, "out", "", "optional JSONL output file to append one result per run")
	flag.StringVar(&flags.cpuProfile, "cpuprofile", "", "write CPU profile to file")

	return flags
}

func main() {
	flags := parseFlags()

	flag.Parse()

	os.Exit(run(flags))
}

func run(flags *benchFlags) int {
	if flags.lines <= 0 || flags.lineBytes <= 0 {
		fmt.Fprintln(os.Stderr, "-lines and -line-bytes must be >= 1")

		return 2
	}

	if flags.repeat <= 0 {
		fmt.Fprintln(os.Stderr, "-repeat must be >= 1")

		return 2
	}

	bufMode, err := parseBuffering(flags.buffering)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 2
	}

	if flags.cpuProfile != "" {
		cpuFile, err := os.Create(flags.cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating cpuprofile: %v\n", err)

			return 1
		}

		err = pprof.StartCPUProfile(cpuFile)
		if err != nil {
			_ = cpuFile.Close()

			fmt.Fprintf(os.Stderr, "error starting cpuprofile: %v\n", err)

			return 1
		}

		defer func() {
			pprof.StopCPUProfile()

			_ = cpuFile.Close()
		}()
	}

	var (
		bytesTotal uint64
		elapsed    time.Duration
	)

	err = scopedio.Run(context.Background(), func(_ context.Context, r *scopedio.Region) error {
		path, w, err := scopedio.OpenTemp(r, "", "scopedbench-*")
		if err != nil {
			return err
		}

		r.Defer(func() error { return os.Remove(path) })

		line := strings.Repeat("x", flags.lineBytes)
		for range flags.lines {
			if err := scopedio.PutLine(w, line); err != nil {
				return err
			}
		}

		if err := w.Close(); err != nil {
			return err
		}

		start := time.Now()

		for range flags.repeat {
			read, err := readPass(r, path, flags.work, bufMode)
			if err != nil {
				return err
			}

			bytesTotal += read
		}

		elapsed = time.Since(start)

		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return 1
	}

	secs := elapsed.Seconds()

	result := benchResult{
		Timestamp:   time.Now(),
		Case:        flags.caseName,
		Notes:       flags.notes,
		Work:        flags.work,
		Lines:       flags.lines,
		LineBytes:   flags.lineBytes,
		Buffering:   flags.buffering,
		Repeat:      flags.repeat,
		BytesTotal:  bytesTotal,
		Duration:    elapsed,
		BytesPerSec: float64(bytesTotal) / secs,
		GoVersion:   runtime.Version(),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		NumCPU:      runtime.NumCPU(),
	}

	if flags.work == workLines {
		result.LinesPerSec = float64(flags.lines*flags.repeat) / secs
	}

	if flags.quiet {
		fmt.Printf("%.0f\n", result.BytesPerSec)
	} else {
		fmt.Printf("work=%s lines=%d line-bytes=%d buffering=%s repeat=%d\n",
			flags.work, flags.lines, flags.lineBytes, flags.buffering, flags.repeat)
		fmt.Printf("bytes=%d duration=%s bytes/sec=%.0f\n",
			result.BytesTotal, result.Duration, result.BytesPerSec)
	}

	if flags.out != "" {
		if err := appendResult(flags.out, &result); err != nil {
			fmt.Fprintf(os.Stderr, "error writing -out: %v\n", err)

			return 1
		}
	}

	return 0
}

func parseBuffering(s string) (scopedio.BufferMode, error) {
	switch s {
	case "none":
		return scopedio.NoBuffering(), nil
	case "line":
		return scopedio.LineBuffering(), nil
	case "block":
		return scopedio.BlockBuffering(0), nil
	default:
		return scopedio.BufferMode{}, fmt.Errorf("unknown buffering %q (want none | line | block)", s)
	}
}

// readPass reads the whole file once with the selected workload and returns
// the byte count consumed.
func readPass(parent *scopedio.Region, path, work string, bufMode scopedio.BufferMode) (uint64, error) {
	return scopedio.RunSub(context.Background(), parent, func(_ context.Context, r *scopedio.Region) (uint64, error) {
		h, err := scopedio.Open[scopedio.ReadOnly](r, path, scopedio.WithBuffering(bufMode))
		if err != nil {
			return 0, err
		}

		var total uint64

		switch work {
		case workLines:
			for {
				line, err := scopedio.GetLine(h)
				if err != nil {
					if isEOF(err) {
						return total, nil
					}

					return total, err
				}

				total += uint64(len(line)) + 1
			}

		case workChars:
			for {
				_, err := scopedio.GetChar(h)
				if err != nil {
					if isEOF(err) {
						return total, nil
					}

					return total, err
				}

				total++
			}

		case workBuffer:
			buf := scopedio.AllocBuffer(r, 64*1024)

			for {
				n, err := scopedio.ReadBufSome(h, buf, buf.Len())
				if err != nil {
					return total, err
				}

				if n == 0 {
					return total, nil
				}

				total += uint64(n)
			}

		default:
			return 0, fmt.Errorf("unknown work %q (want lines | chars | buffer)", work)
		}
	})
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

func appendResult(path string, result *benchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}
