package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/comm-runtime/engine"
)

func main() {
	var (
		msgs        = flag.Int("msgs", 1000, "Number of transfers to issue")
		size        = flag.Int("size", 4096, "Bytes per transfer")
		stream      = flag.Bool("stream", false, "Use stream transfers instead of tagged messages")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.SetLogger(l)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(config{msgs: *msgs, size: *size, stream: *stream}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	b := newBench()
	defer b.close()

	kind := "tagged"
	if cfg.stream {
		kind = "stream"
	}
	fmt.Printf("Loopback workload: %d %s transfers of %d bytes\n", cfg.msgs, kind, cfg.size)

	res, err := b.run(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("\nTransferred: %d bytes in %s\n", res.bytes, res.elapsed.Round(time.Millisecond))
	fmt.Printf("Throughput:  %.1f MB/s\n", res.throughputMB())
	if res.errs > 0 {
		fmt.Printf("Errors:      %d\n", res.errs)
	}

	statsA, statsB := b.stats()
	fmt.Printf("Requests:    %d issued / %d completed (A-side), %d issued / %d completed (B-side)\n",
		statsA.Issued, statsA.Completed, statsB.Issued, statsB.Completed)
	return nil
}
