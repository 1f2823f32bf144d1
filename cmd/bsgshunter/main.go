package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Amr-9/BSGSHunter/internal/logs"
	"github.com/Amr-9/BSGSHunter/internal/ui"
	"github.com/Amr-9/BSGSHunter/pkg/address"
	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/scanner"
	"github.com/Amr-9/BSGSHunter/pkg/scanner/cpu"
	"github.com/Amr-9/BSGSHunter/pkg/scanner/gpu"
	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

const (
	version    = "1.0"
	updateRate = 100 * time.Millisecond
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

type options struct {
	cfg      *bsgs.Config
	engine   string
	lib      string
	table    string
	priority bool
	verbose  bool
	selfTest bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}
	if opts.verbose {
		logs.SetLevel(logs.LevelDebug)
	}

	interactive := len(args) == 0
	if interactive {
		ui.ClearScreen()
		defer ui.WaitForExit(os.Stdin)
	}
	ui.PrintWelcomeBanner(version)

	if opts.selfTest {
		return runSelfTest(opts)
	}

	if interactive {
		answers, err := ui.PromptSearch(os.Stdin, gpu.Available())
		if err != nil {
			printError(err)
			return exitError
		}
		opts.engine = answers.Engine
		opts.cfg.PublicKey = answers.PublicKey
		opts.cfg.Keyspace = answers.Keyspace
	}

	cfg := opts.cfg
	if err := cfg.Validate(); err != nil {
		printError(err)
		return exitError
	}
	target, err := secp.ParsePublicKey(cfg.PublicKey)
	if err != nil {
		printError(err)
		return exitError
	}
	ks, err := bsgs.ParseKeyspace(cfg.Keyspace)
	if err != nil {
		printError(err)
		return exitError
	}

	if opts.priority {
		if err := raisePriority(); err != nil {
			fmt.Printf("    %s⚠ Could not raise priority: %v%s\n", ui.ColorYellow, err, ui.ColorReset)
		}
	}

	sc, closeScanner, err := openScanner(opts.engine, opts.lib)
	if err != nil {
		printError(err)
		return exitError
	}
	defer closeScanner()

	fmt.Printf("    %sPreparing baby table (%s records)...%s\n", ui.ColorDim, ui.FormatNumber(uint64(cfg.BabySize)), ui.ColorReset)
	began := time.Now()
	table, built, err := bsgs.LoadOrBuildTable(opts.table, target, cfg.BabySize, cfg.TableStart)
	if err != nil {
		printError(err)
		return exitError
	}
	if built {
		fmt.Printf("    %s✓ Built in %s%s\n", ui.ColorGreen, ui.FormatDuration(time.Since(began)), ui.ColorReset)
	} else {
		fmt.Printf("    %s✓ Loaded %s%s\n", ui.ColorGreen, opts.table, ui.ColorReset)
	}

	summary, err := address.Describe(target)
	if err != nil {
		logs.Debug("describe target: %v", err)
	}
	ui.PrintSearchInfo(cfg, ks, table, sc.Name(), summary)

	return search(cfg, ks, table, sc)
}

func search(cfg *bsgs.Config, ks *bsgs.Keyspace, table *bsgs.Table, sc bsgs.Scanner) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	console := ui.NewConsole()
	driver := bsgs.NewDriver(cfg, ks, table, sc).WithReporter(console)

	type outcome struct {
		found *bsgs.FoundKey
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		found, err := driver.Run(ctx)
		done <- outcome{found, err}
	}()

	ticker := time.NewTicker(updateRate)
	defer ticker.Stop()
	frame := 0

	for {
		select {
		case res := <-done:
			stats := driver.Stats()
			if res.err != nil {
				if errors.Is(res.err, context.Canceled) {
					fmt.Printf("\n\n    %s⚠ Cancelled%s │ %d ranges │ %s\n",
						ui.ColorYellow+ui.ColorBold, ui.ColorReset, stats.Iterations, ui.FormatDuration(stats.Elapsed))
					return exitInterrupted
				}
				fmt.Println()
				printError(res.err)
				return exitError
			}
			console.PrintSuccess(res.found, stats, cfg.Output)
			if err := res.found.AppendToFile(cfg.Output); err != nil {
				fmt.Printf("    %s⚠ Save failed: %v%s\n", ui.ColorYellow, err, ui.ColorReset)
			}
			return exitOK

		case <-ticker.C:
			console.Progress(driver.Stats(), driver.State(), frame)
			frame++

		case <-sigChan:
			// A second interrupt gets the default handler and kills the process.
			signal.Stop(sigChan)
			fmt.Printf("\n\n    %s⚠ Stopping after the current range (Ctrl+C again to kill)...%s\n", ui.ColorYellow, ui.ColorReset)
			cancel()
		}
	}
}

// openScanner picks the scan backend. auto prefers the bt2 library and falls
// back to the CPU scanner.
func openScanner(engine, lib string) (bsgs.Scanner, func(), error) {
	switch engine {
	case ui.EngineCPU:
		return cpu.New(), func() {}, nil
	case ui.EngineGPU:
		g, err := gpu.Open(lib)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	case ui.EngineAuto:
		g, err := gpu.Open(lib)
		if err != nil {
			fmt.Printf("    %s⚠ GPU unavailable: %v%s\n", ui.ColorRed, err, ui.ColorReset)
			fmt.Printf("    %s↪ Using CPU...%s\n", ui.ColorYellow, ui.ColorReset)
			return cpu.New(), func() {}, nil
		}
		return g, func() { g.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown engine %q (want auto, gpu or cpu)", engine)
}

func runSelfTest(opts *options) int {
	sc, closeScanner, err := openScanner(opts.engine, opts.lib)
	if err != nil {
		printError(err)
		return exitError
	}
	defer closeScanner()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	passed, results := scanner.Verify(ctx, sc)
	ui.PrintVerifyResults(sc.Name(), passed, results)
	if !passed {
		return exitError
	}
	return exitOK
}

func parseFlags(args []string) (*options, error) {
	opts := &options{cfg: bsgs.DefaultConfig()}
	c := opts.cfg

	fs := flag.NewFlagSet("bsgshunter", flag.ContinueOnError)
	fs.StringVar(&c.PublicKey, "pubkey", "", "target public key, compressed or uncompressed hex")
	fs.Uint64Var(&c.Attempts, "n", c.Attempts, "keys per range, used for the rate display")
	fs.IntVar(&c.Device, "d", c.Device, "GPU device id")
	uint32Var(fs, &c.Threads, "t", "GPU threads")
	uint32Var(fs, &c.Blocks, "b", "GPU blocks")
	uint32Var(fs, &c.Points, "p", "points per GPU thread")
	uint32Var(fs, &c.BabySize, "bp", "baby table records, a power of two")
	fs.Uint64Var(&c.TableStart, "start", c.TableStart, "scalar offset of the first baby table record")
	fs.StringVar(&c.Keyspace, "keyspace", c.Keyspace, "search space as min:max in hex")
	fs.BoolVar(&c.Random, "rand", false, "draw random ranges (always on)")
	fs.StringVar(&c.Output, "output", c.Output, "file found keys are appended to")
	fs.StringVar(&opts.engine, "engine", ui.EngineAuto, "scan backend: auto, gpu or cpu")
	fs.StringVar(&opts.lib, "lib", "", "path to the bt2 library (default ./bt2.so or ./bt2.dll)")
	fs.StringVar(&opts.table, "table", "", "cache file for the baby table")
	fs.BoolVar(&opts.priority, "priority", false, "raise the process priority")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.BoolVar(&opts.selfTest, "test", false, "verify the scan backend on known keys and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments")
	}
	return opts, nil
}

type uint32Value uint32

func (v *uint32Value) String() string { return strconv.FormatUint(uint64(*v), 10) }

func (v *uint32Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	*v = uint32Value(n)
	return nil
}

func uint32Var(fs *flag.FlagSet, p *uint32, name, usage string) {
	fs.Var((*uint32Value)(p), name, usage)
}

func printError(err error) {
	fmt.Printf("\n    %s✗ Error: %v%s\n", ui.ColorRed, err, ui.ColorReset)
}
