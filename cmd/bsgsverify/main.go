// bsgsverify checks a scan backend against the CPU scanner on known keys.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Amr-9/BSGSHunter/internal/ui"
	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/scanner"
	"github.com/Amr-9/BSGSHunter/pkg/scanner/cpu"
	"github.com/Amr-9/BSGSHunter/pkg/scanner/gpu"
)

func main() {
	engine := flag.String("engine", "gpu", "backend to verify: gpu or cpu")
	lib := flag.String("lib", "", "path to the bt2 library")
	flag.Parse()

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("  ║                  🔬 Scan Backend Verification                     ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	var backend bsgs.Scanner
	switch *engine {
	case "cpu":
		backend = cpu.New()
	case "gpu":
		g, err := gpu.Open(*lib)
		if err != nil {
			fmt.Printf("  ❌ %v\n", err)
			os.Exit(1)
		}
		defer g.Close()
		backend = g
	default:
		fmt.Printf("  ❌ unknown engine %q\n", *engine)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	passed, results := scanner.Verify(ctx, backend)
	stop()

	ui.PrintVerifyResults(backend.Name(), passed, results)
	if !passed {
		os.Exit(1)
	}
}
