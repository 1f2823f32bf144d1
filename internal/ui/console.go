package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Amr-9/BSGSHunter/pkg/address"
	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/scanner"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorPurple = "\033[35m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// Console prints search progress. It implements bsgs.Reporter; the progress
// line and range reports share a lock so they never interleave.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	spinner bool // a progress line is on screen
}

// NewConsole writes to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter writes to w.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// ClearScreen clears the terminal
func ClearScreen() {
	clearScreen(os.Stdout)
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// PrintWelcomeBanner shows the welcome screen
func PrintWelcomeBanner(version string) {
	fmt.Println()
	fmt.Printf("%s%s", ColorCyan, ColorBold)
	fmt.Println("  ╔════════════════════════════════════════════════════════════════════╗")
	fmt.Println("  ║  ██████╗ ███████╗ ██████╗ ███████╗                                 ║")
	fmt.Println("  ║  ██╔══██╗██╔════╝██╔════╝ ██╔════╝   H U N T E R                   ║")
	fmt.Println("  ║  ██████╔╝███████╗██║  ███╗███████╗                                 ║")
	fmt.Println("  ║  ██╔══██╗╚════██║██║   ██║╚════██║                                 ║")
	fmt.Println("  ║  ██████╔╝███████║╚██████╔╝███████║                                 ║")
	fmt.Println("  ║  ╚═════╝ ╚══════╝ ╚═════╝ ╚══════╝                                 ║")
	fmt.Println("  ╠════════════════════════════════════════════════════════════════════╣")
	fmt.Printf("  ║%s   Baby-Step Giant-Step secp256k1 Key Search %s• v%s%s                  ║\n", ColorYellow, ColorDim, version, ColorCyan+ColorBold)
	fmt.Println("  ╚════════════════════════════════════════════════════════════════════╝")
	fmt.Print(ColorReset)
	fmt.Println()
}

// PrintSearchInfo displays the search configuration
func PrintSearchInfo(cfg *bsgs.Config, ks *bsgs.Keyspace, table *bsgs.Table, engine string, target *address.Summary) {
	fmt.Printf("\n    %s🚀 SEARCHING%s %s%s%s\n", ColorGreen+ColorBold, ColorReset, ColorCyan, table.Target.Hex(), ColorReset)
	if target != nil {
		fmt.Printf("    %s₿  %s  %s  %s%s\n", ColorDim, target.Legacy, target.SegWit, target.Hash160, ColorReset)
	}
	fmt.Printf("    %sKeyspace   %s %s\n", ColorPurple, ColorReset, ks)
	fmt.Printf("    %sEngine     %s %s %s(device %d, %d threads × %d blocks × %d points)%s\n",
		ColorPurple, ColorReset, engine, ColorDim, cfg.Device, cfg.Threads, cfg.Blocks, cfg.Points, ColorReset)
	fmt.Printf("    %sBaby table %s %s records %s(2^%d, start +%d, %s)%s\n",
		ColorPurple, ColorReset, FormatNumber(uint64(table.Count)), ColorDim, table.Bits, table.Start,
		FormatBytes(uint64(len(table.Points))), ColorReset)
	fmt.Printf("    %sOutput     %s %s\n\n", ColorPurple, ColorReset, cfg.Output)
}

// RangeSearched prints one finished range.
func (c *Console) RangeSearched(r bsgs.RangeReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearProgress()
	fmt.Fprintf(c.out, "    %s#%-6d%s Searched range: %s\n", ColorDim, r.Iteration, ColorReset, r.Range)
	fmt.Fprintf(c.out, "            Keys searched per second: %s%s%s %s(%s)%s\n",
		ColorGreen+ColorBold, FormatHashRate(r.Rate), ColorReset, ColorDim, FormatDuration(r.Elapsed), ColorReset)
}

// CandidateFound prints the raw scanner answer.
func (c *Console) CandidateFound(pvk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearProgress()
	fmt.Fprintf(c.out, "    %s⚡ Candidate 0x%s, verifying...%s\n", ColorYellow, pvk, ColorReset)
}

// IntegrityMiss reports a candidate that did not reproduce the target.
func (c *Console) IntegrityMiss(pvk string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearProgress()
	fmt.Fprintf(c.out, "    %s⚠ Something is wrong: 0x%s (%v)%s\n", ColorRed, pvk, err, ColorReset)
}

// Progress redraws the spinner line.
func (c *Console) Progress(stats bsgs.Stats, state bsgs.State, frame int) {
	spinners := []string{"◐", "◓", "◑", "◒"}
	spinner := spinners[frame%len(spinners)]

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\r    %s%s%s %s%-15s%s │ %s%s%s │ %s%d ranges%s │ %scoverage %.4f%%%s │ %s",
		ColorCyan, spinner, ColorReset,
		ColorDim, state, ColorReset,
		ColorGreen+ColorBold, FormatHashRate(stats.AvgRate), ColorReset,
		ColorYellow, stats.Iterations, ColorReset,
		ColorDim, stats.Coverage*100, ColorReset,
		FormatDuration(stats.Elapsed))
	c.spinner = true
}

func (c *Console) clearProgress() {
	if c.spinner {
		fmt.Fprint(c.out, "\r"+strings.Repeat(" ", 110)+"\r")
		c.spinner = false
	}
}

// PrintSuccess shows the found key
func (c *Console) PrintSuccess(found *bsgs.FoundKey, stats bsgs.Stats, outputFile string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearProgress()

	fmt.Fprintf(c.out, "\n    %s%s╔══════════════════════════════════════════════════════════╗%s\n", ColorGreen, ColorBold, ColorReset)
	fmt.Fprintf(c.out, "    %s%s║                  ✨ KEY FOUND! ✨                        ║%s\n", ColorGreen, ColorBold, ColorReset)
	fmt.Fprintf(c.out, "    %s%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorGreen, ColorBold, ColorReset)

	fmt.Fprintf(c.out, "    %s🔑 PRIVATE KEY%s\n", ColorPurple+ColorBold, ColorReset)
	fmt.Fprintf(c.out, "       %s%s%s\n", ColorYellow, found.KeyHex(), ColorReset)
	fmt.Fprintf(c.out, "       %sWIF %s%s\n\n", ColorDim, address.WIF(found.Key, true), ColorReset)

	fmt.Fprintf(c.out, "    %s📍 PUBLIC KEY%s\n", ColorCyan+ColorBold, ColorReset)
	fmt.Fprintf(c.out, "       %s\n", found.Point.Hex())
	if s, err := address.Describe(found.Point); err == nil {
		fmt.Fprintf(c.out, "       %s%s  %s%s\n", ColorDim, s.Legacy, s.Ethereum, ColorReset)
	}
	fmt.Fprintln(c.out)

	fmt.Fprintf(c.out, "    %s⏱   %s%s   %s│   %s📊  %s%d ranges   %s│   %s💾  %s%s%s\n\n",
		ColorCyan, ColorReset+ColorBold, FormatDuration(stats.Elapsed),
		ColorDim,
		ColorPurple, ColorReset+ColorBold, stats.Iterations,
		ColorDim,
		ColorYellow, ColorReset+ColorBold, outputFile,
		ColorReset)
	fmt.Fprintf(c.out, "    %s%s⚠  KEEP YOUR PRIVATE KEY SECRET!%s\n", ColorRed, ColorBold, ColorReset)
}

// PrintVerifyResults prints the backend self-test.
func PrintVerifyResults(backend string, passed bool, results []scanner.TestResult) {
	fmt.Printf("  🔄 Comparing %s against CPU on known keys...\n\n", backend)
	for i, r := range results {
		fmt.Printf("  Test %d: %s\n", i+1, r.TestName)
		fmt.Printf("    🔑 Private Key: 0x%s\n", r.PrivateKey)
		if r.ErrorMessage != "" {
			fmt.Printf("    ❌ Error: %s\n\n", r.ErrorMessage)
			continue
		}
		fmt.Printf("    💻 CPU Key:     0x%s\n", r.CPUKey)
		fmt.Printf("    🎮 Backend Key: 0x%s\n", r.BackendKey)
		if r.Match {
			fmt.Printf("    ✅ MATCH!\n\n")
		} else {
			fmt.Printf("    ❌ MISMATCH!\n\n")
		}
	}

	fmt.Println("  ─────────────────────────────────────────────────────────────────")
	if passed {
		fmt.Printf("  ✅ ALL TESTS PASSED! %s resolves every known key.\n\n", backend)
	} else {
		fmt.Println("  ❌ SOME TESTS FAILED! Review the mismatches above.")
		fmt.Println()
	}
}

// FormatHashRate formats a keys-per-second rate
func FormatHashRate(rate float64) string {
	units := []struct {
		div    float64
		suffix string
	}{
		{1e18, "E"},
		{1e15, "P"},
		{1e12, "T"},
		{1e9, "G"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if rate >= u.div {
			return fmt.Sprintf("%.1f%s/s", rate/u.div, u.suffix)
		}
	}
	return fmt.Sprintf("%.0f/s", rate)
}

// FormatBytes formats a byte count with binary units.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// WaitForExit waits for user to press Enter before exiting
func WaitForExit(in io.Reader) {
	fmt.Printf("\n    %sPress Enter to exit...%s", ColorDim, ColorReset)
	bufio.NewReader(in).ReadString('\n')
}

// FormatNumber adds commas to large numbers
func FormatNumber(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+(len(s)-1)/3)
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// FormatDuration formats duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
