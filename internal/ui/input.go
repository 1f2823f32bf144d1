package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// Engines offered by the prompt and the -engine flag.
const (
	EngineAuto = "auto"
	EngineCPU  = "cpu"
	EngineGPU  = "gpu"
)

// Answers is what the interactive prompt collects.
type Answers struct {
	Engine    string
	PublicKey string
	Keyspace  string
}

// PromptSearch asks for the engine, the target public key and the keyspace.
// An invalid public key is asked for again; a blank keyspace keeps the default.
func PromptSearch(in io.Reader, gpuAvailable bool) (*Answers, error) {
	reader := bufio.NewReader(in)
	a := &Answers{}

	fmt.Printf("    %s⚡ SELECT ENGINE%s\n", ColorPurple+ColorBold, ColorReset)
	fmt.Printf("    %s[1]%s 💻 CPU (%d cores)\n", ColorCyan, ColorReset, runtime.NumCPU())
	if gpuAvailable {
		fmt.Printf("    %s[2]%s 🎮 GPU %s(bt2)%s ⚡\n", ColorCyan, ColorReset, ColorDim, ColorReset)
	} else {
		fmt.Printf("    %s[2]%s 🎮 GPU %s(N/A)%s\n", ColorCyan, ColorReset, ColorDim, ColorReset)
	}
	fmt.Printf("\n    %s→%s ", ColorGreen, ColorReset)
	choice, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	if choice == "2" && gpuAvailable {
		a.Engine = EngineGPU
		fmt.Printf("    %s✓ GPU Selected%s\n\n", ColorGreen, ColorReset)
	} else {
		a.Engine = EngineCPU
		fmt.Printf("    %s✓ CPU Selected%s\n\n", ColorGreen, ColorReset)
	}

	fmt.Printf("    %s🎯 TARGET%s\n", ColorPurple+ColorBold, ColorReset)
	for a.PublicKey == "" {
		fmt.Printf("    %sPublic key%s (02.../03.../04...): ", ColorCyan, ColorReset)
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		if _, perr := secp.ParsePublicKey(line); perr != nil {
			fmt.Printf("    %s⚠ Invalid! %v%s\n", ColorRed, perr, ColorReset)
			continue
		}
		a.PublicKey = line
	}

	for a.Keyspace == "" {
		fmt.Printf("    %sKeyspace%s (min:max hex, Enter for full range): ", ColorCyan, ColorReset)
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		if line == "" {
			a.Keyspace = bsgs.DefaultKeyspace
			break
		}
		if _, kerr := bsgs.ParseKeyspace(line); kerr != nil {
			fmt.Printf("    %s⚠ Invalid! %v%s\n", ColorRed, kerr, ColorReset)
			continue
		}
		a.Keyspace = line
	}
	fmt.Println()
	return a, nil
}

// readLine returns the trimmed next line. A final line without a newline is
// returned; EOF before any input is an error.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
