// Verification gate: provider self-tests plus 8-way end-to-end checksum
// parity. Exit status is the contract; CI treats nonzero as a broken
// accelerated path.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/demo"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/encoder"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/logger"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/parity"
)

var (
	mode        = flag.String("mode", "DOT8 + LUT + GEMV", "Backend mode whose providers get self-tested")
	weightsPath = flag.String("weights", "", "Path to an exported weight blob (default: placeholder weights)")
	samplesPath = flag.String("samples", "", "Path to an exported sample set (default: builtin samples)")
	numSamples  = flag.Int("n", 10, "Builtin sample count when no sample file is given")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat   = flag.String("log-format", "console", "Log format (console, json)")
)

func main() {
	flag.Parse()
	logger.Setup(*logLevel, *logFormat)

	sel, err := config.ParseMode(*mode)
	if err != nil {
		logger.Log.Error("bad mode", "error", err)
		os.Exit(1)
	}

	failed := false

	names := map[string]string{"dot8": "DOT8", "lut": "LUT", "gemv": "GEMV"}
	for _, r := range parity.VerifySelection(sel) {
		if r.Pass {
			fmt.Printf("%s PASS\n", names[r.Provider])
			continue
		}
		failed = true
		fmt.Printf("%s FAIL case=%s index=%d ref=%d active=%d\n",
			names[r.Provider], r.Case, r.Index, r.Want, r.Got)
	}

	weights, err := loadWeights(*weightsPath)
	if err != nil {
		logger.Log.Error("loading weights", "error", err)
		os.Exit(1)
	}
	samples, err := loadSamples(*samplesPath, *numSamples)
	if err != nil {
		logger.Log.Error("loading samples", "error", err)
		os.Exit(1)
	}

	summary, err := parity.VerifyEndToEnd(weights, demo.Inputs(samples))
	if err != nil {
		logger.Log.Error("end-to-end parity", "error", err)
		os.Exit(1)
	}
	for _, res := range summary.Results {
		if res.Pass {
			fmt.Printf("E2E %-17s PASS\n", res.Mode)
			continue
		}
		failed = true
		fmt.Printf("E2E %-17s FAIL sample=%d baseline=0x%08X got=0x%08X\n",
			res.Mode, res.SampleIndex, res.Want, res.Got)
	}

	if failed {
		fmt.Println("PARITY: FAIL")
		os.Exit(1)
	}
	fmt.Println("PARITY: PASS")
}

func loadWeights(path string) (*encoder.Weights, error) {
	if path == "" {
		return encoder.Placeholder(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return encoder.ReadWeights(f)
}

func loadSamples(path string, n int) ([]demo.Sample, error) {
	if path == "" {
		return demo.BuiltinSamples(n), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return demo.ReadSamples(f)
}
