package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/backend"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/demo"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/encoder"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/logger"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/monitoring"
)

var (
	mode        = flag.String("mode", "BASELINE", "Backend mode (BASELINE, DOT8, LUT, GEMV, or '+' combinations)")
	hwDot       = flag.Bool("hw-dot", false, "Force the accelerated dot-product provider")
	hwLUT       = flag.Bool("hw-lut", false, "Force the accelerated exponential-lookup provider")
	hwGemv      = flag.Bool("hw-gemv", false, "Force the accelerated matrix-vector provider")
	weightsPath = flag.String("weights", "", "Path to an exported weight blob (default: placeholder weights)")
	samplesPath = flag.String("samples", "", "Path to an exported sample set (default: builtin samples)")
	clsPath     = flag.String("classifier", "", "Path to an exported classifier blob (default: placeholder)")
	numSamples  = flag.Int("n", 10, "Builtin sample count when no sample file is given")
	metricsAddr = flag.String("metrics", "", "Address to serve Prometheus metrics (empty: disabled)")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat   = flag.String("log-format", "console", "Log format (console, json)")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.LogLevel = *logLevel
	cfg.LogFormat = *logFormat
	cfg.WeightsPath = *weightsPath
	cfg.SamplesPath = *samplesPath
	cfg.MetricsAddr = *metricsAddr
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	sel, err := config.ParseMode(*mode)
	if err != nil {
		logger.Log.Error("bad mode", "error", err)
		os.Exit(1)
	}
	sel.HWDot = sel.HWDot || *hwDot
	sel.HWExpLUT = sel.HWExpLUT || *hwLUT
	sel.HWMatVec = sel.HWMatVec || *hwGemv
	cfg.Selection = sel

	if cfg.MetricsAddr != "" {
		mon := monitoring.New(sel.Mode())
		go func() {
			if err := mon.Start(cfg.MetricsAddr); err != nil && err != http.ErrServerClosed {
				logger.Log.Error("monitor server error", "error", err)
			}
		}()
	}

	weights, err := loadWeights(cfg.WeightsPath)
	if err != nil {
		logger.Log.Error("loading weights", "error", err)
		os.Exit(1)
	}
	samples, err := loadSamples(cfg.SamplesPath, *numSamples)
	if err != nil {
		logger.Log.Error("loading samples", "error", err)
		os.Exit(1)
	}
	cls, err := loadClassifier(*clsPath)
	if err != nil {
		logger.Log.Error("loading classifier", "error", err)
		os.Exit(1)
	}

	enc, err := encoder.New(weights, backend.NewSet(sel))
	if err != nil {
		logger.Log.Error("building encoder", "error", err)
		os.Exit(1)
	}

	logger.Log.Info("running demo", "mode", sel.Mode(), "samples", len(samples))
	if err := demo.Run(os.Stdout, enc, cls, sel.Mode(), samples); err != nil {
		logger.Log.Error("demo run failed", "error", err)
		os.Exit(1)
	}
}

func loadWeights(path string) (*encoder.Weights, error) {
	if path == "" {
		logger.Log.Debug("using placeholder weights")
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
		logger.Log.Debug("using builtin samples", "count", n)
		return demo.BuiltinSamples(n), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return demo.ReadSamples(f)
}

func loadClassifier(path string) (*demo.Classifier, error) {
	if path == "" {
		return demo.PlaceholderClassifier(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return demo.ReadClassifier(f)
}
