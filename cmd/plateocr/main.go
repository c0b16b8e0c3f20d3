package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"plateocr/internal/config"
	"plateocr/internal/logger"
	"plateocr/internal/service/ai"
	"plateocr/internal/service/plate"
)

// newDetector is swapped in tests.
var newDetector = ai.NewDetector

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	prog := filepath.Base(os.Args[0])

	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Path to the exported character model")
	flags.StringVar(&cfg.LabelsPath, "labels", cfg.LabelsPath, "Class names file (dataset yaml or one label per line)")
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "Inference backend: opencv, onnx or tesseract")
	flags.Float64Var(&cfg.IoUThreshold, "iou", cfg.IoUThreshold, "IoU threshold for non-maximum suppression")
	jsonOutput := flags.Bool("json", false, "Print the reading as JSON")
	annotatePath := flags.String("annotate", "", "Write a copy of the image with character boxes drawn")
	verbose := flags.Bool("v", false, "Log inference details to stderr")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if flags.NArg() < 1 {
		plate.WriteUsage(stdout, prog)
		return 1
	}

	imagePath := flags.Arg(0)
	confidence := cfg.Confidence
	if flags.NArg() > 1 {
		value, err := strconv.ParseFloat(flags.Arg(1), 64)
		if err != nil {
			fmt.Fprintf(stderr, "Error: invalid confidence %q\n", flags.Arg(1))
			return 1
		}
		confidence = value
	}
	if err := plate.ValidateConfidence(confidence); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logOutput := io.Discard
	if *verbose {
		logOutput = stderr
	}
	log := logger.NewConsoleLogger(logOutput)

	if !*jsonOutput {
		plate.WriteHeader(stdout, imagePath, confidence)
	}

	detector, err := newDetector(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer detector.Close()

	reading, err := plate.NewReader(detector, log).ReadFile(imagePath, confidence)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *annotatePath != "" {
		if err := annotate(imagePath, *annotatePath, reading.Characters); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reading); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if len(reading.Characters) == 0 {
		plate.WriteNoDetections(stdout)
		return 0
	}

	plate.WriteReading(stdout, reading)
	return 0
}
