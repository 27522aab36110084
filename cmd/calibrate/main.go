// Command calibrate is a small diagnostic front end for the calibration
// and threshold-selection packages. It reads whitespace-separated
// "label score" rows from a file (or stdin) and prints either the ROC
// table, the threshold selected by a policy, or the calibration curve of
// probability predictions.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"

	"github.com/PGryllos/scikit-learn/calibration"
	"github.com/PGryllos/scikit-learn/cutoff"
)

type config struct {
	Mode      string
	Method    string
	Bound     float64
	Bins      int
	Normalize bool
	Header    bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("calibrate: ")

	cfg := config{Mode: "roc", Method: "roc", Bins: 5}
	getopt.FlagLong(&cfg.Mode, "mode", 'm', "what to compute: roc, threshold or curve")
	getopt.FlagLong(&cfg.Method, "method", 0, "threshold policy: roc, max_tpr or max_tnr")
	getopt.FlagLong(&cfg.Bound, "bound", 0, "rate bound for max_tpr/max_tnr")
	getopt.FlagLong(&cfg.Bins, "bins", 'b', "number of calibration curve bins")
	getopt.FlagLong(&cfg.Normalize, "normalize", 'n', "min-max rescale predictions into [0,1]")
	getopt.FlagLong(&cfg.Header, "header", 0, "print a column header")
	getopt.SetParameters("[scores-file]")
	getopt.Parse()

	in := os.Stdin
	if args := getopt.Args(); len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	labels, scores, err := readScores(in)
	if err != nil {
		log.Fatal(err)
	}

	switch cfg.Mode {
	case "roc":
		runROC(cfg, labels, scores)
	case "threshold":
		runThreshold(cfg, labels, scores)
	case "curve":
		runCurve(cfg, labels, scores)
	default:
		log.Fatalf("unknown mode %q", cfg.Mode)
	}
}

// readScores parses "label score" rows, skipping blank lines and lines
// starting with '#'.
func readScores(r io.Reader) (labels, scores []float64, err error) {
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad label: %w", line, err)
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad score: %w", line, err)
		}
		labels = append(labels, label)
		scores = append(scores, score)
	}
	return labels, scores, scanner.Err()
}

func runROC(cfg config, labels, scores []float64) {
	curve, err := cutoff.Curve(labels, scores, 1)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Header {
		fmt.Println("fpr tpr threshold")
	}
	for _, p := range curve {
		fmt.Printf("%f %f %f\n", p.FPR, p.TPR, p.Threshold)
	}
}

func runThreshold(cfg config, labels, scores []float64) {
	curve, err := cutoff.Curve(labels, scores, 1)
	if err != nil {
		log.Fatal(err)
	}
	threshold, err := cutoff.SelectThreshold(curve, cutoff.Method(cfg.Method), cfg.Bound)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%f\n", threshold)
}

func runCurve(cfg config, labels, scores []float64) {
	probTrue, probPred, err := calibration.Curve(labels, scores, cfg.Normalize, cfg.Bins)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Header {
		fmt.Println("mean_predicted fraction_positive")
	}
	for i := range probTrue {
		fmt.Printf("%f %f\n", probPred[i], probTrue[i])
	}
}
