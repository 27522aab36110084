// Command generate_dataset emits a synthetic binary classification
// dataset in the "label score" format consumed by cmd/calibrate. Scores
// are drawn from two Gaussians, one per class, so the class overlap and
// therefore the difficulty of threshold selection is controlled by the
// separation and sigma flags.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/pborman/getopt/v2"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("generate_dataset: ")

	var (
		size       = 500
		positives  = 0.5
		separation = 2.0
		sigma      = 1.0
		seed       = uint64(1)
		output     = ""
	)
	getopt.FlagLong(&size, "size", 's', "number of samples to generate")
	getopt.FlagLong(&positives, "positives", 'p', "fraction of positive samples")
	getopt.FlagLong(&separation, "separation", 0, "distance between the class score means")
	getopt.FlagLong(&sigma, "sigma", 0, "standard deviation of each class score distribution")
	getopt.FlagLong(&seed, "seed", 0, "random source seed")
	getopt.FlagLong(&output, "output", 'o', "output file (default stdout)")
	getopt.Parse()

	if size < 1 {
		log.Fatalf("size must be positive, got %d", size)
	}
	if positives <= 0 || positives >= 1 {
		log.Fatalf("positives must be in (0, 1), got %v", positives)
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	src := rand.NewSource(seed)
	negative := distuv.Normal{Mu: -separation / 2, Sigma: sigma, Src: src}
	positive := distuv.Normal{Mu: separation / 2, Sigma: sigma, Src: src}

	w := bufio.NewWriter(out)
	defer w.Flush()

	fmt.Fprintf(w, "# synthetic scores: %d samples, %.0f%% positive, separation %g, sigma %g, seed %d\n",
		size, positives*100, separation, sigma, seed)
	nPos := int(float64(size) * positives)
	for i := 0; i < size; i++ {
		if i < nPos {
			fmt.Fprintf(w, "1 %f\n", positive.Rand())
		} else {
			fmt.Fprintf(w, "0 %f\n", negative.Rand())
		}
	}
}
