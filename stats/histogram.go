package stats

import (
	"io"

	"github.com/aybabtme/uniplot/histogram"
)

const histogramWidth = 40

// FprintHistogram draws data as a text histogram with the given number of
// bins.
func FprintHistogram(w io.Writer, data []float64, bins int) error {
	if len(data) == 0 {
		return nil
	}
	h := histogram.Hist(bins, data)
	return histogram.Fprint(w, h, histogram.Linear(histogramWidth))
}
