package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		lengths []int
		mean    float64
		stdev   float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, l := range c.lengths {
			s.Push(float64(l))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.lengths))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestTally(t *testing.T) {
	is := is.New(t)
	var tl Tally
	is.Equal(tl.EloDiff(), 0.0)
	tl.AddWin()
	tl.AddWin()
	tl.AddDraw()
	tl.AddLoss()
	is.Equal(tl.Games(), 4)
	is.True(FuzzyEqual(tl.Score(), 0.625))
	is.True(tl.Interval(95) > 0)
	is.True(tl.Interval(99) > tl.Interval(95))
	// 62.5% is a little under +89 Elo.
	is.True(math.Abs(tl.EloDiff()-88.7) < 0.1)

	var sweep Tally
	sweep.AddWin()
	is.True(math.IsInf(sweep.EloDiff(), 1))
}

func TestHistogram(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(FprintHistogram(&buf, nil, 5))
	is.Equal(buf.Len(), 0)
	is.NoErr(FprintHistogram(&buf, []float64{10, 20, 20, 30, 40, 41}, 3))
	is.True(strings.Count(buf.String(), "\n") >= 3)
}
