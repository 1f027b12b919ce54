package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value for a confidence level given in
// percent, e.g. 1.96 for 95.
func ZVal(confidence float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return dist.Quantile((1 + confidence/100) / 2)
}

// Tally counts the results of a match from one player's point of view.
type Tally struct {
	Wins   int
	Draws  int
	Losses int
	points Statistic
}

func (t *Tally) AddWin() {
	t.Wins++
	t.points.Push(1)
}

func (t *Tally) AddDraw() {
	t.Draws++
	t.points.Push(0.5)
}

func (t *Tally) AddLoss() {
	t.Losses++
	t.points.Push(0)
}

func (t *Tally) Games() int {
	return t.Wins + t.Draws + t.Losses
}

// Score is the fraction of points won: a win is one point, a draw half.
func (t *Tally) Score() float64 {
	return t.points.Mean()
}

// Interval is the half-width of the confidence interval around Score.
func (t *Tally) Interval(confidence float64) float64 {
	return ZVal(confidence) * t.points.StandardError()
}

// EloDiff converts Score into a rating difference. It is infinite for a
// clean sweep either way.
func (t *Tally) EloDiff() float64 {
	s := t.Score()
	if t.Games() == 0 {
		return 0
	}
	if s <= 0 || s >= 1 {
		return math.Copysign(math.Inf(1), s-0.5)
	}
	return -400 * math.Log10(1/s-1)
}
