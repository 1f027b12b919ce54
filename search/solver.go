// Package search picks moves with a negamax alpha-beta search: quiescence
// at the horizon, null-move and reverse futility pruning, counter-move
// ordering, a shared transposition table, and time-boxed iterative
// deepening.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/eval"
	"github.com/kestrel-chess/kestrel/ttable"
)

// Infinity bounds every score. A side that is mated scores -Infinity plus
// the ply at which it happens.
const Infinity = math.MaxInt32

const (
	DefaultBaselineDepth = 2
	DefaultMaxDepth      = 32
	DefaultPlayTime      = 3500 * time.Millisecond

	// MaxRepetitionExtension is how many extra plies the repetition guard
	// may search.
	MaxRepetitionExtension = 6
	mateWindow             = 1000
)

// ErrSearchTimeout aborts a depth iteration that ran out of time. The
// iterative deepening driver swallows it and keeps the last completed depth.
var ErrSearchTimeout = errors.New("search timed out")

// Stats counts the nodes of one depth iteration.
type Stats struct {
	Inner      uint64
	Leaf       uint64
	Quiescence uint64
	FromTT     uint64
}

// Total counts inner and quiescence nodes; leaves are already counted as
// quiescence nodes.
func (st Stats) Total() uint64 {
	return st.Inner + st.Quiescence
}

// Result is what Solve found.
type Result struct {
	// Move is nil when the side to move has no legal move.
	Move *board.Move
	// Score is relative to the side to move.
	Score int
	Depth int
	PV    *PVLine
	// RootEval is the static evaluation of the root, positive for White.
	RootEval int
	Stats    Stats
	Elapsed  time.Duration
}

// IsMate reports whether Score announces a forced mate, for either side.
func (r *Result) IsMate() bool {
	return IsMateScore(r.Score)
}

func IsMateScore(score int) bool {
	return score > Infinity-mateWindow || score < -Infinity+mateWindow
}

type Solver struct {
	pos   *board.Position
	store *ttable.Store

	baselineDepth int
	maxDepth      int
	playTime      time.Duration

	iterativeDeepeningOptim bool
	transpositionTableOptim bool
	nullMoveOptim           bool
	futilityOptim           bool
	counterMoveOptim        bool

	// timeBoxed is set while a depth iteration runs under the time budget.
	timeBoxed bool

	counterMoves [board.NumSquares][board.NumSquares]*board.Move
	// Our last four chosen moves, most recent first.
	prevMoves [4]*board.Move
	moveCount int

	stats Stats
	nodes atomic.Uint64

	logStream io.Writer
}

// Init sets the solver up with its defaults. store may be shared between
// solvers that never search at the same time.
func (s *Solver) Init(store *ttable.Store) {
	if store == nil {
		store = ttable.New(ttable.DefaultCapacity)
	}
	s.store = store
	s.baselineDepth = DefaultBaselineDepth
	s.maxDepth = DefaultMaxDepth
	s.playTime = DefaultPlayTime
	s.iterativeDeepeningOptim = true
	s.transpositionTableOptim = true
	s.nullMoveOptim = true
	s.futilityOptim = true
	s.counterMoveOptim = true
	s.moveCount = 1
}

// runDepth searches the root to exactly depth plies.
func (s *Solver) runDepth(ctx context.Context, depth int, stm board.Color) (*Result, error) {
	s.stats = Stats{}
	tstart := time.Now()
	if s.logStream != nil {
		fmt.Fprintf(s.logStream, "- ply: %d\n", depth)
	}
	pv := newPVLine(s.pos.Near())
	score, err := s.negamax(ctx, 0, depth, -Infinity, Infinity, stm, nil, pv, false)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Move:    pv.GetPVMove(),
		Score:   score,
		Depth:   depth,
		PV:      pv,
		Stats:   s.stats,
		Elapsed: time.Since(tstart),
	}
	log.Info().
		Int("ply", depth).
		Int("score", score).
		Str("eval", formatPawns(score*stm.Sign())).
		Str("pv", pv.NLBString()).
		Uint64("inner", s.stats.Inner).
		Uint64("leaf", s.stats.Leaf).
		Uint64("quies", s.stats.Quiescence).
		Uint64("total", s.stats.Total()).
		Uint64("from-tt", s.stats.FromTT).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("best-val")
	return res, nil
}

// iterativelyDeepen searches from the baseline depth upward until a depth
// runs out of time or the depth cap is reached, and returns the deepest
// completed result.
func (s *Solver) iterativelyDeepen(ctx context.Context, stm board.Color) (*Result, error) {
	tctx, cancel := context.WithTimeout(ctx, s.playTime)
	defer cancel()
	s.timeBoxed = true
	defer func() { s.timeBoxed = false }()

	var best *Result
	for depth := s.baselineDepth; depth <= s.maxDepth; depth++ {
		log.Debug().Int("plies", depth).Msg("deepening-iteratively")
		res, err := s.runDepth(tctx, depth, stm)
		if errors.Is(err, ErrSearchTimeout) {
			log.Debug().Int("plies", depth).Msg("depth-timed-out")
			break
		}
		if err != nil {
			return best, err
		}
		best = res
		if res.Move == nil || res.IsMate() {
			// A forced mate is final.
			break
		}
	}
	return best, nil
}

// repeating is true when our last four moves shuttle between two moves and
// the candidate would repeat the pattern once more.
func (s *Solver) repeating(candidate *board.Move) bool {
	p := s.prevMoves
	return p[0] != nil && p[0].Equals(p[2]) &&
		p[1] != nil && p[1].Equals(p[3]) &&
		candidate != nil && candidate.Equals(p[1])
}

// Solve returns the best move for stm in pos. pos is used as scratch space
// during the search and is restored before Solve returns; it must not be
// touched by anything else meanwhile.
func (s *Solver) Solve(ctx context.Context, pos *board.Position, stm board.Color) (*Result, error) {
	if s.store == nil {
		s.Init(nil)
	}
	s.pos = pos
	defer func() { s.pos = nil }()
	tstart := time.Now()
	rootEval := eval.Evaluate(pos).Score
	s.nodes.Store(0)
	log.Debug().Int("baseline-depth", s.baselineDepth).Int("max-depth", s.maxDepth).
		Dur("play-time", s.playTime).Bool("iterative-deepening", s.iterativeDeepeningOptim).
		Msg("negamax-solve-config")

	var res *Result
	done := make(chan struct{})
	g := &errgroup.Group{}

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		defer close(done)
		var err error
		if s.iterativeDeepeningOptim {
			res, err = s.iterativelyDeepen(ctx, stm)
		} else {
			res, err = s.runDepth(ctx, s.baselineDepth, stm)
		}
		if err != nil {
			return err
		}
		if !s.repeating(res.Move) {
			return nil
		}
		// Fixed-depth searches with no clock, until the repeated move is
		// no longer best.
		for add := 1; add <= MaxRepetitionExtension && s.repeating(res.Move); add++ {
			log.Info().Int("plies", s.baselineDepth+add).Msg("repetition-deepening")
			deeper, err := s.runDepth(ctx, s.baselineDepth+add, stm)
			if err != nil {
				return err
			}
			res = deeper
		}
		return nil
	})

	err := g.Wait()
	if res == nil {
		return nil, err
	}
	res.RootEval = rootEval
	copy(s.prevMoves[1:], s.prevMoves[:3])
	s.prevMoves[0] = res.Move
	s.moveCount++

	log.Info().
		Int("move-number", s.moveCount-1).
		Str("color", stm.String()).
		Int("depth", res.Depth).
		Int("score", res.Score).
		Uint64("ttable-created", s.store.Created()).
		Uint64("ttable-lookups", s.store.Lookups()).
		Uint64("ttable-hits", s.store.Hits()).
		Int("ttable-size", s.store.Len()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return res, err
}

func (s *Solver) SetBaselineDepth(d int) {
	s.baselineDepth = max(d, 1)
	s.maxDepth = max(s.maxDepth, s.baselineDepth)
}

func (s *Solver) SetMaxDepth(d int) {
	s.maxDepth = max(d, s.baselineDepth)
}

func (s *Solver) SetPlayTime(t time.Duration) {
	s.playTime = t
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetNullMoveOptim(n bool) {
	s.nullMoveOptim = n
}

func (s *Solver) SetFutilityOptim(f bool) {
	s.futilityOptim = f
}

func (s *Solver) SetCounterMoveOptim(c bool) {
	s.counterMoveOptim = c
}

func (s *Solver) SetTranspositionTable(store *ttable.Store) {
	s.store = store
}

func (s *Solver) TranspositionTable() *ttable.Store {
	return s.store
}

// SetLogStream makes the solver write every root line it searches to w.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

func (s *Solver) BaselineDepth() int {
	return s.baselineDepth
}

func (s *Solver) PlayTime() time.Duration {
	return s.playTime
}
