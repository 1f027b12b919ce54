package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/game"
	"github.com/kestrel-chess/kestrel/stats"
)

// Summary is the outcome of a batch of games for the engine under test.
type Summary struct {
	Engine  stats.Tally
	Lengths stats.Statistic
	// LengthData holds every game length, for the histogram.
	LengthData []float64
	Reasons    map[string]int
	distinct   map[uint64]struct{}
}

func NewSummary() *Summary {
	return &Summary{Reasons: map[string]int{}, distinct: map[uint64]struct{}{}}
}

func (s *Summary) Add(rec *GameRecord) {
	switch rec.EngineScore() {
	case 1:
		s.Engine.AddWin()
	case 0.5:
		s.Engine.AddDraw()
	default:
		s.Engine.AddLoss()
	}
	n := float64(rec.Result.HalfMoves)
	s.Lengths.Push(n)
	s.LengthData = append(s.LengthData, n)
	s.Reasons[rec.Result.Reason.String()]++
	s.distinct[xxhash.Sum64String(rec.MoveLog)] = struct{}{}
}

// Distinct is how many different move logs were seen.
func (s *Summary) Distinct() int {
	return len(s.distinct)
}

// Report is the printable form of a Summary.
type Report struct {
	Games          int            `yaml:"games"`
	Wins           int            `yaml:"wins"`
	Draws          int            `yaml:"draws"`
	Losses         int            `yaml:"losses"`
	Score          string         `yaml:"score"`
	EloDiff        string         `yaml:"elo-diff"`
	DistinctGames  int            `yaml:"distinct-games"`
	MeanHalfMoves  float64        `yaml:"mean-half-moves"`
	StdevHalfMoves float64        `yaml:"stdev-half-moves"`
	Reasons        map[string]int `yaml:"end-reasons"`
}

func (s *Summary) Report(confidence float64) Report {
	return Report{
		Games:  s.Engine.Games(),
		Wins:   s.Engine.Wins,
		Draws:  s.Engine.Draws,
		Losses: s.Engine.Losses,
		Score: fmt.Sprintf("%.3f ± %.3f (%g%% confidence)",
			s.Engine.Score(), s.Engine.Interval(confidence), confidence),
		EloDiff:        fmt.Sprintf("%+.1f", s.Engine.EloDiff()),
		DistinctGames:  s.Distinct(),
		MeanHalfMoves:  s.Lengths.Mean(),
		StdevHalfMoves: s.Lengths.Stdev(),
		Reasons:        s.Reasons,
	}
}

// AnalyzeLogFile summarizes a CSV game log written by PlayGames.
func AnalyzeLogFile(filepath string) (*Summary, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return analyzeLog(file)
}

var outcomes = map[string]game.Outcome{
	game.WhiteWins.String(): game.WhiteWins,
	game.BlackWins.String(): game.BlackWins,
	game.Draw.String():      game.Draw,
}

var reasons = map[string]game.EndReason{
	game.Checkmate.String():   game.Checkmate,
	game.Resignation.String(): game.Resignation,
	game.Stalemate.String():   game.Stalemate,
	game.MoveLimit.String():   game.MoveLimit,
}

func analyzeLog(in io.Reader) (*Summary, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(csvHeader)
	s := NewSummary()
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && record[0] == csvHeader[0] {
			continue
		}
		rec, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s.Add(rec)
	}
	return s, nil
}

func parseRecord(record []string) (*GameRecord, error) {
	color, err := board.ParseColor(record[1])
	if err != nil {
		return nil, err
	}
	outcome, ok := outcomes[record[2]]
	if !ok {
		return nil, fmt.Errorf("unknown outcome %q", record[2])
	}
	reason, ok := reasons[record[3]]
	if !ok {
		return nil, fmt.Errorf("unknown end reason %q", record[3])
	}
	n, err := strconv.Atoi(record[4])
	if err != nil {
		return nil, err
	}
	return &GameRecord{
		GameID:      record[0],
		EngineColor: color,
		Result:      game.Result{Outcome: outcome, Reason: reason, HalfMoves: n},
		MoveLog:     record[5],
	}, nil
}
