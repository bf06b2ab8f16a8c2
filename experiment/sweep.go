package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/regfish7/anomaly/experiment/stopping"
	"github.com/regfish7/anomaly/internal/logging"
	"github.com/regfish7/anomaly/mmv/recovery"
)

// Sweep runs the trials of one Config. A Sweep is safe to Run more than
// once; every run reproduces the same counts and scores.
type Sweep struct {
	cfg      Config
	rec      recovery.Recoverer
	rule     stopping.Rule
	logger   *slog.Logger
	observer Observer
	sink     ResultSink
	runID    string
}

// Option configures a Sweep.
type Option func(*Sweep)

// WithLogger sets the progress logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweep) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver adds a progress observer.
func WithObserver(o Observer) Option {
	return func(s *Sweep) {
		if o == nil {
			return
		}
		if s.observer == nil {
			s.observer = o
			return
		}
		s.observer = Observers{s.observer, o}
	}
}

// WithSink adds a result sink called once at the end of Run.
func WithSink(sink ResultSink) Option {
	return func(s *Sweep) {
		if sink == nil {
			return
		}
		if s.sink == nil {
			s.sink = sink
			return
		}
		s.sink = Sinks{s.sink, sink}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(s *Sweep) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithRecoverer replaces the recoverer looked up from Config.Algorithm.
// rec must be safe for concurrent use when Workers or BatchSize exceed one.
func WithRecoverer(rec recovery.Recoverer) Option {
	return func(s *Sweep) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// New validates cfg and resolves its recoverer and stopping rule.
func New(cfg Config, opts ...Option) (*Sweep, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var ruleOpts []stopping.ConfidenceOption
	if cfg.Alpha != 0 {
		ruleOpts = append(ruleOpts, stopping.WithAlpha(cfg.Alpha))
	}
	rule, err := stopping.New(cfg.Confidence, cfg.Threshold, ruleOpts...)
	if err != nil {
		return nil, err
	}

	s := &Sweep{
		cfg:    cfg,
		rule:   rule,
		logger: logging.Discard(),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.rec == nil {
		rec, err := recovery.Lookup(cfg.Algorithm)
		if err != nil {
			return nil, err
		}
		s.rec = rec
	}
	return s, nil
}

// Config returns the sweep configuration.
func (s *Sweep) Config() Config { return s.cfg }

// Rule returns the stopping rule.
func (s *Sweep) Rule() stopping.Rule { return s.rule }

// Label returns the output label including the run identifier.
func (s *Sweep) Label() Label {
	l := s.cfg.Label()
	l.Algorithm = s.rec.Name()
	l.RunID = s.runID
	return l
}

// Run executes every cell of the grid. It returns the context error if ctx
// is cancelled, and the first trial error wrapped with its cell otherwise.
// A sink failure is returned together with the complete Result.
func (s *Sweep) Run(ctx context.Context) (*Result, error) {
	cfg := s.cfg
	label := s.Label()
	res := newResult(label, cfg.MaxM, cfg.MaxT)

	log := s.logger.With("run_id", label.RunID, "algorithm", label.Algorithm, "K", label.K)
	log.Info("sweep started",
		"N", label.N, "M", cfg.MaxM, "T", cfg.MaxT,
		"rule", s.rule.String(), "time_varying", cfg.TimeVarying,
		"workers", cfg.workers(), "batch", cfg.batchSize())

	rows := make([]rowProgress, cfg.MaxM)
	for i := range rows {
		rows[i].remaining.Store(int64(cfg.MaxT))
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

schedule:
	for m := 1; m <= cfg.MaxM; m++ {
		for t := 1; t <= cfg.MaxT; t++ {
			if gctx.Err() != nil {
				break schedule
			}
			g.Go(func() error {
				cs, err := s.RunCell(gctx, m, t)
				if err != nil {
					return err
				}
				res.set(cs)
				row := &rows[m-1]
				row.busy.Add(int64(cs.Elapsed))
				if row.remaining.Add(-1) == 0 {
					log.Info("row complete", "m", m, "cell_time", time.Duration(row.busy.Load()))
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("sweep finished", "elapsed", time.Since(start), "truncated_cells", res.Truncated())

	if s.sink != nil {
		if err := s.sink.Record(res); err != nil {
			return res, fmt.Errorf("experiment: record results: %w", err)
		}
	}
	return res, nil
}

type rowProgress struct {
	remaining atomic.Int64
	busy      atomic.Int64
}

// RunCell runs trials for the single cell (m, t) until the stopping rule
// halts or the cell timeout expires. At least one batch always runs.
func (s *Sweep) RunCell(ctx context.Context, m, t int) (CellStats, error) {
	cfg := s.cfg
	if m < 1 || m > cfg.MaxM || t < 1 || t > cfg.MaxT {
		return CellStats{}, fmt.Errorf("experiment: cell M=%d T=%d outside %dx%d grid", m, t, cfg.MaxM, cfg.MaxT)
	}
	if err := ctx.Err(); err != nil {
		return CellStats{}, err
	}

	cellCtx := ctx
	if cfg.CellTimeout > 0 {
		var cancel context.CancelFunc
		cellCtx, cancel = context.WithTimeout(ctx, cfg.CellTimeout)
		defer cancel()
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, uint64((m-1)*cfg.MaxT+(t-1))))
	cs := CellStats{M: m, T: t}
	start := time.Now()
	for {
		ok, n, err := s.batch(ctx, rng, m, t)
		cs.Successes += ok
		cs.Trials += n
		if err != nil {
			return CellStats{}, fmt.Errorf("experiment: cell M=%d T=%d trial %d: %w", m, t, cs.Trials+1, err)
		}
		if !s.rule.KeepGoing(cs.Successes, cs.Trials) {
			break
		}
		if err := cellCtx.Err(); err != nil {
			if parentErr := ctx.Err(); parentErr != nil {
				return CellStats{}, parentErr
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				return CellStats{}, err
			}
			cs.Truncated = true
			break
		}
	}
	cs.Elapsed = time.Since(start)
	cs.SuccessRate = float64(cs.Successes) / float64(cs.Trials)

	if cs.Truncated {
		s.logger.Warn("cell truncated",
			"m", m, "t", t, "trials", cs.Trials, "timeout", cfg.CellTimeout)
	}
	s.logger.Debug("cell done",
		"m", m, "t", t, "trials", cs.Trials, "successes", cs.Successes,
		"rate", cs.SuccessRate, "elapsed", cs.Elapsed)
	if s.observer != nil {
		s.observer.CellDone(cs)
	}
	return cs, nil
}

// batch runs one batch of trials and returns (successes, trials). A batch
// of one draws directly from the cell generator; larger batches seed one
// generator per trial from it, in order, and run concurrently.
func (s *Sweep) batch(ctx context.Context, rng *rand.Rand, m, t int) (int, int, error) {
	size := s.cfg.batchSize()
	if size == 1 {
		ok, err := s.trial(ctx, rng, m, t)
		if err != nil {
			return 0, 0, err
		}
		return boolToInt(ok), 1, nil
	}

	seeds := make([][2]uint64, size)
	for i := range seeds {
		seeds[i] = [2]uint64{rng.Uint64(), rng.Uint64()}
	}
	results := make([]bool, size)
	var g errgroup.Group
	for i, seed := range seeds {
		g.Go(func() error {
			ok, err := s.trial(ctx, rand.New(rand.NewPCG(seed[0], seed[1])), m, t)
			results[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	successes := 0
	for _, ok := range results {
		successes += boolToInt(ok)
	}
	return successes, size, nil
}

func (s *Sweep) trial(ctx context.Context, rng *rand.Rand, m, t int) (bool, error) {
	start := time.Now()
	tr, err := recovery.RunTrial(rng, s.cfg.Model, t, m, s.cfg.TimeVarying, s.rec)
	if err != nil {
		return false, err
	}
	s.logger.Log(ctx, logging.LevelTrace, "trial done",
		"m", m, "t", t, "success", tr.Success, "truth", tr.Truth, "predicted", tr.Predicted)
	if s.observer != nil {
		s.observer.TrialDone(m, t, tr.Success, time.Since(start))
	}
	return tr.Success, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
