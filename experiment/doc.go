// Package experiment sweeps support-recovery trials over a grid of
// measurement counts M and time steps T.
//
// For every cell (M, T) with 1 <= M <= MaxM and 1 <= T <= MaxT a Sweep runs
// independent Monte-Carlo trials until its stopping rule halts, then records
// the trial count, wall time and success rate of the cell. The three
// MaxM×MaxT result matrices are handed to a ResultSink once the sweep ends.
//
// # Concurrency
//
// Cells share no mutable state and run on up to Config.Workers goroutines.
// Every cell draws from its own generator seeded by (Config.Seed, cell
// index), so a sweep is reproducible for a given seed and batch size no
// matter how many workers run it. Trials within a cell are sequential unless
// Config.BatchSize > 1, in which case each batch runs in parallel and the
// stopping rule is consulted once per batch.
//
// # Usage
//
//	cfg := experiment.DefaultConfig()
//	cfg.Algorithm = "osga"
//	sw, err := experiment.New(cfg, experiment.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	res, err := sw.Run(ctx)
package experiment
