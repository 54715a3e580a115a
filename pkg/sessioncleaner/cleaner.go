package sessioncleaner

import (
	"errors"
	"math"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"justapengu.in/lapeda/pkg/laptable"
)

var ErrConfiguration = errors.New("sessioncleaner: must supply one cutoff strategy (laptime_max_s or delta_from_best)")

type Logger = logrus.FieldLogger

// Options selects how the cutoff lap time is computed. DeltaFromBest takes
// precedence over LapTimeMax when both are set.
type Options struct {
	LapTimeMax    *float64 `json:"laptime_max_s" yaml:"laptime_max_s" env:"LAPTIME_MAX_S"`
	DeltaFromBest *float64 `json:"delta_from_best" yaml:"delta_from_best" env:"DELTA_FROM_BEST"`
	Verbose       bool     `json:"verbose" yaml:"verbose" env:"VERBOSE"`
}

func AbsoluteCutoff(seconds float64) Options {
	return Options{LapTimeMax: &seconds}
}

func RelativeCutoff(delta float64) Options {
	return Options{DeltaFromBest: &delta}
}

func (o Options) validate() error {
	if o.LapTimeMax == nil && o.DeltaFromBest == nil {
		return ErrConfiguration
	}

	for _, v := range []*float64{o.LapTimeMax, o.DeltaFromBest} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return pkgerrors.Wrapf(ErrConfiguration, "cutoff %v is not a finite number", *v)
		}
	}

	return nil
}

type Cleaner struct {
	logger   Logger
	reporter Reporter
}

// New returns a Cleaner. A nil reporter reports through logger, and a nil
// logger means the logrus standard logger.
func New(logger Logger, reporter Reporter) *Cleaner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if reporter == nil {
		reporter = NewLogReporter(logger)
	}

	return &Cleaner{
		logger:   logger,
		reporter: reporter,
	}
}

// Clean keeps the laps whose LapTime_s is at most the cutoff, in their
// original order, and returns them with the cutoff that was applied. The
// input table is never modified.
func (c *Cleaner) Clean(table *laptable.Table, opts Options) (*laptable.Table, float64, error) {
	if err := opts.validate(); err != nil {
		return nil, 0, err
	}

	if opts.LapTimeMax != nil && opts.DeltaFromBest != nil {
		c.logger.Warnf("Both laptime_max_s (%.3f) and delta_from_best (%.3f) supplied, using delta_from_best", *opts.LapTimeMax, *opts.DeltaFromBest)
	}

	df, err := laptable.WithLapTimeSeconds(table)

	if err != nil {
		return nil, 0, err
	}

	seconds, valid, err := laptable.LapTimeSeconds(df)

	if err != nil {
		return nil, 0, err
	}

	best, ok := minimum(seconds, valid)

	if !ok {
		return nil, 0, pkgerrors.Wrapf(laptable.ErrEmptyInput, "cannot compute best lap over %d laps", df.Len())
	}

	var cutoff float64

	if opts.DeltaFromBest != nil {
		cutoff = best + *opts.DeltaFromBest
	} else {
		cutoff = *opts.LapTimeMax
	}

	before := df.Len()

	df = df.Filter(func(row int) bool {
		return valid[row] && seconds[row] <= cutoff
	})

	if opts.Verbose {
		c.reporter.Report(best, cutoff, before, df.Len())
	}

	return df, cutoff, nil
}

// Clean runs a Cleaner that reports through the logrus standard logger.
func Clean(table *laptable.Table, opts Options) (*laptable.Table, float64, error) {
	return New(nil, nil).Clean(table, opts)
}

func minimum(values []float64, valid []bool) (float64, bool) {
	best, found := math.Inf(1), false

	for i, v := range values {
		if valid[i] && v < best {
			best, found = v, true
		}
	}

	return best, found
}
