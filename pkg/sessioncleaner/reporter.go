package sessioncleaner

import (
	"github.com/dustin/go-humanize"
)

// Reporter receives the diagnostics of a verbose Clean call.
type Reporter interface {
	Report(best, cutoff float64, before, after int)
}

type ReporterFunc func(best, cutoff float64, before, after int)

func (f ReporterFunc) Report(best, cutoff float64, before, after int) {
	f(best, cutoff, before, after)
}

type LogReporter struct {
	logger Logger
}

func NewLogReporter(logger Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(best, cutoff float64, before, after int) {
	r.logger.Infof("Best lap: %.3f s, cutoff: %.3f s", best, cutoff)
	r.logger.Infof(
		"Laps before: %s, after filtering: %s (removed %s)",
		humanize.Comma(int64(before)),
		humanize.Comma(int64(after)),
		humanize.Comma(int64(before-after)),
	)
}
