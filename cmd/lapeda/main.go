package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"justapengu.in/lapeda/internal/config"
	"justapengu.in/lapeda/internal/export"
	"justapengu.in/lapeda/internal/server"
	"justapengu.in/lapeda/pkg/acresults"
	"justapengu.in/lapeda/pkg/eda"
	"justapengu.in/lapeda/pkg/features"
	"justapengu.in/lapeda/pkg/laptable"
	"justapengu.in/lapeda/pkg/sessioncleaner"
)

const usage = `usage: lapeda <command> [flags]

commands:
  prepare   clean a lap table and derive features
  summary   print lap time statistics grouped by a column
  serve     run the HTTP service
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	var err error

	switch command, args := os.Args[1], os.Args[2:]; command {
	case "prepare":
		err = runPrepare(logger, args)
	case "summary":
		err = runSummary(logger, args, os.Stdout)
	case "serve":
		err = runServe(logger, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.WithError(err).Fatalf("Could not %s", os.Args[1])
	}
}

// optionalFloat is a flag that records whether it was set.
type optionalFloat struct {
	value **float64
}

func (f optionalFloat) String() string {
	if f.value == nil || *f.value == nil {
		return ""
	}

	return strconv.FormatFloat(**f.value, 'f', -1, 64)
}

func (f optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)

	if err != nil {
		return err
	}

	*f.value = &v

	return nil
}

// loadConfig reads the config file named by -c, then lets the remaining
// command line flags override it.
func loadConfig(logger *logrus.Logger, name string, args []string, register func(*flag.FlagSet, *config.Config)) (*config.Config, error) {
	conf, err := config.Load(configPathFromArgs(args))

	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("c", config.DefaultPath, "config path")
	fs.StringVar(&conf.LogLevel, "log-level", conf.LogLevel, "log level")
	register(fs, conf)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	logger.SetLevel(conf.Level())

	return conf, nil
}

// configPathFromArgs finds -c ahead of flag parsing, since the file it names
// supplies the defaults of every other flag.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "-c" || arg == "--c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "-c="):
			return strings.TrimPrefix(arg, "-c=")
		case strings.HasPrefix(arg, "--c="):
			return strings.TrimPrefix(arg, "--c=")
		case arg == "--":
			return config.DefaultPath
		}
	}

	return config.DefaultPath
}

func registerClean(fs *flag.FlagSet, conf *config.Config) {
	fs.Var(optionalFloat{&conf.Clean.LapTimeMax}, "laptime-max", "absolute cutoff in seconds")
	fs.Var(optionalFloat{&conf.Clean.DeltaFromBest}, "delta-from-best", "cutoff relative to the best lap, in seconds")
	fs.BoolVar(&conf.Clean.Verbose, "verbose", conf.Clean.Verbose, "report best lap, cutoff and lap counts")
}

// readTable reads a csv lap table, or the laps of one driver from an Assetto
// Corsa results file when path ends in .json.
func readTable(path, driver string) (*laptable.Table, error) {
	if path == "" || path == "-" {
		return laptable.ReadCSV(os.Stdin)
	}

	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		results, err := acresults.Read(f)

		if err != nil {
			return nil, err
		}

		return results.LapTable(driver)
	}

	return laptable.ReadCSV(f)
}

func registerInput(fs *flag.FlagSet, conf *config.Config) {
	fs.StringVar(&conf.Input, "i", conf.Input, "input lap table (csv or results json), - for stdin")
	fs.StringVar(&conf.Driver, "driver", conf.Driver, "driver GUID to read from a results json")
}

func runPrepare(logger *logrus.Logger, args []string) error {
	conf, err := loadConfig(logger, "prepare", args, func(fs *flag.FlagSet, conf *config.Config) {
		registerInput(fs, conf)
		fs.StringVar(&conf.Output, "o", conf.Output, "output path, - for stdout")
		fs.StringVar(&conf.Format, "f", conf.Format, "output format: csv, json or xlsx")
		registerClean(fs, conf)
	})

	if err != nil {
		return err
	}

	start := time.Now()
	entry := logger.WithField("run", uuid.New().String())

	format, err := export.FormatFor(conf.Format, conf.Output)

	if err != nil {
		return err
	}

	table, err := readTable(conf.Input, conf.Driver)

	if err != nil {
		return err
	}

	entry.Debugf("Read %d laps with columns %v", table.Len(), table.Columns())

	cleaned, cutoff, err := sessioncleaner.New(entry, nil).Clean(table, conf.Clean)

	if err != nil {
		return err
	}

	builder, err := features.NewBuilder(entry)

	if err != nil {
		return err
	}

	out, err := builder.Build(cleaned)

	if err != nil {
		return err
	}

	if err := export.WriteFile(conf.Output, format, out); err != nil {
		return err
	}

	entry.Infof("Prepared %d of %d laps (cutoff %.3f s) in %s", out.Len(), table.Len(), cutoff, durafmt.ParseShort(time.Since(start)))

	return nil
}

func runSummary(logger *logrus.Logger, args []string, w io.Writer) error {
	var by string

	conf, err := loadConfig(logger, "summary", args, func(fs *flag.FlagSet, conf *config.Config) {
		registerInput(fs, conf)
		fs.StringVar(&by, "by", laptable.ColumnStint, "column to group laps by")
	})

	if err != nil {
		return err
	}

	table, err := readTable(conf.Input, conf.Driver)

	if err != nil {
		return err
	}

	return writeSummary(w, table, by)
}

func writeSummary(w io.Writer, table *laptable.Table, by string) error {
	description, err := eda.Describe(table)

	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d laps, %d timed. best %s, median %s, mean %s\n\n",
		description.Laps,
		description.Timed,
		formatSeconds(description.Best),
		formatSeconds(description.Median),
		formatSeconds(description.Mean),
	)

	summaries, err := eda.Summarize(table, by)

	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{by, "Laps", "Best", "Mean", "Worst"})

	for _, summary := range summaries {
		tw.Append([]string{
			summary.Key,
			strconv.Itoa(summary.Laps),
			formatSeconds(summary.Best),
			formatSeconds(summary.Mean),
			formatSeconds(summary.Worst),
		})
	}

	tw.Render()

	return nil
}

func formatSeconds(s float64) string {
	return laptable.FormatLapTime(time.Duration(s * float64(time.Second)))
}

func runServe(logger *logrus.Logger, args []string) error {
	conf, err := loadConfig(logger, "serve", args, func(fs *flag.FlagSet, conf *config.Config) {
		fs.StringVar(&conf.Server.Listen, "listen", conf.Server.Listen, "HTTP listen address")
	})

	if err != nil {
		return err
	}

	builder, err := features.NewBuilder(logger)

	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	h := server.NewHTTP(conf.Server.Listen, sessioncleaner.New(logger, nil), builder, logger)

	g.Go(func() error {
		return h.Listen(ctx)
	})

	return g.Wait()
}
