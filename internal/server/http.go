package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"justapengu.in/lapeda/internal/export"
	"justapengu.in/lapeda/pkg/eda"
	"justapengu.in/lapeda/pkg/features"
	"justapengu.in/lapeda/pkg/laptable"
	"justapengu.in/lapeda/pkg/sessioncleaner"
)

type Logger = logrus.FieldLogger

const maxBodySize = 32 << 20

type HTTP struct {
	server *http.Server
	logger Logger

	listen   string
	cleaner  *sessioncleaner.Cleaner
	builder  *features.Builder
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

func NewHTTP(listen string, cleaner *sessioncleaner.Cleaner, builder *features.Builder, logger Logger) *HTTP {
	registry := prometheus.NewRegistry()

	return &HTTP{
		listen:   listen,
		cleaner:  cleaner,
		builder:  builder,
		logger:   logger,
		metrics:  NewMetrics(registry),
		gatherer: registry,
	}
}

// Listen serves until ctx is cancelled, then shuts the server down.
func (h *HTTP) Listen(ctx context.Context) error {
	h.logger.Infof("HTTP server listening on: %s", h.listen)

	h.server = &http.Server{
		Handler: h.Router(),
		Addr:    h.listen,
	}

	errCh := make(chan error, 1)

	go func() {
		err := h.server.ListenAndServe()

		if err == http.ErrServerClosed {
			err = nil
		}

		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Infof("Shutting down HTTP server")

		return h.server.Shutdown(shutdownCtx)
	}
}

func (h *HTTP) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Post("/clean", h.Clean)
		r.Post("/features", h.Features)
		r.Post("/prepare", h.Prepare)
		r.Post("/summary", h.Summary)
	})

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Debugf("Could not find HTTP response for URL: %s", r.URL.String())

		http.NotFound(w, r)
	})

	return router
}

func (h *HTTP) Clean(w http.ResponseWriter, r *http.Request) {
	table, opts, ok := h.readRequest(w, r, "clean")

	if !ok {
		return
	}

	cleaned, ok := h.clean(w, r, table, opts)

	if !ok {
		return
	}

	h.respond(w, r, "clean", cleaned)
}

func (h *HTTP) Features(w http.ResponseWriter, r *http.Request) {
	table, _, ok := h.readRequest(w, r, "features")

	if !ok {
		return
	}

	out, err := h.builder.Build(table)

	if err != nil {
		h.fail(w, r, "features", err)
		return
	}

	h.respond(w, r, "features", out)
}

func (h *HTTP) Prepare(w http.ResponseWriter, r *http.Request) {
	table, opts, ok := h.readRequest(w, r, "prepare")

	if !ok {
		return
	}

	cleaned, ok := h.clean(w, r, table, opts)

	if !ok {
		return
	}

	out, err := h.builder.Build(cleaned)

	if err != nil {
		h.fail(w, r, "prepare", err)
		return
	}

	h.respond(w, r, "prepare", out)
}

func (h *HTTP) Summary(w http.ResponseWriter, r *http.Request) {
	table, _, ok := h.readRequest(w, r, "summary")

	if !ok {
		return
	}

	by := r.URL.Query().Get("by")

	if by == "" {
		by = laptable.ColumnStint
	}

	summaries, err := eda.Summarize(table, by)

	if err != nil {
		h.fail(w, r, "summary", err)
		return
	}

	h.metrics.Requests.WithLabelValues("summary", "ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summaries)
}

func (h *HTTP) clean(w http.ResponseWriter, r *http.Request, table *laptable.Table, opts sessioncleaner.Options) (*laptable.Table, bool) {
	cleaned, cutoff, err := h.cleaner.Clean(table, opts)

	if err != nil {
		h.fail(w, r, "clean", err)
		return nil, false
	}

	h.metrics.LapsRemoved.Add(float64(table.Len() - cleaned.Len()))
	h.metrics.Cutoff.Observe(cutoff)

	w.Header().Set("X-Cutoff-Seconds", strconv.FormatFloat(cutoff, 'f', 3, 64))

	return cleaned, true
}

func (h *HTTP) readRequest(w http.ResponseWriter, r *http.Request, operation string) (*laptable.Table, sessioncleaner.Options, bool) {
	opts, err := optionsFromQuery(r)

	if err != nil {
		h.fail(w, r, operation, err)
		return nil, opts, false
	}

	table, err := laptable.ReadCSV(http.MaxBytesReader(w, r.Body, maxBodySize))

	if err != nil {
		h.fail(w, r, operation, fmt.Errorf("%w: %v", errBadRequest, err))
		return nil, opts, false
	}

	h.metrics.LapsIn.Add(float64(table.Len()))

	return table, opts, true
}

var errBadRequest = errors.New("server: bad request")

func optionsFromQuery(r *http.Request) (sessioncleaner.Options, error) {
	var opts sessioncleaner.Options

	query := r.URL.Query()

	for name, target := range map[string]**float64{
		"laptime_max_s":   &opts.LapTimeMax,
		"delta_from_best": &opts.DeltaFromBest,
	} {
		raw := query.Get(name)

		if raw == "" {
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)

		if err != nil {
			return opts, fmt.Errorf("%w: %s is not a number", errBadRequest, name)
		}

		*target = &v
	}

	if raw := query.Get("verbose"); raw != "" {
		verbose, err := strconv.ParseBool(raw)

		if err != nil {
			return opts, fmt.Errorf("%w: verbose is not a boolean", errBadRequest)
		}

		opts.Verbose = verbose
	}

	return opts, nil
}

func (h *HTTP) respond(w http.ResponseWriter, r *http.Request, operation string, table *laptable.Table) {
	format := export.FormatCSV
	contentType := "text/csv"

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		format = export.FormatJSON
		contentType = "application/json"
	}

	h.metrics.Requests.WithLabelValues(operation, "ok").Inc()

	w.Header().Set("Content-Type", contentType)

	if err := export.Write(w, format, table); err != nil {
		h.logger.WithError(err).Errorf("Could not write %s response", operation)
	}
}

func (h *HTTP) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, sessioncleaner.ErrConfiguration),
		errors.Is(err, laptable.ErrMissingField),
		errors.Is(err, laptable.ErrEmptyInput),
		errors.Is(err, laptable.ErrInvalidLapTime),
		errors.Is(err, laptable.ErrUnknownColumn):
		status = http.StatusBadRequest
	}

	h.metrics.Requests.WithLabelValues(operation, "error").Inc()

	h.logger.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Warnf("Could not %s lap table", operation)

	http.Error(w, err.Error(), status)
}
