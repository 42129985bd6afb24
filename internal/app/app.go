// Package app wires the service components together.
package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"eip_explorer/config"
	"eip_explorer/internal/fetch"
	"eip_explorer/internal/httpapi"
	"eip_explorer/internal/index"
	"eip_explorer/internal/ogimage"
	"eip_explorer/internal/resolve"
	"eip_explorer/internal/store"
	"eip_explorer/internal/summary"
	"eip_explorer/internal/visits"
	"eip_explorer/proposal"
)

// App owns the long-lived components: store, catalog index, visit
// recorder, and the HTTP mux.
type App struct {
	cfg      config.Config
	store    *store.Store
	index    *index.Index
	recorder *visits.Recorder
	mux      *http.ServeMux
}

func New(cfg config.Config) (*App, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	ix, err := index.Load(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	og, err := ogimage.NewRenderer(cfg.OGTemplatePath)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewClient(time.Duration(cfg.FetchTimeoutSec) * time.Second)
	resolver := resolve.New(ix, fetcher)
	recorder := visits.NewRecorder(st, cfg.VisitQueueSize)

	var summarizer httpapi.Summarizer
	if cfg.Summary.Enabled {
		summarizer = summary.NewService(summary.Config{
			Model:   cfg.Summary.Model,
			BaseURL: cfg.Summary.BaseURL,
			APIKey:  cfg.Summary.APIKey,
		}, st, resolver)
	} else {
		summarizer = disabledSummarizer{}
	}

	mux := http.NewServeMux()
	router := httpapi.NewRouter(cfg, st, ix, recorder, resolver, summarizer, og)
	router.Register(mux)
	return &App{cfg: cfg, store: st, index: ix, recorder: recorder, mux: mux}, nil
}

// Run starts the visit recorder, catalog watcher, and HTTP server, and
// blocks until the context is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.recorder.Start(ctx)
	if a.cfg.WatchCatalogs {
		if err := a.index.Watch(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{Addr: a.cfg.HTTPPort, Handler: a.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		a.recorder.Stop(shutdownCtx)
		_ = a.store.Close()
	}()
	log.Printf("http listening on %s", a.cfg.HTTPPort)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (a *App) Store() *store.Store  { return a.store }
func (a *App) Index() *index.Index { return a.index }
func (a *App) Mux() *http.ServeMux { return a.mux }

type disabledSummarizer struct{}

func (disabledSummarizer) Summarize(context.Context, int, proposal.Family) (string, error) {
	return "", errors.New("summaries are disabled")
}
