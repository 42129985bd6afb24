// Package httpapi builds HTTP handlers for /api and /ops.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eip_explorer/config"
	"eip_explorer/internal/frame"
	"eip_explorer/internal/index"
	"eip_explorer/internal/metrics"
	"eip_explorer/internal/ogimage"
	"eip_explorer/internal/resolve"
	"eip_explorer/internal/store"
	"eip_explorer/internal/visits"
	"eip_explorer/proposal"
)

// Resolver resolves one proposal token to a document.
type Resolver interface {
	Resolve(ctx context.Context, token string, fam proposal.Family) (resolve.Resolution, error)
}

// Summarizer produces the cached-or-generated summary for one proposal.
type Summarizer interface {
	Summarize(ctx context.Context, no int, fam proposal.Family) (string, error)
}

// Router builds HTTP handlers for /api and /ops.
type Router struct {
	cfg        config.Config
	store      *store.Store
	index      *index.Index
	recorder   *visits.Recorder
	resolver   Resolver
	summarizer Summarizer
	og         *ogimage.Renderer
	frames     *frame.Renderer
	now        func() time.Time
}

func NewRouter(cfg config.Config, st *store.Store, ix *index.Index, rec *visits.Recorder,
	res Resolver, sum Summarizer, og *ogimage.Renderer) *Router {
	return &Router{
		cfg:        cfg,
		store:      st,
		index:      ix,
		recorder:   rec,
		resolver:   res,
		summarizer: sum,
		og:         og,
		frames:     frame.NewRenderer(cfg.HostBaseURL),
		now:        time.Now,
	}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/logPageVisit", r.logPageVisit)
	mux.HandleFunc("/api/aiSummary", r.aiSummary)
	mux.HandleFunc("/api/getTrendingEIPs", r.trending)
	mux.HandleFunc("/api/og", r.ogCard)
	mux.HandleFunc("/api/frame/home", r.frameHome)
	mux.HandleFunc("/api/proposal/", r.proposalDetail)
	mux.HandleFunc("/api/proposalOfTheDay", r.proposalOfTheDay)
	mux.HandleFunc("/ops/health", r.health)
	mux.HandleFunc("/ops/status", r.status)
}

type visitRequest struct {
	EIPNo int    `json:"eipNo"`
	Type  string `json:"type"`
}

func (r *Router) logPageVisit(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body visitRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.EIPNo <= 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := r.store.LogVisit(req.Context(), body.EIPNo, body.Type, r.now().UTC()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.IncVisitsLogged()
	w.Write([]byte("Page visit logged"))
}

func (r *Router) aiSummary(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body visitRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.EIPNo <= 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	fam, ok := proposal.ParseFamily(body.Type)
	if !ok {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	text, err := r.summarizer.Summarize(req.Context(), body.EIPNo, fam)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	// the summary travels as a JSON-encoded string
	respondJSON(w, text)
}

func (r *Router) trending(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	since := r.now().UTC().AddDate(0, 0, -r.cfg.TrendingWindowDays)
	top, err := r.store.TopVisited(req.Context(), since, r.cfg.TrendingLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, top)
}

func (r *Router) ogCard(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	no, err := strconv.Atoi(req.URL.Query().Get("eipNo"))
	if err != nil || no <= 0 {
		http.Error(w, "invalid eipNo", http.StatusBadRequest)
		return
	}
	fam, ok := proposal.ParseFamily(req.URL.Query().Get("type"))
	if !ok {
		http.Error(w, "invalid type", http.StatusBadRequest)
		return
	}

	card := ogimage.Card{Family: fam, Number: no}
	if entry, ok := r.index.Lookup(fam, no); ok {
		card.Title = entry.Title
		card.Status = entry.Status
		card.IsERC = entry.IsERC
	} else {
		res, err := r.resolver.Resolve(req.Context(), strconv.Itoa(no), fam)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if res.NotFound {
			http.Error(w, "could not resolve proposal", http.StatusInternalServerError)
			return
		}
		card.Title = res.Metadata.Title
		card.Status = res.Metadata.Status
		card.IsERC = res.IsStandardsTrack
	}

	data, err := r.og.Render(card)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func (r *Router) frameHome(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		UntrustedData struct {
			InputText string `json:"inputText"`
		} `json:"untrustedData"`
	}
	_ = json.NewDecoder(req.Body).Decode(&body)

	var doc []byte
	var err error
	if no, convErr := strconv.Atoi(strings.TrimSpace(body.UntrustedData.InputText)); convErr == nil && no > 0 {
		entry, ok := r.index.Lookup(proposal.FamilyEIP, no)
		if ok {
			doc, err = r.frames.Proposal(no, entry.IsERC)
		}
	}
	if doc == nil && err == nil {
		// no or invalid input returns the search frame again
		doc, err = r.frames.Home()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write(doc)
}

func (r *Router) proposalDetail(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// /api/proposal/{family}/{token}
	rest := strings.TrimPrefix(req.URL.Path, "/api/proposal/")
	famPart, token, ok := strings.Cut(rest, "/")
	if !ok || token == "" {
		http.NotFound(w, req)
		return
	}
	fam, ok := proposal.ParseFamily(famPart)
	if !ok {
		http.Error(w, "unknown proposal family", http.StatusBadRequest)
		return
	}

	res, err := r.resolver.Resolve(req.Context(), token, fam)
	if err != nil {
		if errors.Is(err, proposal.ErrInvalidIdentifier) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if !res.NotFound && r.recorder != nil {
		r.recorder.Record(visits.Event{EIPNo: res.Number, Family: string(fam)})
	}

	payload := struct {
		resolve.Resolution
		PrevEIP int `json:"prevEip,omitempty"`
		NextEIP int `json:"nextEip,omitempty"`
	}{Resolution: res}
	payload.PrevEIP, payload.NextEIP = r.index.Neighbors(fam, res.Number)
	respondJSON(w, payload)
}

func (r *Router) proposalOfTheDay(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	numbers := r.index.Numbers(proposal.FamilyEIP)
	if len(numbers) == 0 {
		http.Error(w, "catalog is empty", http.StatusServiceUnavailable)
		return
	}
	no := proposal.PickForDate(r.now().UTC(), numbers)
	entry, _ := r.index.Lookup(proposal.FamilyEIP, no)
	respondJSON(w, map[string]any{
		"eipNo":  no,
		"title":  entry.Title,
		"status": entry.Status,
		"isERC":  entry.IsERC,
	})
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) status(w http.ResponseWriter, req *http.Request) {
	catalogs := map[string]int{}
	for _, fam := range []proposal.Family{proposal.FamilyEIP, proposal.FamilyRIP, proposal.FamilyCAIP} {
		catalogs[strings.ToLower(string(fam))] = r.index.Count(fam)
	}
	payload := map[string]any{
		"counters": metrics.Snapshot(),
		"catalogs": catalogs,
	}
	if r.recorder != nil {
		payload["visit_queue"] = r.recorder.Pending()
	}
	respondJSON(w, payload)
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json: %v", err)
	}
}
