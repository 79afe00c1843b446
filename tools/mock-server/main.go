// Package main implements a mock Coupang Partners API server for local
// development. It verifies CEA signatures with the configured keys and serves
// canned listings from a JSON fixture.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
)

// catalog is the fixture layout: the goldbox list and best sellers per
// category ID.
type catalog struct {
	Goldbox    []map[string]any            `json:"goldbox"`
	Categories map[string][]map[string]any `json:"categories"`
}

// server holds the fixture and request counters shared by the handlers.
type server struct {
	log       *slog.Logger
	signer    *coupang.Signer
	catalog   *catalog
	failEvery int64
	priceStep int64

	requests atomic.Int64
	rounds   atomic.Int64
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/products.json", "path to catalog fixture")
	accessKey := flag.String("access-key", "mock-access", "access key accepted by the server")
	secretKey := flag.String("secret-key", "mock-secret", "secret key used to verify signatures")
	failEvery := flag.Int64("fail-every", 0, "answer every Nth request with 504 (0 disables)")
	priceStep := flag.Int64("price-step", 0, "percent each goldbox request lowers prices, cycling every 5 rounds")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cat, err := loadCatalog(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "goldbox", len(cat.Goldbox), "categories", len(cat.Categories))

	srv, err := newServer(logger, coupang.Credentials{AccessKey: *accessKey, SecretKey: *secretKey}, cat)
	if err != nil {
		logger.Error("invalid keys", "error", err)
		os.Exit(1)
	}
	srv.failEvery = *failEvery
	srv.priceStep = *priceStep

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Coupang Partners server", "addr", addr)

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := httpSrv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newServer(logger *slog.Logger, creds coupang.Credentials, cat *catalog) (*server, error) {
	signer, err := coupang.NewSigner(creds)
	if err != nil {
		return nil, err
	}
	return &server{log: logger, signer: signer, catalog: cat}, nil
}

func loadCatalog(path string) (*catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &c, nil
}

func (s *server) routes() http.Handler {
	p := coupang.APIPrefix
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+p+"/products/goldbox", s.goldboxHandler)
	mux.HandleFunc("GET "+p+"/products/bestcategories/{id}", s.bestCategoryHandler)
	mux.HandleFunc("GET "+p+"/products/search", s.searchHandler)
	mux.HandleFunc("POST "+p+"/deeplink", s.deeplinkHandler)
	return s.requestLogger(s.faults(s.authenticate(mux)))
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// faults answers every failEvery-th request with a gateway timeout.
func (s *server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := s.requests.Add(1)
		if s.failEvery > 0 && n%s.failEvery == 0 {
			s.log.Warn("injecting gateway timeout", "request", n)
			writeJSON(w, http.StatusGatewayTimeout, map[string]string{"code": "ERROR", "message": "gateway timeout"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate verifies the CEA header over the raw query or body.
func (s *server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := r.URL.RawQuery
		if r.Method != http.MethodGet {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"code": "ERROR", "message": "unreadable body"})
				return
			}
			payload = string(body)
			r.Body = io.NopCloser(strings.NewReader(payload))
		}

		if _, err := s.signer.Verify(r.Header.Get("Authorization"), r.Method, r.URL.Path, payload); err != nil {
			s.log.Warn("rejected signature", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "ERROR", "message": err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) goldboxHandler(w http.ResponseWriter, _ *http.Request) {
	round := s.rounds.Add(1) - 1
	items := make([]map[string]any, 0, len(s.catalog.Goldbox))
	for _, p := range s.catalog.Goldbox {
		items = append(items, s.discounted(p, round))
	}
	writeJSON(w, http.StatusOK, envelope(items))
	s.log.Info("goldbox", "returned", len(items), "round", round)
}

func (s *server) bestCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	items, ok := s.catalog.Categories[id]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"rCode": "400", "rMessage": "Invalid categoryId: " + id})
		return
	}
	items = limitItems(items, r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, envelope(items))
	s.log.Info("bestcategories", "category", id, "returned", len(items))
}

func (s *server) searchHandler(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"rCode": "400", "rMessage": "keyword is required"})
		return
	}

	var matched []map[string]any
	for _, id := range slices.Sorted(maps.Keys(s.catalog.Categories)) {
		for _, p := range s.catalog.Categories[id] {
			if name, _ := p["productName"].(string); strings.Contains(name, keyword) {
				matched = append(matched, p)
			}
		}
	}
	matched = limitItems(matched, r.URL.Query().Get("limit"))
	if matched == nil {
		matched = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rCode":    "0",
		"rMessage": "",
		"data": map[string]any{
			"landingUrl":  "https://link.coupang.com/re/search?q=" + keyword,
			"productData": matched,
		},
	})
	s.log.Info("search", "keyword", keyword, "returned", len(matched))
}

func (s *server) deeplinkHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CoupangURLs []string `json:"coupangUrls"`
		SubID       string   `json:"subId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CoupangURLs) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"rCode": "400", "rMessage": "coupangUrls is required"})
		return
	}

	links := make([]map[string]string, 0, len(req.CoupangURLs))
	for i, u := range req.CoupangURLs {
		links = append(links, map[string]string{
			"originalUrl": u,
			"shortenUrl":  fmt.Sprintf("https://link.coupang.com/a/mock%d", i),
			"landingUrl":  u + "?subId=" + req.SubID,
		})
	}
	writeJSON(w, http.StatusOK, envelope(links))
}

// discounted returns p with its sale price lowered by priceStep percent per
// round, cycling every five rounds.
func (s *server) discounted(p map[string]any, round int64) map[string]any {
	if s.priceStep <= 0 {
		return p
	}
	price, ok := p["productPrice"].(float64)
	if !ok {
		return p
	}
	out := maps.Clone(p)
	drop := s.priceStep * (round % 5)
	out["productPrice"] = int64(price) * (100 - drop) / 100
	return out
}

func limitItems[T any](items []T, raw string) []T {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

func envelope(data any) map[string]any {
	return map[string]any{"rCode": "0", "rMessage": "", "data": data}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
