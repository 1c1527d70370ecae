package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"stakeMetrics/internal/aggregate"
	"stakeMetrics/internal/cache"
)

const defaultPlaces = 4

// Source returns the most recently published snapshot and metrics.
// cache.Cache implements it.
type Source interface {
	Latest(ctx context.Context) (cache.Entry, bool, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

func ready(deps []Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for _, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				http.Error(w, `{"status":"not ready"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}

// latest loads the current entry, answering 503 itself when there is nothing
// usable to serve.
func latest(w http.ResponseWriter, r *http.Request, src Source, logger *zap.Logger) (cache.Entry, bool) {
	entry, ok, err := src.Latest(r.Context())
	if err != nil {
		logger.Warn("latest metrics lookup failed", zap.Error(err))
		http.Error(w, `{"error":"failed to load metrics"}`, http.StatusInternalServerError)
		return cache.Entry{}, false
	}
	if !ok || !entry.Record.Metrics.Ready {
		http.Error(w, `{"error":"no data available yet"}`, http.StatusServiceUnavailable)
		return cache.Entry{}, false
	}
	return entry, true
}

func stake(src Source, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, ok := latest(w, r, src, logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, entry.Record)
	}
}

type displayResponse struct {
	ChainID     uint64            `json:"chain_id"`
	BlockNumber uint64            `json:"block_number"`
	Account     string            `json:"account"`
	Values      map[string]string `json:"values"`
	UnstakedLP  []string          `json:"unstaked_lp"`
	Claimable   []string          `json:"claimable"`
}

func stakeDisplay(src Source, params aggregate.Params, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		places := int32(defaultPlaces)
		if raw := r.URL.Query().Get("places"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 32)
			if err != nil || n < 0 || n > 30 {
				http.Error(w, `{"error":"invalid places"}`, http.StatusBadRequest)
				return
			}
			places = int32(n)
		}

		entry, ok := latest(w, r, src, logger)
		if !ok {
			return
		}
		m := entry.Record.Metrics
		resp := displayResponse{
			ChainID:     entry.Record.ChainID,
			BlockNumber: entry.Record.BlockNumber,
			Account:     entry.Record.Account,
			Values:      aggregate.Display(m, places),
			UnstakedLP:  aggregate.UnstakedLPWarnings(m, params),
			Claimable:   aggregate.ClaimableFarms(m),
		}
		if resp.UnstakedLP == nil {
			resp.UnstakedLP = []string{}
		}
		if resp.Claimable == nil {
			resp.Claimable = []string{}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
