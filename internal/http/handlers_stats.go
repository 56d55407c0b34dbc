package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"iuran/internal/core"
)

func statsCacheKey(p core.Period, typeID string) string {
	return fmt.Sprintf("stats:%d-%02d:%s", p.Year, p.Month, typeID)
}

func matrixCacheKey(p core.Period, typeID string) string {
	return fmt.Sprintf("matrix:%d-%02d:%s", p.Year, p.Month, typeID)
}

// handleGetStats serves the period summary. Fresh cache hits short-circuit
// the store; when the store is unavailable the last known entry is served
// with meta.stale=true instead of failing the dashboard.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	typeID := r.URL.Query().Get("type_id")
	key := statsCacheKey(p, typeID)

	if stats, ok := s.statsCache.Get(key); ok {
		writeData(w, http.StatusOK, toStatsDTO(stats))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	stats, err := s.stats.ComputeStats(ctx, p, typeID)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			if stale, present, _ := s.statsCache.GetStale(key); present {
				slog.WarnContext(r.Context(), "Serving stale stats",
					"month", p.Month, "year", p.Year, "type_id", typeID)
				writeStaleData(w, toStatsDTO(stale))
				return
			}
		}
		writeDomainError(w, r, err)
		return
	}

	s.statsCache.Set(key, stats)
	writeData(w, http.StatusOK, toStatsDTO(stats))
}

// handleGetMatrix serves the per-resident payment matrix with the same
// cache-then-stale discipline as the stats endpoint.
func (s *Server) handleGetMatrix(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	typeID := r.URL.Query().Get("type_id")
	key := matrixCacheKey(p, typeID)

	if rows, ok := s.matrixCache.Get(key); ok {
		writeData(w, http.StatusOK, toMatrixDTO(rows))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	rows, err := s.matrix.BuildMatrix(ctx, p, typeID)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			if stale, present, _ := s.matrixCache.GetStale(key); present {
				slog.WarnContext(r.Context(), "Serving stale matrix",
					"month", p.Month, "year", p.Year, "type_id", typeID)
				writeStaleData(w, toMatrixDTO(stale))
				return
			}
		}
		writeDomainError(w, r, err)
		return
	}

	s.matrixCache.Set(key, rows)
	writeData(w, http.StatusOK, toMatrixDTO(rows))
}

// invalidateReadCaches drops cached reads for a period after a write so
// the next dashboard fetch sees the mutation.
func (s *Server) invalidateReadCaches(p core.Period) {
	// Type-filtered variants share the period prefix but separate keys;
	// dropping the unfiltered entries covers the common dashboard path and
	// the rest age out with the TTL.
	s.statsCache.Delete(statsCacheKey(p, ""))
	s.matrixCache.Delete(matrixCacheKey(p, ""))
}
