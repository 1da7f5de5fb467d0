package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/usecase"
)

// DeleteMatch removes a home match together with its mirror and registry row.
func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "DeleteMatch")
	defer span.End()

	if h.matches == nil {
		writeTextError(ctx, w, fmt.Errorf("%w: match service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	matchID, err := parsePathID(r, "matchID")
	if err != nil {
		writeTextError(ctx, w, err)
		return
	}

	if err := h.matches.Delete(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeTextError(ctx, w, err)
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("match %d deleted", matchID))
}

func (h *Handler) ListCompletedMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListCompletedMatches")
	defer span.End()

	if h.completed == nil {
		writeError(ctx, w, fmt.Errorf("%w: match query service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	tournamentID, err := parsePathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := completedMatchesRequest{
		TournamentID: tournamentID,
		Date:         strings.TrimSpace(r.URL.Query().Get("date")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid date %q", usecase.ErrInvalidInput, req.Date))
		return
	}

	items, err := h.completed.ListCompleted(ctx, tournamentID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "list completed matches failed", "tournament_id", tournamentID, "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	writeSuccess(w, http.StatusOK, out)
}

func parsePathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", usecase.ErrInvalidInput, name, raw)
	}
	return id, nil
}
