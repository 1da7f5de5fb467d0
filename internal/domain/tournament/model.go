package tournament

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/football-stats/internal/domain/match"
)

// Tournament is one season of a competition, e.g. "La Liga 2023-2024".
type Tournament struct {
	ID             int64
	Title          string
	Slug           string
	Season         string
	ProviderSeason string
	CountryID      *int64
	Current        bool
	IsRegular      bool
	ToursCount     int
	PointsPerWin   int
	PointsPerDraw  int
	Order          int
	LogoPath       string
}

func (t Tournament) ScoringRule() match.ScoringRule {
	if t.PointsPerWin <= 0 && t.PointsPerDraw <= 0 {
		return match.DefaultScoringRule()
	}
	return match.ScoringRule{PointsPerWin: t.PointsPerWin, PointsPerDraw: t.PointsPerDraw}
}

// APISeason returns the season label the provider expects. An explicit
// ProviderSeason wins; otherwise the first year of "YYYY-YYYY" is used.
func (t Tournament) APISeason() string {
	if season := strings.TrimSpace(t.ProviderSeason); season != "" {
		return season
	}
	season := strings.TrimSpace(t.Season)
	if head, _, ok := strings.Cut(season, "-"); ok {
		return strings.TrimSpace(head)
	}
	return season
}

func (t Tournament) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("tournament title is required")
	}
	if t.PointsPerWin < 0 || t.PointsPerDraw < 0 {
		return fmt.Errorf("tournament points must not be negative")
	}
	return nil
}
