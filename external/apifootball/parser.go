package apifootball

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

const goalEventType = "Goal"

// Parser reads api-football v3 response items decoded into generic maps.
type Parser struct{}

func (Parser) ParseMatch(item map[string]any) (usecase.ParsedMatch, error) {
	fixtureID, err := requireInt64(item, "fixture", "id")
	if err != nil {
		return usecase.ParsedMatch{}, err
	}

	rawDate, err := requireString(item, "fixture", "date")
	if err != nil {
		return usecase.ParsedMatch{}, err
	}
	date, err := time.Parse(time.RFC3339, rawDate)
	if err != nil {
		return usecase.ParsedMatch{}, fmt.Errorf("parse fixture.date %q: %w", rawDate, err)
	}

	homeID, err := requireInt64(item, "teams", "home", "id")
	if err != nil {
		return usecase.ParsedMatch{}, err
	}
	awayID, err := requireInt64(item, "teams", "away", "id")
	if err != nil {
		return usecase.ParsedMatch{}, err
	}

	rawStatus, err := requireString(item, "fixture", "status", "short")
	if err != nil {
		return usecase.ParsedMatch{}, err
	}
	status, err := match.ParseStatus(rawStatus)
	if err != nil {
		return usecase.ParsedMatch{}, err
	}

	// Goals are null until kick-off, but the keys must be present.
	homeGoals, err := optionalInt(item, "goals", "home")
	if err != nil {
		return usecase.ParsedMatch{}, err
	}
	awayGoals, err := optionalInt(item, "goals", "away")
	if err != nil {
		return usecase.ParsedMatch{}, err
	}

	score, ok := lookup(item, "score")
	if !ok {
		return usecase.ParsedMatch{}, &usecase.MissingCriticalDataError{Field: "score"}
	}
	scoreMap, _ := score.(map[string]any)

	round := ""
	if value, ok := lookup(item, "league", "round"); ok {
		round, _ = value.(string)
	}

	return usecase.ParsedMatch{
		ExternalID:         fixtureID,
		Date:               date.UTC(),
		HomeTeamExternalID: homeID,
		AwayTeamExternalID: awayID,
		Round:              strings.TrimSpace(round),
		Tour:               ParseTour(round),
		Status:             status,
		HomeGoals:          homeGoals,
		AwayGoals:          awayGoals,
		Score:              scoreMap,
	}, nil
}

func (Parser) ParseTeam(item map[string]any) (usecase.ParsedTeam, error) {
	teamID, err := requireInt64(item, "team", "id")
	if err != nil {
		return usecase.ParsedTeam{}, err
	}
	title, err := requireString(item, "team", "name")
	if err != nil {
		return usecase.ParsedTeam{}, err
	}
	rawLogo, ok := lookup(item, "team", "logo")
	if !ok {
		return usecase.ParsedTeam{}, &usecase.MissingCriticalDataError{Field: "team.logo"}
	}
	logo, _ := rawLogo.(string)

	return usecase.ParsedTeam{
		ExternalID: teamID,
		Title:      strings.TrimSpace(title),
		LogoURL:    strings.TrimSpace(logo),
	}, nil
}

func (Parser) GoalsStats(items []map[string]any) (map[int]usecase.ParsedGoal, error) {
	out := make(map[int]usecase.ParsedGoal)
	for _, event := range items {
		eventType, err := requireString(event, "type")
		if err != nil {
			return nil, err
		}
		if eventType != goalEventType {
			continue
		}

		elapsed, err := requireInt64(event, "time", "elapsed")
		if err != nil {
			return nil, err
		}
		minute := int(elapsed)
		if extra, ok := lookup(event, "time", "extra"); ok && extra != nil {
			if stoppage, err := toInt64(extra); err == nil {
				minute += int(stoppage)
			}
		}

		teamID, err := requireInt64(event, "team", "id")
		if err != nil {
			return nil, err
		}
		player, _ := valueAt(event, "player", "name").(string)
		detail, _ := valueAt(event, "detail").(string)

		out[minute] = usecase.ParsedGoal{
			TeamExternalID: teamID,
			Player:         strings.TrimSpace(player),
			Type:           strings.TrimSpace(detail),
		}
	}
	return out, nil
}

// ParseTour reads the matchday from labels like "Regular Season - 7".
// Knockout labels such as "Round of 16" yield nil.
func ParseTour(round string) *int {
	parts := strings.Split(round, " - ")
	if len(parts) < 2 {
		return nil
	}
	tour, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || tour <= 0 {
		return nil
	}
	return &tour
}

func lookup(src map[string]any, path ...string) (any, bool) {
	var current any = src
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func valueAt(src map[string]any, path ...string) any {
	value, _ := lookup(src, path...)
	return value
}

func requireString(src map[string]any, path ...string) (string, error) {
	value, ok := lookup(src, path...)
	text, isString := value.(string)
	if !ok || !isString || strings.TrimSpace(text) == "" {
		return "", &usecase.MissingCriticalDataError{Field: strings.Join(path, ".")}
	}
	return strings.TrimSpace(text), nil
}

func requireInt64(src map[string]any, path ...string) (int64, error) {
	value, ok := lookup(src, path...)
	if !ok || value == nil {
		return 0, &usecase.MissingCriticalDataError{Field: strings.Join(path, ".")}
	}
	number, err := toInt64(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", strings.Join(path, "."), err)
	}
	return number, nil
}

// optionalInt requires the key but accepts null.
func optionalInt(src map[string]any, path ...string) (*int, error) {
	value, ok := lookup(src, path...)
	if !ok {
		return nil, &usecase.MissingCriticalDataError{Field: strings.Join(path, ".")}
	}
	if value == nil {
		return nil, nil
	}
	number, err := toInt64(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.Join(path, "."), err)
	}
	out := int(number)
	return &out, nil
}

func toInt64(value any) (int64, error) {
	switch typed := value.(type) {
	case float64:
		if typed != math.Trunc(typed) {
			return 0, fmt.Errorf("value %v is not an integer", typed)
		}
		return int64(typed), nil
	case int:
		return int64(typed), nil
	case int64:
		return typed, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected value type %T", value)
	}
}
