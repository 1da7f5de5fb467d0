package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/team"
)

type TeamRepository struct {
	db *Database
}

func NewTeamRepository(db *Database) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	item, ok := r.db.teams[id]
	return item, ok, nil
}

func (r *TeamRepository) CreateWithExternalID(_ context.Context, item team.Team, externalID int64) (team.Team, error) {
	if err := item.Validate(); err != nil {
		return team.Team{}, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.teams {
		if existing.Slug == item.Slug {
			return team.Team{}, fmt.Errorf("%w: slug=%s", team.ErrSlugTaken, item.Slug)
		}
	}
	if _, ok := r.db.findExternal(externalid.KindTeam, func(rec externalid.Record) bool { return rec.ExternalID == externalID }); ok {
		return team.Team{}, fmt.Errorf("%w: kind=team external_id=%d", externalid.ErrAlreadyRegistered, externalID)
	}

	item.ID = r.db.allocID()
	if _, err := r.db.registerExternal(externalid.KindTeam, externalID, item.ID); err != nil {
		return team.Team{}, err
	}
	r.db.teams[item.ID] = item
	return item, nil
}

func (r *TeamRepository) UpdateLogo(_ context.Context, id int64, logoPath string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	item, ok := r.db.teams[id]
	if !ok {
		return fmt.Errorf("team=%d not found", id)
	}
	item.LogoPath = logoPath
	r.db.teams[id] = item
	return nil
}

func (r *TeamRepository) ListMissingLogo(_ context.Context, ids []int64) ([]team.Team, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]team.Team, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.db.teams[id]; ok && item.LogoPath == "" {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
