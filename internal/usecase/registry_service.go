package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

// RegistryService maps provider ids to internal rows.
type RegistryService struct {
	repo   externalid.Repository
	logger *logging.Logger
}

func NewRegistryService(repo externalid.Repository, logger *logging.Logger) *RegistryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RegistryService{repo: repo, logger: logger}
}

func (s *RegistryService) Resolve(ctx context.Context, kind externalid.Kind, externalID int64) (int64, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.Resolve",
		attrEntityKind.String(string(kind)),
		attrExternalID.Int64(externalID),
	)
	defer span.End()

	if !kind.Valid() || externalID <= 0 {
		return 0, false, fmt.Errorf("%w: kind=%s external_id=%d", ErrInvalidInput, kind, externalID)
	}

	record, found, err := s.repo.Resolve(ctx, kind, externalID)
	if err != nil {
		return 0, false, fmt.Errorf("resolve %s external_id=%d: %w", kind, externalID, err)
	}
	if !found {
		return 0, false, nil
	}
	return record.EntityID, true, nil
}

func (s *RegistryService) LookupByInternal(ctx context.Context, kind externalid.Kind, entityID int64) (int64, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.LookupByInternal", attrEntityKind.String(string(kind)))
	defer span.End()

	if !kind.Valid() || entityID <= 0 {
		return 0, false, fmt.Errorf("%w: kind=%s entity_id=%d", ErrInvalidInput, kind, entityID)
	}

	record, found, err := s.repo.LookupByInternal(ctx, kind, entityID)
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s entity_id=%d: %w", kind, entityID, err)
	}
	if !found {
		return 0, false, nil
	}
	return record.ExternalID, true, nil
}

// Register fails with externalid.ErrAlreadyRegistered on a duplicate.
func (s *RegistryService) Register(ctx context.Context, kind externalid.Kind, externalID, entityID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.Register",
		attrEntityKind.String(string(kind)),
		attrExternalID.Int64(externalID),
	)
	defer span.End()

	if !kind.Valid() || externalID <= 0 || entityID <= 0 {
		return fmt.Errorf("%w: kind=%s external_id=%d entity_id=%d", ErrInvalidInput, kind, externalID, entityID)
	}

	if _, err := s.repo.Register(ctx, kind, externalID, entityID); err != nil {
		if errors.Is(err, externalid.ErrAlreadyRegistered) {
			s.logger.WarnContext(ctx, "external id already registered",
				"kind", kind,
				"external_id", externalID,
				"entity_id", entityID,
			)
		}
		return fmt.Errorf("register %s external_id=%d: %w", kind, externalID, err)
	}
	return nil
}

// Remove drops the mapping of an internal row. removed is false when the row
// had none. Match rows are unmapped by MatchSyncService.Delete inside its
// transaction instead.
func (s *RegistryService) Remove(ctx context.Context, kind externalid.Kind, entityID int64) (removed bool, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.Remove", attrEntityKind.String(string(kind)))
	defer span.End()

	if !kind.Valid() || entityID <= 0 {
		return false, fmt.Errorf("%w: kind=%s entity_id=%d", ErrInvalidInput, kind, entityID)
	}

	removed, err = s.repo.Remove(ctx, kind, entityID)
	if err != nil {
		return false, fmt.Errorf("remove %s entity_id=%d: %w", kind, entityID, err)
	}
	if !removed {
		s.logger.DebugContext(ctx, "no external id to remove", "kind", kind, "entity_id", entityID)
	}
	return removed, nil
}
