package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autoupgrader/internal/adapter/repo/gorm/model"
	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PolicyRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPolicyRepo(db *gorm.DB) PolicyRepo {
	return PolicyRepo{db: db, now: time.Now}
}

func (r PolicyRepo) Get(ctx context.Context, profileID string) (bestiary.Policy, error) {
	var m model.UpgradePolicy
	if err := getDBFromCtx(ctx, r.db).WithContext(ctx).Where("profile_id = ?", profileID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bestiary.Policy{}, ports.ErrNotFound
		}
		return bestiary.Policy{}, err
	}
	targets := []bestiary.SpeciesID{}
	if m.TargetSpeciesIds != "" {
		if err := json.Unmarshal([]byte(m.TargetSpeciesIds), &targets); err != nil {
			return bestiary.Policy{}, fmt.Errorf("decode target_species_ids: %w", err)
		}
	}
	return bestiary.Policy{
		Enabled:                m.Enabled,
		LevelThreshold:         int(m.LevelThreshold),
		ReserveCountPerSpecies: int(m.ReserveCountPerSpecies),
		MinFodderTier:          int(m.MinFodderTier),
		MaxFodderTier:          int(m.MaxFodderTier),
		TargetSpeciesIDs:       targets,
	}, nil
}

func (r PolicyRepo) Save(ctx context.Context, profileID string, policy bestiary.Policy) error {
	targets := policy.TargetSpeciesIDs
	if targets == nil {
		targets = []bestiary.SpeciesID{}
	}
	raw, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("encode target_species_ids: %w", err)
	}
	now := r.now
	if now == nil {
		now = time.Now
	}
	m := model.UpgradePolicy{
		ProfileID:              profileID,
		Enabled:                policy.Enabled,
		LevelThreshold:         int32(policy.LevelThreshold),
		ReserveCountPerSpecies: int32(policy.ReserveCountPerSpecies),
		MinFodderTier:          int32(policy.MinFodderTier),
		MaxFodderTier:          int32(policy.MaxFodderTier),
		TargetSpeciesIds:       string(raw),
		UpdatedAt:              now().UTC(),
	}
	return getDBFromCtx(ctx, r.db).WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enabled",
			"level_threshold",
			"reserve_count_per_species",
			"min_fodder_tier",
			"max_fodder_tier",
			"target_species_ids",
			"updated_at",
		}),
	}).Create(&m).Error
}
