package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/internal/models"
)

// SettingsRepository persists store settings.
type SettingsRepository interface {
	List(ctx context.Context) ([]models.StoreSetting, error)
	FindByKey(ctx context.Context, key string) (*models.StoreSetting, error)
	UpdateValue(ctx context.Context, key, value string) (*models.StoreSetting, error)
	Create(ctx context.Context, setting *models.StoreSetting) error
	InsertMissing(ctx context.Context, defaults []models.StoreSetting) (int64, error)
}

type gormSettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository returns a gorm backed SettingsRepository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &gormSettingsRepository{db: db}
}

func (r *gormSettingsRepository) List(ctx context.Context) ([]models.StoreSetting, error) {
	var settings []models.StoreSetting
	err := r.db.WithContext(ctx).Order("setting_key asc").Find(&settings).Error
	return settings, err
}

func (r *gormSettingsRepository) FindByKey(ctx context.Context, key string) (*models.StoreSetting, error) {
	var setting models.StoreSetting
	if err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdateValue overwrites an existing key. Unknown keys yield ErrNotFound and
// leave the table untouched.
func (r *gormSettingsRepository) UpdateValue(ctx context.Context, key, value string) (*models.StoreSetting, error) {
	var updated models.StoreSetting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.StoreSetting{}).
			Where("setting_key = ?", key).
			Updates(map[string]any{"setting_value": value, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("setting_key = ?", key).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *gormSettingsRepository) Create(ctx context.Context, setting *models.StoreSetting) error {
	return r.db.WithContext(ctx).Create(setting).Error
}

// InsertMissing adds any default whose key is absent and reports how many
// rows were written. Existing values are never overwritten.
func (r *gormSettingsRepository) InsertMissing(ctx context.Context, defaults []models.StoreSetting) (int64, error) {
	if len(defaults) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "setting_key"}}, DoNothing: true}).
		Create(&defaults)
	return res.RowsAffected, res.Error
}
