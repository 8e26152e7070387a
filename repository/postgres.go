package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goshortlink/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPGRepo(port int, host, dbuser, dbname, password string) (Repository, error) {
	args := fmt.Sprintf("host=%s port=%v user=%s dbname=%s password=%s",
		host, port, dbuser, dbname, password)
	db, err := gorm.Open(postgres.Open(args), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&models.Url{})
	return &postgresRepository{db: db}, nil
}

// NewPGRepoForTestWith is just for testing purposes (no calling AutoMigrate())
func NewPGRepoForTestWith(dial gorm.Dialector, cfg gorm.Config) (Repository, error) {
	db, err := gorm.Open(dial, &cfg)
	return &postgresRepository{db: db}, err
}

type postgresRepository struct {
	db *gorm.DB
}

func (p *postgresRepository) Insert(ctx context.Context, url string, expiresAt *time.Time) (int64, error) {
	urlEntry := models.Url{
		OriginalURL: url,
		ExpiresAt:   expiresAt,
	}
	if err := p.db.WithContext(ctx).Create(&urlEntry).Error; err != nil {
		return 0, err
	}
	return urlEntry.ID, nil
}

func (p *postgresRepository) UpdateCode(ctx context.Context, id int64, code string) error {
	res := p.db.WithContext(ctx).
		Model(&models.Url{}).
		Where("id = ?", id).
		Update("short_code", code)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *postgresRepository) FindByCode(ctx context.Context, code string) (*models.Url, error) {
	var result models.Url
	if err := p.db.WithContext(ctx).
		Where("short_code = ?", code).
		Take(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (p *postgresRepository) FindActiveByURL(ctx context.Context, url string) (*models.Url, error) {
	var result models.Url
	if err := p.db.WithContext(ctx).
		Where("original_url = ? AND expires_at IS NULL AND short_code <> ''", url).
		Take(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// IncrementClicks relies on the database to apply the increment atomically,
// so concurrent redirects never lose updates.
func (p *postgresRepository) IncrementClicks(ctx context.Context, code string) error {
	res := p.db.WithContext(ctx).
		Model(&models.Url{}).
		Where("short_code = ?", code).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *postgresRepository) DeleteByCode(ctx context.Context, code string) error {
	// deleting an already-gone code is a no-op, not an error
	return p.db.WithContext(ctx).
		Where("short_code = ?", code).
		Delete(&models.Url{}).Error
}

func (p *postgresRepository) DeleteExpired(ctx context.Context) ([]string, error) {
	now := time.Now()

	var expired []models.Url
	if err := p.db.WithContext(ctx).
		Select("short_code").
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Find(&expired).Error; err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	codes := make([]string, 0, len(expired))
	for _, url := range expired {
		codes = append(codes, url.ShortCode)
	}

	if err := p.db.WithContext(ctx).
		Where("short_code IN ?", codes).
		Delete(&models.Url{}).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (p *postgresRepository) ListActiveByPopularity(ctx context.Context, limit int) ([]models.Url, error) {
	if limit <= 0 {
		limit = -1 // cancel limit condition
	}

	var urls []models.Url
	if err := p.db.WithContext(ctx).
		Where("short_code <> ''").
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("click_count DESC").
		Limit(limit).
		Find(&urls).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

func (p *postgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
