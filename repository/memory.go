package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"goshortlink/models"
)

// NewMemRepo returns an in-process Repository. It satisfies the same
// contract as the postgres implementation (monotonic ids, atomic counter
// updates) and backs the tests and db-less local runs.
func NewMemRepo() Repository {
	return &memoryRepository{
		records: make(map[int64]*models.Url),
	}
}

type memoryRepository struct {
	mu      sync.Mutex
	lastID  int64
	records map[int64]*models.Url
}

func (m *memoryRepository) Insert(ctx context.Context, url string, expiresAt *time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	m.records[m.lastID] = &models.Url{
		ID:          m.lastID,
		OriginalURL: url,
		CreatedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}
	return m.lastID, nil
}

func (m *memoryRepository) UpdateCode(ctx context.Context, id int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	record.ShortCode = code
	return nil
}

func (m *memoryRepository) FindByCode(ctx context.Context, code string) (*models.Url, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := m.findByCodeLocked(code)
	if record == nil {
		return nil, ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memoryRepository) FindActiveByURL(ctx context.Context, url string) (*models.Url, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range m.records {
		if record.OriginalURL == url && record.ExpiresAt == nil && record.ShortCode != "" {
			copied := *record
			return &copied, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memoryRepository) IncrementClicks(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := m.findByCodeLocked(code)
	if record == nil {
		return ErrRecordNotFound
	}
	record.ClickCount++
	return nil
}

func (m *memoryRepository) DeleteByCode(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record := m.findByCodeLocked(code); record != nil {
		delete(m.records, record.ID)
	}
	return nil
}

func (m *memoryRepository) DeleteExpired(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var codes []string
	for id, record := range m.records {
		if record.Expired() {
			codes = append(codes, record.ShortCode)
			delete(m.records, id)
		}
	}
	return codes, nil
}

func (m *memoryRepository) ListActiveByPopularity(ctx context.Context, limit int) ([]models.Url, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	urls := make([]models.Url, 0, len(m.records))
	for _, record := range m.records {
		if record.ShortCode == "" || record.Expired() {
			continue
		}
		urls = append(urls, *record)
	}
	sort.Slice(urls, func(i, j int) bool {
		return urls[i].ClickCount > urls[j].ClickCount
	})
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

func (m *memoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (m *memoryRepository) findByCodeLocked(code string) *models.Url {
	if code == "" {
		return nil
	}
	for _, record := range m.records {
		if record.ShortCode == code {
			return record
		}
	}
	return nil
}
