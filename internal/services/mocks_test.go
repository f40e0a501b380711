package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
)

// ===== IN-MEMORY REPOSITORY MOCKS =====

type mockUserRepository struct {
	mu          sync.Mutex
	nextID      uint
	users       map[uint]*models.User
	hashLookups int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{nextID: 1, users: make(map[uint]*models.User)}
}

func (m *mockUserRepository) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepository) GetByUsername(_ context.Context, _ *gorm.DB, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) GetByTelegramHash(_ context.Context, _ *gorm.DB, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashLookups++
	for _, u := range m.users {
		if u.TelegramHash == hash {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) List(_ context.Context, _ *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.User
	for _, u := range m.users {
		if u.IsSuper {
			continue
		}
		clone := *u
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := int64(len(all))
	if filters.Offset >= len(all) {
		return []*models.User{}, total, nil
	}
	all = all[filters.Offset:]
	if filters.Limit > 0 && filters.Limit < len(all) {
		all = all[:filters.Limit]
	}
	return all, total, nil
}

func (m *mockUserRepository) Update(_ context.Context, _ *gorm.DB, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, u := range m.users {
		if u.Username == user.Username && u.ID != user.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, _ *gorm.DB, id uint, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) RedeemLink(_ context.Context, _ *gorm.DB, hash string, telegramID int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramHash == hash {
			u.TelegramID = &telegramID
			u.TelegramHash = models.GenerateTelegramHash()
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) ExistsByUsername(_ context.Context, _ *gorm.DB, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type mockScheduleRepository struct {
	mu        sync.Mutex
	nextID    uint
	schedules map[uint]*models.Schedule
	users     *mockUserRepository
}

func newMockScheduleRepository(users *mockUserRepository) *mockScheduleRepository {
	return &mockScheduleRepository{nextID: 1, schedules: make(map[uint]*models.Schedule), users: users}
}

func (m *mockScheduleRepository) Create(_ context.Context, _ *gorm.DB, schedule *models.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	schedule.ID = m.nextID
	m.nextID++
	clone := *schedule
	m.schedules[schedule.ID] = &clone
	return nil
}

func (m *mockScheduleRepository) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *mockScheduleRepository) List(_ context.Context, _ *gorm.DB, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Schedule
	now := time.Now()
	for _, s := range m.schedules {
		if filters.UserID != nil && s.UserID != *filters.UserID {
			continue
		}
		if filters.ActiveOnly && !s.ScheduledAt.After(now) {
			continue
		}
		clone := *s
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScheduledAt.After(all[j].ScheduledAt) })
	return all, int64(len(all)), nil
}

func (m *mockScheduleRepository) UpdateTime(_ context.Context, _ *gorm.DB, id uint, scheduledAt time.Time) (*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.ScheduledAt = scheduledAt
	clone := *s
	return &clone, nil
}

func (m *mockScheduleRepository) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepository) ListPendingReminders(_ context.Context, _ *gorm.DB, now time.Time) ([]*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Schedule
	for _, s := range m.schedules {
		if s.TgNotified || !s.ScheduledAt.After(now) {
			continue
		}
		owner, ok := m.users.users[s.UserID]
		if !ok || owner.TelegramID == nil {
			continue
		}
		clone := *s
		clone.User = *owner
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockScheduleRepository) MarkNotified(_ context.Context, _ *gorm.DB, ids []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if s, ok := m.schedules[id]; ok {
			s.TgNotified = true
		}
	}
	return nil
}

type mockMaterialRepository[T any, PT models.MaterialPtr[T]] struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*T
}

func newMockMaterialRepository[T any, PT models.MaterialPtr[T]]() *mockMaterialRepository[T, PT] {
	return &mockMaterialRepository[T, PT]{nextID: 1, rows: make(map[uint]*T)}
}

func (m *mockMaterialRepository[T, PT]) Create(_ context.Context, _ *gorm.DB, row *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := PT(row).Record()
	record.ID = m.nextID
	record.CreatedAt = time.Now()
	m.nextID++
	clone := *row
	m.rows[record.ID] = &clone
	return nil
}

func (m *mockMaterialRepository[T, PT]) GetByID(_ context.Context, _ *gorm.DB, id uint) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (m *mockMaterialRepository[T, PT]) List(_ context.Context, _ *gorm.DB, filters repositories.MaterialFilters) ([]*T, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*T
	for _, row := range m.rows {
		if filters.UserID != nil && PT(row).Record().UserID != *filters.UserID {
			continue
		}
		clone := *row
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return PT(all[i]).Record().ID > PT(all[j]).Record().ID })
	return all, int64(len(all)), nil
}

func (m *mockMaterialRepository[T, PT]) Search(_ context.Context, _ *gorm.DB, userID uint, query string, offset int) ([]*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*T
	for _, row := range m.rows {
		record := PT(row).Record()
		if record.UserID != userID {
			continue
		}
		if !strings.Contains(strings.ToLower(record.Name), strings.ToLower(query)) {
			continue
		}
		clone := *row
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return PT(out[i]).Record().ID > PT(out[j]).Record().ID })
	if offset >= len(out) {
		return []*T{}, nil
	}
	return out[offset:], nil
}

func (m *mockMaterialRepository[T, PT]) Update(_ context.Context, _ *gorm.DB, row *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := PT(row).Record().ID
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *row
	m.rows[id] = &clone
	return nil
}

func (m *mockMaterialRepository[T, PT]) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

// mockRepository aggregates the in-memory repositories for service tests.
type mockRepository struct {
	user     *mockUserRepository
	schedule *mockScheduleRepository
	homework *mockMaterialRepository[models.Homework, *models.Homework]
	note     *mockMaterialRepository[models.Note, *models.Note]
}

func newMockRepository() *mockRepository {
	users := newMockUserRepository()
	return &mockRepository{
		user:     users,
		schedule: newMockScheduleRepository(users),
		homework: newMockMaterialRepository[models.Homework, *models.Homework](),
		note:     newMockMaterialRepository[models.Note, *models.Note](),
	}
}

func (m *mockRepository) User() repositories.UserRepository         { return m.user }
func (m *mockRepository) Schedule() repositories.ScheduleRepository { return m.schedule }
func (m *mockRepository) Homework() repositories.MaterialRepository[models.Homework] {
	return m.homework
}
func (m *mockRepository) Note() repositories.MaterialRepository[models.Note] { return m.note }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== MOCK MESSENGER =====

type sentMessage struct {
	ChatID int64
	Text   string
	Files  []string
}

type mockMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *mockMessenger) SendText(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *mockMessenger) SendFiles(_ context.Context, chatID int64, text string, files []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text, Files: files})
	return nil
}

func (m *mockMessenger) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
