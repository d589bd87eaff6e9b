package student

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет основные операции CRUD для карточек учеников.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт новую карточку ученика.
	// Возвращает ErrStudentAlreadyExists, если ученик уже существует.
	Create(ctx context.Context, student *Student) error

	// GetByID возвращает ученика по ID.
	// Возвращает ErrStudentNotFound, если ученик не найден.
	GetByID(ctx context.Context, id string) (*Student, error)

	// Update обновляет карточку ученика.
	// Возвращает ErrStudentNotFound, если ученик не найден.
	Update(ctx context.Context, student *Student) error

	// Delete удаляет карточку ученика (soft delete).
	// Возвращает ErrStudentNotFound, если ученик не найден.
	Delete(ctx context.Context, id string) error

	// ─────────────────────────────────────────────────────────────────────────
	// Bulk Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetAll возвращает всех учеников с пагинацией.
	GetAll(ctx context.Context, opts ListOptions) ([]*Student, error)

	// GetByGrade возвращает учеников указанного класса.
	GetByGrade(ctx context.Context, grade string, opts ListOptions) ([]*Student, error)

	// GetByTeacher возвращает учеников классного руководителя.
	GetByTeacher(ctx context.Context, teacherID string, opts ListOptions) ([]*Student, error)

	// GetByIDs возвращает учеников по списку ID.
	GetByIDs(ctx context.Context, ids []string) ([]*Student, error)

	// BulkCreate создаёт несколько карточек в одной транзакции.
	// Либо создаются все, либо ни одной.
	BulkCreate(ctx context.Context, students []*Student) error

	// Count возвращает общее количество учеников.
	Count(ctx context.Context) (int, error)

	// CountByGrade возвращает количество учеников в классе.
	CountByGrade(ctx context.Context, grade string) (int, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Search & Filter
	// ─────────────────────────────────────────────────────────────────────────

	// Search выполняет поиск учеников по имени или фамилии.
	Search(ctx context.Context, query string, opts ListOptions) ([]*Student, error)

	// FindRecentlyAssessed находит учеников, у которых появились новые
	// оценки после указанного времени.
	FindRecentlyAssessed(ctx context.Context, since time.Time) ([]*Student, error)

	// FindStale находит учеников, чьи карточки не обновлялись дольше порога.
	FindStale(ctx context.Context, threshold time.Duration) ([]*Student, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Existence Checks
	// ─────────────────────────────────────────────────────────────────────────

	// Exists проверяет существование ученика по ID.
	Exists(ctx context.Context, id string) (bool, error)

	// ExistsByRollNumber проверяет, занят ли номер в журнале класса.
	ExistsByRollNumber(ctx context.Context, grade, section string, rollNumber int) (bool, error)
}

// ListOptions содержит параметры для пагинации и сортировки.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// SortBy - поле для сортировки.
	SortBy string

	// SortDesc - сортировка по убыванию.
	SortDesc bool

	// IncludeInactive - включать неактивных учеников.
	IncludeInactive bool
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:          0,
		Limit:           50,
		SortBy:          "last_name",
		SortDesc:        false,
		IncludeInactive: false,
	}
}

// WithOffset устанавливает смещение.
func (o ListOptions) WithOffset(offset int) ListOptions {
	o.Offset = offset
	return o
}

// WithLimit устанавливает лимит.
func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}

// WithSort устанавливает сортировку.
func (o ListOptions) WithSort(field string, desc bool) ListOptions {
	o.SortBy = field
	o.SortDesc = desc
	return o
}

// WithInactive включает неактивных учеников.
func (o ListOptions) WithInactive() ListOptions {
	o.IncludeInactive = true
	return o
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD REPOSITORY
// История оценок, поведенческих эпизодов и общения с родителями.
// ══════════════════════════════════════════════════════════════════════════════

// RecordRepository определяет операции для работы с записями ученика.
type RecordRepository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Assessments
	// ─────────────────────────────────────────────────────────────────────────

	// AddAssessment сохраняет оценочную работу.
	AddAssessment(ctx context.Context, assessment *Assessment) error

	// GetAssessments возвращает работы ученика от новых к старым.
	GetAssessments(ctx context.Context, studentID string, limit int) ([]*Assessment, error)

	// GetAssessmentsBySubject возвращает работы ученика по предмету.
	GetAssessmentsBySubject(ctx context.Context, studentID, subject string) ([]*Assessment, error)

	// GetAssessmentsSince возвращает работы ученика после указанной даты.
	GetAssessmentsSince(ctx context.Context, studentID string, since time.Time) ([]*Assessment, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Behavioral Incidents
	// ─────────────────────────────────────────────────────────────────────────

	// AddIncident сохраняет поведенческий эпизод.
	AddIncident(ctx context.Context, incident *BehavioralIncident) error

	// GetIncidents возвращает эпизоды ученика от новых к старым.
	GetIncidents(ctx context.Context, studentID string, limit int) ([]*BehavioralIncident, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Parent Communications
	// ─────────────────────────────────────────────────────────────────────────

	// AddCommunication сохраняет запись общения с родителями.
	AddCommunication(ctx context.Context, communication *ParentCommunication) error

	// GetCommunications возвращает записи общения от новых к старым.
	GetCommunications(ctx context.Context, studentID string, limit int) ([]*ParentCommunication, error)

	// GetOpenFollowUps возвращает записи, требующие продолжения работы.
	GetOpenFollowUps(ctx context.Context, before time.Time) ([]*ParentCommunication, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Для кеширования часто запрашиваемых карточек (обычно Redis).
// ══════════════════════════════════════════════════════════════════════════════

// Cache определяет операции кеширования карточек учеников.
type Cache interface {
	// Get получает карточку из кеша.
	Get(ctx context.Context, studentID string) (*Student, error)

	// Set сохраняет карточку в кеш.
	Set(ctx context.Context, student *Student, ttl time.Duration) error

	// Delete удаляет карточку из кеша.
	Delete(ctx context.Context, studentID string) error

	// Invalidate инвалидирует все данные ученика в кеше,
	// включая собранный профиль и брифинг.
	Invalidate(ctx context.Context, studentID string) error

	// InvalidateAll очищает весь кеш учеников.
	InvalidateAll(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK (для транзакций)
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork представляет единицу работы с транзакционной семантикой.
type UnitOfWork interface {
	// Students возвращает репозиторий учеников в рамках транзакции.
	Students() Repository

	// Records возвращает репозиторий записей в рамках транзакции.
	Records() RecordRepository

	// Commit фиксирует транзакцию.
	Commit(ctx context.Context) error

	// Rollback откатывает транзакцию.
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory создаёт единицы работы.
type UnitOfWorkFactory interface {
	// Begin начинает новую транзакцию.
	Begin(ctx context.Context) (UnitOfWork, error)
}
