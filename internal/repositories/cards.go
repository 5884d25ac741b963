package repositories

import (
	"errors"
	"fmt"
	"strings"

	"kanban-board/backend/internal/models"

	"gorm.io/gorm"
)

var ErrCardNotFound = errors.New("card not found")

// ListQuery carries the optional narrowing applied by the list operation.
// Exact-match filters are AND-combined; empty values are ignored.
type ListQuery struct {
	Status       string
	Priority     string
	Assignee     string
	JobNumber    string
	ServiceQuote string
	Company      string

	// Tags is a comma separated list; a card matches only if it carries
	// every listed tag.
	Tags string

	// Search is matched case-insensitively as a substring of any text field.
	Search string

	// Ordering names one of created_at, updated_at, priority, due_date,
	// with an optional leading '-' for descending. Unknown fields fall back
	// to the default ordering (created_at descending).
	Ordering string

	IncludeInactive bool
}

type CardRepository interface {
	Create(input models.CardInput) (models.Card, error)
	Get(id uint) (models.Card, error)
	Update(id uint, input models.CardInput) (models.Card, error)
	SoftDelete(id uint) error
	Restore(id uint) (models.Card, error)
	List(q ListQuery) ([]models.Card, error)
}

type GormCardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

func (r *GormCardRepository) Create(input models.CardInput) (models.Card, error) {
	card := models.Card{IsActive: true, Tags: []string{}}
	input.ApplyTo(&card)

	if err := r.db.Create(&card).Error; err != nil {
		return models.Card{}, fmt.Errorf("failed to create card: %w", err)
	}
	return card, nil
}

// Get returns the card regardless of its active state: soft deletion hides a
// card from listings, not from direct lookup.
func (r *GormCardRepository) Get(id uint) (models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Card{}, ErrCardNotFound
		}
		return models.Card{}, err
	}
	return card, nil
}

// Update applies the provided fields and refreshes updated_at, even when the
// submitted values equal the stored ones. IsActive is never changed here.
func (r *GormCardRepository) Update(id uint, input models.CardInput) (models.Card, error) {
	var card models.Card
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&card, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return err
		}
		input.ApplyTo(&card)
		return tx.Save(&card).Error
	})
	if err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// SoftDelete flips is_active to false. Repeated calls are no-ops: the flag
// stays false and updated_at is only refreshed on an actual state change.
func (r *GormCardRepository) SoftDelete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var card models.Card
		if err := tx.First(&card, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return err
		}
		if !card.IsActive {
			return nil
		}
		return tx.Model(&card).Update("is_active", false).Error
	})
}

// Restore flips is_active back to true and returns the card. Restoring an
// already-active card returns it unchanged.
func (r *GormCardRepository) Restore(id uint) (models.Card, error) {
	var card models.Card
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&card, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return err
		}
		if card.IsActive {
			return nil
		}
		if err := tx.Model(&card).Update("is_active", true).Error; err != nil {
			return err
		}
		return tx.First(&card, id).Error
	})
	if err != nil {
		return models.Card{}, err
	}
	return card, nil
}

func (r *GormCardRepository) List(q ListQuery) ([]models.Card, error) {
	db := r.db.Model(&models.Card{})

	if !q.IncludeInactive {
		db = db.Where("is_active = ?", true)
	}

	exact := map[string]string{
		"status":        q.Status,
		"priority":      q.Priority,
		"assignee":      q.Assignee,
		"job_number":    q.JobNumber,
		"service_quote": q.ServiceQuote,
		"company":       q.Company,
	}
	for column, value := range exact {
		if value != "" {
			db = db.Where(column+" = ?", value)
		}
	}

	// The tags column holds a JSON array of strings, so probing for the
	// quoted literal is an exact membership test per tag.
	for _, tag := range SplitTags(q.Tags) {
		db = db.Where(`tags LIKE ? ESCAPE '\'`, `%"`+likeEscaper.Replace(tag)+`"%`)
	}

	if q.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
		db = db.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`+
				` OR LOWER(assignee) LIKE ? ESCAPE '\' OR LOWER(job_number) LIKE ? ESCAPE '\'`+
				` OR LOWER(service_quote) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern, pattern, pattern,
		)
	}

	cards := make([]models.Card, 0)
	if err := db.Order(orderClause(q.Ordering)).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// likeEscaper neutralizes LIKE metacharacters in user text; the queries
// carry ESCAPE '\' so the escaping behaves the same on sqlite and postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SplitTags parses a comma separated tag list, trimming whitespace and
// discarding empty tokens.
func SplitTags(value string) []string {
	if value == "" {
		return nil
	}
	var tags []string
	for _, token := range strings.Split(value, ",") {
		if tag := strings.TrimSpace(token); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

var orderableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"priority":   true,
	"due_date":   true,
}

func orderClause(ordering string) string {
	field := ordering
	direction := "ASC"
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		direction = "DESC"
	}
	if !orderableColumns[field] {
		return "created_at DESC"
	}
	return field + " " + direction
}
