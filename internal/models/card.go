package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	StatusBacklog    = "backlog"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const dateLayout = "2006-01-02"

// DateOnly is a calendar date without a time component. It marshals to and
// from ISO 8601 dates ("2025-01-05") on the wire and stores as a date column.
type DateOnly struct {
	time.Time
}

func (d DateOnly) GormDataType() string {
	return "date"
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d DateOnly) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *DateOnly) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		t, err := time.Parse(dateLayout, v[:min(len(v), len(dateLayout))])
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", value)
	}
}

// Card is a single Kanban work item. Soft deletion flips IsActive; rows are
// never removed by the API.
type Card struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	Title               string    `json:"title" gorm:"size:200;not null"`
	Description         string    `json:"description"`
	Status              string    `json:"status" gorm:"size:32;index;not null"`
	Priority            string    `json:"priority" gorm:"size:16;index;not null"`
	DueDate             *DateOnly `json:"due_date"`
	Assignee            string    `json:"assignee" gorm:"size:120"`
	Tags                []string  `json:"tags" gorm:"serializer:json"`
	Company             string    `json:"company" gorm:"size:120"`
	CompanyContactName  string    `json:"company_contact_name" gorm:"size:120"`
	CompanyContactPhone string    `json:"company_contact_phone" gorm:"size:64"`
	JobNumber           string    `json:"job_number" gorm:"size:64"`
	ServiceQuote        string    `json:"service_quote" gorm:"size:64"`
	IsActive            bool      `json:"is_active" gorm:"index;default:true"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CardInput is the client-writable portion of a card. Pointer fields
// distinguish "absent" from "set to zero value" so the same type serves both
// create and partial update. ID, IsActive and the timestamps are not
// represented here: clients cannot set them.
type CardInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`

	// DueDate is an ISO 8601 date. JSON null is indistinguishable from an
	// absent field here, so an empty string is the way to clear a stored
	// date; absence leaves it untouched.
	DueDate             *string  `json:"due_date"`
	Assignee            *string  `json:"assignee"`
	Tags                []string `json:"tags"`
	Company             *string  `json:"company"`
	CompanyContactName  *string  `json:"company_contact_name"`
	CompanyContactPhone *string  `json:"company_contact_phone"`
	JobNumber           *string  `json:"job_number"`
	ServiceQuote        *string  `json:"service_quote"`
}

// FieldErrors maps a field name to the constraint it violated.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NormalizeTags removes duplicate tags while preserving the position of each
// first occurrence. A nil input yields an empty, non-nil slice.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !seen[tag] {
			seen[tag] = true
			normalized = append(normalized, tag)
		}
	}
	return normalized
}

// Validate checks the payload against the card constraints. With partial set,
// required fields may be absent (partial update); present fields are always
// validated. Returns nil when the payload is acceptable.
func (in *CardInput) Validate(partial bool) FieldErrors {
	errs := FieldErrors{}

	if !partial {
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			errs["title"] = "this field is required"
		}
		if in.Status == nil || *in.Status == "" {
			errs["status"] = "this field is required"
		}
		if in.Priority == nil || *in.Priority == "" {
			errs["priority"] = "this field is required"
		}
	}

	if in.Title != nil {
		if partial && strings.TrimSpace(*in.Title) == "" {
			errs["title"] = "this field may not be blank"
		}
		if utf8.RuneCountInString(*in.Title) > 200 {
			errs["title"] = "must be at most 200 characters"
		}
	}
	if in.Status != nil {
		if strings.TrimSpace(*in.Status) == "" {
			errs["status"] = "this field may not be blank"
		} else if utf8.RuneCountInString(*in.Status) > 32 {
			errs["status"] = "must be at most 32 characters"
		}
	}
	if in.Priority != nil {
		switch *in.Priority {
		case PriorityLow, PriorityMedium, PriorityHigh:
		default:
			errs["priority"] = "must be one of: low, medium, high"
		}
	}
	if in.DueDate != nil && *in.DueDate != "" {
		if _, err := time.Parse(dateLayout, *in.DueDate); err != nil {
			errs["due_date"] = "must be a valid ISO 8601 date (YYYY-MM-DD)"
		}
	}
	for _, tag := range in.Tags {
		if utf8.RuneCountInString(tag) > 32 {
			errs["tags"] = "each tag must be at most 32 characters"
			break
		}
	}

	bounded := []struct {
		name  string
		value *string
		max   int
	}{
		{"assignee", in.Assignee, 120},
		{"company", in.Company, 120},
		{"company_contact_name", in.CompanyContactName, 120},
		{"company_contact_phone", in.CompanyContactPhone, 64},
		{"job_number", in.JobNumber, 64},
		{"service_quote", in.ServiceQuote, 64},
	}
	for _, f := range bounded {
		if f.value != nil && utf8.RuneCountInString(*f.value) > f.max {
			errs[f.name] = fmt.Sprintf("must be at most %d characters", f.max)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ApplyTo copies the provided fields onto the card. Absent fields are left
// untouched; IsActive and the timestamps are never written here. Call only
// after Validate has passed.
func (in *CardInput) ApplyTo(c *Card) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.Priority != nil {
		c.Priority = *in.Priority
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			c.DueDate = nil
		} else {
			// Validate has already checked the layout.
			t, _ := time.Parse(dateLayout, *in.DueDate)
			c.DueDate = &DateOnly{t}
		}
	}
	if in.Assignee != nil {
		c.Assignee = *in.Assignee
	}
	if in.Tags != nil {
		c.Tags = NormalizeTags(in.Tags)
	}
	if in.Company != nil {
		c.Company = *in.Company
	}
	if in.CompanyContactName != nil {
		c.CompanyContactName = *in.CompanyContactName
	}
	if in.CompanyContactPhone != nil {
		c.CompanyContactPhone = *in.CompanyContactPhone
	}
	if in.JobNumber != nil {
		c.JobNumber = *in.JobNumber
	}
	if in.ServiceQuote != nil {
		c.ServiceQuote = *in.ServiceQuote
	}
}
