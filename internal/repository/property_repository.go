package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// PropertyModel is the GORM model for the properties table.
type PropertyModel struct {
	ID                    uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OwnerID               uuid.UUID        `gorm:"type:uuid;index;not null"`
	Title                 string           `gorm:"not null;size:200"`
	City                  string           `gorm:"size:100"`
	DailyPrice            decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	MonthlyPrice          *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Currency              string           `gorm:"not null;size:3;default:'ghs'"`
	MinStayMonths         int              `gorm:"not null;default:12"`
	MaxStayMonths         *int             `gorm:""`
	MonthlyCycleStart     int              `gorm:"not null;default:1"`
	SecurityDepositMonths decimal.Decimal  `gorm:"type:numeric(4,1);not null;default:2.0"`
	Status                string           `gorm:"not null;size:20;index"`
	Version               int64            `gorm:"not null;default:1"`
	CreatedAt             time.Time        `gorm:"not null"`
	UpdatedAt             time.Time        `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PropertyModel) TableName() string {
	return "properties"
}

// GormPropertyRepository is the GORM-based implementation of PropertyRepository.
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository.
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID retrieves a property by its unique identifier.
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// LockByID retrieves a property with SELECT ... FOR UPDATE.
func (r *GormPropertyRepository) LockByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPropertyRepository) find(q *gorm.DB, id uuid.UUID) (*property.Property, error) {
	var model PropertyModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Property", id.String())
		}
		return nil, translateError(err, "find property")
	}
	return toDomainProperty(&model)
}

// FindByOwnerID retrieves properties for a specific owner with pagination.
func (r *GormPropertyRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*property.Property, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PropertyModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner properties: %w", err)
	}

	var models []PropertyModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner properties: %w", err)
	}

	properties := make([]*property.Property, len(models))
	for i := range models {
		p, err := toDomainProperty(&models[i])
		if err != nil {
			return nil, 0, err
		}
		properties[i] = p
	}
	return properties, total, nil
}

// ListIDsByOwner returns the ids of every property the owner lists.
func (r *GormPropertyRepository) ListIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&PropertyModel{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner property ids: %w", err)
	}
	return ids, nil
}

// Save persists a new property.
func (r *GormPropertyRepository) Save(ctx context.Context, p *property.Property) error {
	if err := r.db.WithContext(ctx).Create(toPropertyModel(p)).Error; err != nil {
		return translateError(err, "save property")
	}
	return nil
}

// Update persists changes to an existing property with optimistic locking.
func (r *GormPropertyRepository) Update(ctx context.Context, p *property.Property) error {
	model := toPropertyModel(p)
	result := r.db.WithContext(ctx).
		Model(&PropertyModel{}).
		Where("id = ? AND version = ?", model.ID, p.Version()-1).
		Updates(map[string]interface{}{
			"title":                   model.Title,
			"city":                    model.City,
			"daily_price":             model.DailyPrice,
			"monthly_price":           model.MonthlyPrice,
			"currency":                model.Currency,
			"min_stay_months":         model.MinStayMonths,
			"max_stay_months":         model.MaxStayMonths,
			"monthly_cycle_start":     model.MonthlyCycleStart,
			"security_deposit_months": model.SecurityDepositMonths,
			"status":                  model.Status,
			"version":                 model.Version,
			"updated_at":              model.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "update property")
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("property was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toPropertyModel(p *property.Property) *PropertyModel {
	return &PropertyModel{
		ID:                    p.ID(),
		OwnerID:               p.OwnerID(),
		Title:                 p.Title(),
		City:                  p.City(),
		DailyPrice:            p.DailyPrice(),
		MonthlyPrice:          p.MonthlyPrice(),
		Currency:              string(p.Currency()),
		MinStayMonths:         p.MinStayMonths(),
		MaxStayMonths:         p.MaxStayMonths(),
		MonthlyCycleStart:     p.CycleStartDay(),
		SecurityDepositMonths: p.DepositMonths(),
		Status:                string(p.Status()),
		Version:               p.Version(),
		CreatedAt:             p.CreatedAt(),
		UpdatedAt:             p.UpdatedAt(),
	}
}

func toDomainProperty(m *PropertyModel) (*property.Property, error) {
	status := property.Status(m.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid property status %q", m.Status)
	}
	deposit := m.SecurityDepositMonths
	return property.ReconstructProperty(
		m.ID,
		m.OwnerID,
		m.Title,
		m.City,
		property.Terms{
			DailyPrice:    m.DailyPrice,
			MonthlyPrice:  m.MonthlyPrice,
			Currency:      property.Currency(m.Currency),
			MinStayMonths: m.MinStayMonths,
			MaxStayMonths: m.MaxStayMonths,
			CycleStartDay: m.MonthlyCycleStart,
			DepositMonths: &deposit,
		},
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
