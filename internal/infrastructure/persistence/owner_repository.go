package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/propely/backend/internal/domain/property"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOwnerRepository implements OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByID finds an owner by its ID
func (r *GormOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds an owner by ID scoped to an org
func (r *GormOwnerRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*property.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds owners matching the filter across orgs
func (r *GormOwnerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]property.Owner, error) {
	var ownerModels []models.OwnerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OwnerModel{}), filter)
	if err := query.Find(&ownerModels).Error; err != nil {
		return nil, err
	}
	owners := make([]property.Owner, len(ownerModels))
	for i, model := range ownerModels {
		owners[i] = *model.ToDomain()
	}
	return owners, nil
}

// FindAllForOrg finds all live owners for an org with filtering
func (r *GormOwnerRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]property.Owner, error) {
	var ownerModels []models.OwnerModel
	query := r.db.WithContext(ctx).Model(&models.OwnerModel{}).
		Where("org_id = ? AND deleted_at IS NULL", orgID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&ownerModels).Error; err != nil {
		return nil, err
	}
	owners := make([]property.Owner, len(ownerModels))
	for i, model := range ownerModels {
		owners[i] = *model.ToDomain()
	}
	return owners, nil
}

// FindByEmail finds an owner by email for an org, soft-deleted rows included
func (r *GormOwnerRepository) FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*property.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND email = ?", orgID, email).
		Order("deleted_at IS NOT NULL ASC, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindExistingIDs returns the subset of the given IDs that belong to live
// owners in the org
func (r *GormOwnerRepository) FindExistingIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var existing []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.OwnerModel{}).
		Where("org_id = ? AND id IN ? AND deleted_at IS NULL", orgID, ids).
		Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// Save creates or updates an owner
func (r *GormOwnerRepository) Save(ctx context.Context, owner *property.Owner) error {
	var model models.OwnerModel
	model.FromDomain(owner)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes an owner row. Application code soft-deletes through
// MarkDeleted and Save; this hard delete exists for the generic contract.
func (r *GormOwnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OwnerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts owners matching the filter
func (r *GormOwnerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OwnerModel{}).
		Where("deleted_at IS NULL")
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", searchPattern, searchPattern)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies search, ordering and pagination to the query
func (r *GormOwnerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", searchPattern, searchPattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("name ASC")
	}

	return query
}

// Ensure GormOwnerRepository implements OwnerRepository
var _ property.OwnerRepository = (*GormOwnerRepository)(nil)
