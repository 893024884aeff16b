package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelierhaus/backend/internal/collection"
	"github.com/atelierhaus/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// galleryMediaGateway adapts GalleryMedia rows to the collection engine.
// Save replaces the owner's child-row set inside one transaction: new
// records are created, existing ones updated, and rows the collection no
// longer references are deleted. Nothing here relies on ORM cascade
// semantics.
type galleryMediaGateway struct {
	db *gorm.DB
}

func (g *galleryMediaGateway) Load(ctx context.Context, ownerID uuid.UUID) (*collection.OwnedCollection, error) {
	var item models.GalleryItem
	if err := g.db.WithContext(ctx).Select("id").First(&item, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: gallery item %s", collection.ErrOwnerNotFound, ownerID)
		}
		return nil, err
	}

	var rows []models.GalleryMedia
	if err := g.db.WithContext(ctx).
		Where("gallery_item_id = ?", ownerID).
		Order("sort_key ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*collection.Record, len(rows))
	for i, row := range rows {
		records[i] = &collection.Record{
			ID:         row.ID,
			StorageKey: row.StorageKey,
			Filename:   row.Filename,
			MimeType:   row.MimeType,
			SizeBytes:  row.SizeBytes,
			Kind:       collection.MediaKind(row.Kind),
			SortKey:    row.SortKey,
			Primary:    row.IsPrimary,
		}
	}
	return collection.New(ownerID, records), nil
}

func (g *galleryMediaGateway) Save(ctx context.Context, col *collection.OwnedCollection) (*collection.OwnedCollection, error) {
	records := col.Records()
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]uuid.UUID, 0, len(records))
		for _, r := range records {
			if r.ID == uuid.Nil {
				row := models.GalleryMedia{
					GalleryItemID: col.OwnerID(),
					StorageKey:    r.StorageKey,
					Filename:      r.Filename,
					MimeType:      r.MimeType,
					SizeBytes:     r.SizeBytes,
					Kind:          string(r.Kind),
					SortKey:       r.SortKey,
					IsPrimary:     r.Primary,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				r.ID = row.ID
			} else {
				if err := tx.Model(&models.GalleryMedia{}).
					Where("id = ? AND gallery_item_id = ?", r.ID, col.OwnerID()).
					Updates(map[string]interface{}{
						"sort_key":   r.SortKey,
						"is_primary": r.Primary,
					}).Error; err != nil {
					return err
				}
			}
			keep = append(keep, r.ID)
		}

		// rows no longer referenced by the collection are deleted, not orphaned
		del := tx.Where("gallery_item_id = ?", col.OwnerID())
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		return del.Delete(&models.GalleryMedia{}).Error
	})
	if err != nil {
		return nil, err
	}
	return g.Load(ctx, col.OwnerID())
}

func (g *galleryMediaGateway) DeleteOwner(ctx context.Context, ownerID uuid.UUID) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_item_id = ?", ownerID).Delete(&models.GalleryMedia{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.GalleryItem{}, "id = ?", ownerID).Error
	})
}

// projectMediaGateway adapts ProjectMedia rows to the collection engine;
// same contract as the gallery gateway.
type projectMediaGateway struct {
	db *gorm.DB
}

func (g *projectMediaGateway) Load(ctx context.Context, ownerID uuid.UUID) (*collection.OwnedCollection, error) {
	var project models.Project
	if err := g.db.WithContext(ctx).Select("id").First(&project, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %s", collection.ErrOwnerNotFound, ownerID)
		}
		return nil, err
	}

	var rows []models.ProjectMedia
	if err := g.db.WithContext(ctx).
		Where("project_id = ?", ownerID).
		Order("sort_key ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*collection.Record, len(rows))
	for i, row := range rows {
		records[i] = &collection.Record{
			ID:         row.ID,
			StorageKey: row.StorageKey,
			Filename:   row.Filename,
			MimeType:   row.MimeType,
			SizeBytes:  row.SizeBytes,
			Kind:       collection.MediaKind(row.Kind),
			SortKey:    row.SortKey,
			Primary:    row.IsPrimary,
		}
	}
	return collection.New(ownerID, records), nil
}

func (g *projectMediaGateway) Save(ctx context.Context, col *collection.OwnedCollection) (*collection.OwnedCollection, error) {
	records := col.Records()
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]uuid.UUID, 0, len(records))
		for _, r := range records {
			if r.ID == uuid.Nil {
				row := models.ProjectMedia{
					ProjectID:  col.OwnerID(),
					StorageKey: r.StorageKey,
					Filename:   r.Filename,
					MimeType:   r.MimeType,
					SizeBytes:  r.SizeBytes,
					Kind:       string(r.Kind),
					SortKey:    r.SortKey,
					IsPrimary:  r.Primary,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				r.ID = row.ID
			} else {
				if err := tx.Model(&models.ProjectMedia{}).
					Where("id = ? AND project_id = ?", r.ID, col.OwnerID()).
					Updates(map[string]interface{}{
						"sort_key":   r.SortKey,
						"is_primary": r.Primary,
					}).Error; err != nil {
					return err
				}
			}
			keep = append(keep, r.ID)
		}

		del := tx.Where("project_id = ?", col.OwnerID())
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		return del.Delete(&models.ProjectMedia{}).Error
	})
	if err != nil {
		return nil, err
	}
	return g.Load(ctx, col.OwnerID())
}

func (g *projectMediaGateway) DeleteOwner(ctx context.Context, ownerID uuid.UUID) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", ownerID).Delete(&models.ProjectMedia{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", ownerID).Error
	})
}
