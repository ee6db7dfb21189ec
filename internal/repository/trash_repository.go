package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcclean/trash-service/internal/model"
)

const trashColumns = `
	id,
	user_id,
	trash_type,
	quantity,
	floor,
	room,
	time,
	photo_urls,
	created_at
`

type TrashRepository struct {
	db *gorm.DB
}

func NewTrashRepository(db *gorm.DB) *TrashRepository {
	return &TrashRepository{db: db}
}

func (r *TrashRepository) Insert(ctx context.Context, row model.Row) (model.Row, error) {
	photos, err := encodePhotos(row[model.ColPhotoURLs])
	if err != nil {
		return nil, err
	}

	saved := map[string]interface{}{}
	err = r.db.WithContext(ctx).Raw(`
		INSERT INTO trash (
			user_id,
			trash_type,
			quantity,
			floor,
			room,
			time,
			photo_urls
		) VALUES (?, ?, ?, ?, ?, ?, CAST(? AS JSONB))
		RETURNING`+trashColumns,
		row[model.ColUserID],
		row[model.ColTrashType],
		row[model.ColQuantity],
		row[model.ColFloor],
		row[model.ColRoom],
		row[model.ColTime],
		photos,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, fmt.Errorf("insert trash: no row returned")
	}
	return model.Row(saved), nil
}

// Update replaces every mutable column of the row matching both id and owner.
func (r *TrashRepository) Update(ctx context.Context, id, ownerID uuid.UUID, row model.Row) (model.Row, error) {
	photos, err := encodePhotos(row[model.ColPhotoURLs])
	if err != nil {
		return nil, err
	}

	saved := map[string]interface{}{}
	err = r.db.WithContext(ctx).Raw(`
		UPDATE trash
		SET
			trash_type = ?,
			quantity = ?,
			floor = ?,
			room = ?,
			time = ?,
			photo_urls = CAST(? AS JSONB)
		WHERE id = ? AND user_id = ?
		RETURNING`+trashColumns,
		row[model.ColTrashType],
		row[model.ColQuantity],
		row[model.ColFloor],
		row[model.ColRoom],
		row[model.ColTime],
		photos,
		id,
		ownerID,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, fmt.Errorf("%w: trash %s", model.ErrNotFound, id)
	}
	return model.Row(saved), nil
}

func (r *TrashRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (model.Row, error) {
	row := map[string]interface{}{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+trashColumns+`
		FROM trash
		WHERE id = ? AND user_id = ?
		LIMIT 1
	`, id, ownerID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, fmt.Errorf("%w: trash %s", model.ErrNotFound, id)
	}
	return model.Row(row), nil
}

func (r *TrashRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Row, error) {
	var rows []map[string]interface{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+trashColumns+`
		FROM trash
		WHERE user_id = ?
		ORDER BY time DESC, created_at DESC
	`, ownerID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRows(rows), nil
}

// ListContributions returns the owner and quantity of every stored row.
func (r *TrashRepository) ListContributions(ctx context.Context) ([]model.Row, error) {
	var rows []map[string]interface{}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT user_id, quantity
		FROM trash
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toRows(rows), nil
}

func (r *TrashRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM trash
		WHERE id = ? AND user_id = ?
	`, id, ownerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: trash %s", model.ErrNotFound, id)
	}
	return nil
}

func encodePhotos(value interface{}) (string, error) {
	photos, ok := value.([]string)
	if value != nil && !ok {
		return "", fmt.Errorf("photo_urls must be a list of strings, got %T", value)
	}
	if photos == nil {
		photos = []string{}
	}
	raw, err := json.Marshal(photos)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func toRows(rows []map[string]interface{}) []model.Row {
	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Row(row))
	}
	return out
}
