package repository

import (
	"context"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
)

// UploadRepository persists attachment metadata for posts.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) error
	ListByPost(ctx context.Context, postID int64) ([]domain.Upload, error)
	GetByStorageKey(ctx context.Context, storageKey string) (*domain.Upload, error)
}

type uploadRepository struct {
	db persistence.Querier
}

// NewUploadRepository constructs repository.
func NewUploadRepository(db persistence.Querier) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *uploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	const query = `
        INSERT INTO flicket_uploads (post_id, file_name, storage_key)
        VALUES ($1,$2,$3)
        RETURNING id, date_added`
	return r.q(ctx).QueryRow(ctx, query,
		upload.PostID,
		upload.FileName,
		upload.StorageKey,
	).Scan(&upload.ID, &upload.DateAdded)
}

func (r *uploadRepository) GetByStorageKey(ctx context.Context, storageKey string) (*domain.Upload, error) {
	const query = `
        SELECT id, post_id, file_name, storage_key, date_added
        FROM flicket_uploads WHERE storage_key=$1`
	var upload domain.Upload
	if err := r.q(ctx).QueryRow(ctx, query, storageKey).Scan(
		&upload.ID,
		&upload.PostID,
		&upload.FileName,
		&upload.StorageKey,
		&upload.DateAdded,
	); err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Upload, error) {
	const query = `
        SELECT id, post_id, file_name, storage_key, date_added
        FROM flicket_uploads WHERE post_id=$1`
	rows, err := r.q(ctx).Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Upload
	for rows.Next() {
		var upload domain.Upload
		if err := rows.Scan(
			&upload.ID,
			&upload.PostID,
			&upload.FileName,
			&upload.StorageKey,
			&upload.DateAdded,
		); err != nil {
			return nil, err
		}
		result = append(result, upload)
	}
	return result, rows.Err()
}
