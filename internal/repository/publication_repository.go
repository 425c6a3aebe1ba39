package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crosspost-hq/crosspost/internal/models"
)

type PublicationRepository interface {
	Create(ctx context.Context, p *models.Publication) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Publication, error)
}

type publicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

func (r *publicationRepository) Create(ctx context.Context, p *models.Publication) (int64, error) {
	query := `
		INSERT INTO publications (user_id, account_id, content, media_url, external_post_id, post_url, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.AccountID, p.Content, p.MediaURL, p.ExternalPostID, p.PostURL, p.PublishedAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publicationRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Publication, error) {
	query := `
		SELECT id, user_id, account_id, content, media_url, external_post_id, post_url, published_at, created_at
		FROM publications WHERE user_id = $1 ORDER BY published_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var publications []*models.Publication
	for rows.Next() {
		var p models.Publication
		err := rows.Scan(&p.ID, &p.UserID, &p.AccountID, &p.Content, &p.MediaURL,
			&p.ExternalPostID, &p.PostURL, &p.PublishedAt, &p.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		publications = append(publications, &p)
	}
	return publications, rows.Err()
}
