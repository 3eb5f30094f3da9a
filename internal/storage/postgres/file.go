package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

type FileStore struct {
	db *sqlx.DB
}

func NewFileStore(db *sqlx.DB) *FileStore {
	return &FileStore{db: db}
}

// Upsert keys files by (meeting, filename, sharer). Known values are not
// replaced by empty ones, and platform-listed files keep that source.
func (s *FileStore) Upsert(ctx context.Context, f *domain.SharedFile) error {
	query := `
		INSERT INTO shared_files (meeting_id, filename, shared_by_name, shared_by_id, file_url, file_size_bytes,
			content_type, source, shared_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (meeting_id, filename, shared_by_name) DO UPDATE SET
			shared_by_id = COALESCE(EXCLUDED.shared_by_id, shared_files.shared_by_id),
			file_url = COALESCE(EXCLUDED.file_url, shared_files.file_url),
			file_size_bytes = GREATEST(EXCLUDED.file_size_bytes, shared_files.file_size_bytes),
			content_type = COALESCE(EXCLUDED.content_type, shared_files.content_type),
			source = CASE WHEN shared_files.source = 'platform' THEN 'platform' ELSE EXCLUDED.source END,
			shared_at = EXCLUDED.shared_at
		RETURNING id`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &f.ID, query,
		f.MeetingID,
		f.Filename,
		f.SharedByName,
		f.SharedByID,
		f.FileURL,
		f.FileSizeBytes,
		f.ContentType,
		f.Source,
		f.SharedAt,
	)
	return classify("upsert shared file", err)
}

func (s *FileStore) ListByMeeting(ctx context.Context, meetingID int64) ([]domain.SharedFile, error) {
	var files []domain.SharedFile
	query := `
		SELECT id, meeting_id, filename, shared_by_name, shared_by_id, file_url, file_size_bytes,
			content_type, source, shared_at
		FROM shared_files
		WHERE meeting_id = $1
		ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &files, query, meetingID); err != nil {
		return nil, classify("list shared files", err)
	}
	return files, nil
}
