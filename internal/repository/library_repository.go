package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

const libraryBookColumns = `id, title, author, subject, keywords, pdf_url, cover_image_url, description, status, approved_by, uploaded_by, created_at, updated_at`

const libraryBookBinColumns = `id, original_book_id, title, author, subject, keywords, pdf_url, cover_image_url, description, status, uploaded_by, deleted_at`

const libraryVideoColumns = `id, title, author, subject, keywords, video_url, cover_image_url, description, status, uploaded_by, created_at, updated_at`

const libraryVideoBinColumns = `id, original_video_id, title, author, subject, keywords, video_url, cover_image_url, description, status, uploaded_by, deleted_at`

// libraryListClauses builds the shared WHERE / ORDER BY / paging parts of a
// library listing. Search spans title, author, subject and description;
// Keyword matches the keyword array; the per-field filters use
// case-insensitive substring match. Filters combine with AND.
func libraryListClauses(filter models.LibraryFilter) (string, []interface{}, string, int, int) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(author) LIKE $%d OR LOWER(subject) LIKE $%d OR LOWER(description) LIKE $%d)", n, n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.Author != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(author) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Author)+"%")
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(subject) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Subject)+"%")
	}
	if filter.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(keywords)", len(args)+1))
		args = append(args, filter.Keyword)
	}

	where := ""
	if len(conditions) > 0 {
		where = " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"title":      true,
		"author":     true,
		"subject":    true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return where, args, fmt.Sprintf("%s %s", sortBy, sortOrder), pageSize, (page - 1) * pageSize
}

// LibraryRepository provides database access for library books, library
// videos and their recycle bins.
type LibraryRepository struct {
	db        *sqlx.DB
	retention time.Duration
}

// NewLibraryRepository creates a new instance of LibraryRepository.
func NewLibraryRepository(db *sqlx.DB, retention time.Duration) *LibraryRepository {
	return &LibraryRepository{db: db, retention: retention}
}

func (r *LibraryRepository) binCutoff() time.Time {
	return time.Now().UTC().Add(-r.retention)
}

// CreateBook inserts a new library book.
func (r *LibraryRepository) CreateBook(ctx context.Context, book *models.LibraryBook) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	const query = `INSERT INTO library_books (id, title, author, subject, keywords, pdf_url, cover_image_url, description, status, approved_by, uploaded_by, created_at, updated_at) VALUES (:id, :title, :author, :subject, :keywords, :pdf_url, :cover_image_url, :description, :status, :approved_by, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("create library book: %w", err)
	}
	return nil
}

// UpdateBook updates the mutable fields of a library book.
func (r *LibraryRepository) UpdateBook(ctx context.Context, book *models.LibraryBook) error {
	book.UpdatedAt = time.Now().UTC()
	const query = `UPDATE library_books SET title = :title, author = :author, subject = :subject, keywords = :keywords, pdf_url = :pdf_url, cover_image_url = :cover_image_url, description = :description, status = :status, approved_by = :approved_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("update library book: %w", err)
	}
	return nil
}

// FindBook returns an active library book by id.
func (r *LibraryRepository) FindBook(ctx context.Context, id string) (*models.LibraryBook, error) {
	query := `SELECT ` + libraryBookColumns + ` FROM library_books WHERE id = $1 LIMIT 1`
	var book models.LibraryBook
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find library book: %w", err)
	}
	return &book, nil
}

// ListBooks returns library books based on filters with total count.
func (r *LibraryRepository) ListBooks(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryBook, int, error) {
	where, args, orderBy, limit, offset := libraryListClauses(filter)
	baseQuery := `FROM library_books WHERE 1=1` + where

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", libraryBookColumns, baseQuery, orderBy, limit, offset)
	var books []models.LibraryBook
	if err := r.db.SelectContext(ctx, &books, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list library books: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count library books: %w", err)
	}
	return books, total, nil
}

// MoveBookToBin copies a book into the recycle bin and deletes the original
// in one transaction.
func (r *LibraryRepository) MoveBookToBin(ctx context.Context, entityID string, bin *models.LibraryBookBinItem) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO library_book_recycle_bin (id, original_book_id, title, author, subject, keywords, pdf_url, cover_image_url, description, status, uploaded_by, deleted_at) VALUES (:id, :original_book_id, :title, :author, :subject, :keywords, :pdf_url, :cover_image_url, :description, :status, :uploaded_by, :deleted_at)`
		if _, err := tx.NamedExecContext(ctx, insert, bin); err != nil {
			return fmt.Errorf("insert library book bin: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM library_books WHERE id = $1`, entityID); err != nil {
			return fmt.Errorf("delete library book: %w", err)
		}
		return nil
	})
	if isUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, "library book already in recycle bin")
	}
	return err
}

// MoveBookFromBin inserts the restored book and removes the bin record in
// one transaction. Restored rows get fresh timestamps, same as CreateBook.
func (r *LibraryRepository) MoveBookFromBin(ctx context.Context, binID string, entity *models.LibraryBook) error {
	now := time.Now().UTC()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO library_books (id, title, author, subject, keywords, pdf_url, cover_image_url, description, status, approved_by, uploaded_by, created_at, updated_at) VALUES (:id, :title, :author, :subject, :keywords, :pdf_url, :cover_image_url, :description, :status, :approved_by, :uploaded_by, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, entity); err != nil {
			return fmt.Errorf("restore library book: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM library_book_recycle_bin WHERE id = $1`, binID); err != nil {
			return fmt.Errorf("delete library book bin: %w", err)
		}
		return nil
	})
}

// FindBookBin returns a non-expired book recycle-bin record by id.
func (r *LibraryRepository) FindBookBin(ctx context.Context, id string) (*models.LibraryBookBinItem, error) {
	query := `SELECT ` + libraryBookBinColumns + ` FROM library_book_recycle_bin WHERE id = $1 AND deleted_at > $2 LIMIT 1`
	var bin models.LibraryBookBinItem
	if err := r.db.GetContext(ctx, &bin, query, id, r.binCutoff()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find library book bin: %w", err)
	}
	return &bin, nil
}

// ListBookBin returns all non-expired book recycle-bin records, newest
// first.
func (r *LibraryRepository) ListBookBin(ctx context.Context) ([]models.LibraryBookBinItem, error) {
	query := `SELECT ` + libraryBookBinColumns + ` FROM library_book_recycle_bin WHERE deleted_at > $1 ORDER BY deleted_at DESC`
	var items []models.LibraryBookBinItem
	if err := r.db.SelectContext(ctx, &items, query, r.binCutoff()); err != nil {
		return nil, fmt.Errorf("list library book bin: %w", err)
	}
	return items, nil
}

// DeleteBookBin permanently removes a book recycle-bin record.
func (r *LibraryRepository) DeleteBookBin(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM library_book_recycle_bin WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete library book bin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete library book bin: %w", err)
	}
	return affected > 0, nil
}

// CreateVideo inserts a new library video.
func (r *LibraryRepository) CreateVideo(ctx context.Context, video *models.LibraryVideo) error {
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now

	const query = `INSERT INTO library_videos (id, title, author, subject, keywords, video_url, cover_image_url, description, status, uploaded_by, created_at, updated_at) VALUES (:id, :title, :author, :subject, :keywords, :video_url, :cover_image_url, :description, :status, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, video); err != nil {
		return fmt.Errorf("create library video: %w", err)
	}
	return nil
}

// UpdateVideo updates the mutable fields of a library video.
func (r *LibraryRepository) UpdateVideo(ctx context.Context, video *models.LibraryVideo) error {
	video.UpdatedAt = time.Now().UTC()
	const query = `UPDATE library_videos SET title = :title, author = :author, subject = :subject, keywords = :keywords, video_url = :video_url, cover_image_url = :cover_image_url, description = :description, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, video); err != nil {
		return fmt.Errorf("update library video: %w", err)
	}
	return nil
}

// FindVideo returns an active library video by id.
func (r *LibraryRepository) FindVideo(ctx context.Context, id string) (*models.LibraryVideo, error) {
	query := `SELECT ` + libraryVideoColumns + ` FROM library_videos WHERE id = $1 LIMIT 1`
	var video models.LibraryVideo
	if err := r.db.GetContext(ctx, &video, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find library video: %w", err)
	}
	return &video, nil
}

// ListVideos returns library videos based on filters with total count.
func (r *LibraryRepository) ListVideos(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryVideo, int, error) {
	where, args, orderBy, limit, offset := libraryListClauses(filter)
	baseQuery := `FROM library_videos WHERE 1=1` + where

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", libraryVideoColumns, baseQuery, orderBy, limit, offset)
	var videos []models.LibraryVideo
	if err := r.db.SelectContext(ctx, &videos, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list library videos: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count library videos: %w", err)
	}
	return videos, total, nil
}

// MoveVideoToBin copies a library video into the recycle bin and deletes the
// original in one transaction.
func (r *LibraryRepository) MoveVideoToBin(ctx context.Context, entityID string, bin *models.LibraryVideoBinItem) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO library_video_recycle_bin (id, original_video_id, title, author, subject, keywords, video_url, cover_image_url, description, status, uploaded_by, deleted_at) VALUES (:id, :original_video_id, :title, :author, :subject, :keywords, :video_url, :cover_image_url, :description, :status, :uploaded_by, :deleted_at)`
		if _, err := tx.NamedExecContext(ctx, insert, bin); err != nil {
			return fmt.Errorf("insert library video bin: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM library_videos WHERE id = $1`, entityID); err != nil {
			return fmt.Errorf("delete library video: %w", err)
		}
		return nil
	})
	if isUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, "library video already in recycle bin")
	}
	return err
}

// MoveVideoFromBin inserts the restored video and removes the bin record in
// one transaction. Restored rows get fresh timestamps, same as CreateVideo.
func (r *LibraryRepository) MoveVideoFromBin(ctx context.Context, binID string, entity *models.LibraryVideo) error {
	now := time.Now().UTC()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO library_videos (id, title, author, subject, keywords, video_url, cover_image_url, description, status, uploaded_by, created_at, updated_at) VALUES (:id, :title, :author, :subject, :keywords, :video_url, :cover_image_url, :description, :status, :uploaded_by, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, entity); err != nil {
			return fmt.Errorf("restore library video: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM library_video_recycle_bin WHERE id = $1`, binID); err != nil {
			return fmt.Errorf("delete library video bin: %w", err)
		}
		return nil
	})
}

// FindVideoBin returns a non-expired video recycle-bin record by id.
func (r *LibraryRepository) FindVideoBin(ctx context.Context, id string) (*models.LibraryVideoBinItem, error) {
	query := `SELECT ` + libraryVideoBinColumns + ` FROM library_video_recycle_bin WHERE id = $1 AND deleted_at > $2 LIMIT 1`
	var bin models.LibraryVideoBinItem
	if err := r.db.GetContext(ctx, &bin, query, id, r.binCutoff()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find library video bin: %w", err)
	}
	return &bin, nil
}

// ListVideoBin returns all non-expired video recycle-bin records, newest
// first.
func (r *LibraryRepository) ListVideoBin(ctx context.Context) ([]models.LibraryVideoBinItem, error) {
	query := `SELECT ` + libraryVideoBinColumns + ` FROM library_video_recycle_bin WHERE deleted_at > $1 ORDER BY deleted_at DESC`
	var items []models.LibraryVideoBinItem
	if err := r.db.SelectContext(ctx, &items, query, r.binCutoff()); err != nil {
		return nil, fmt.Errorf("list library video bin: %w", err)
	}
	return items, nil
}

// DeleteVideoBin permanently removes a video recycle-bin record.
func (r *LibraryRepository) DeleteVideoBin(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM library_video_recycle_bin WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete library video bin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete library video bin: %w", err)
	}
	return affected > 0, nil
}

// PurgeExpired removes book and video recycle-bin records past the
// retention window.
func (r *LibraryRepository) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := r.binCutoff()
	var total int64
	for _, table := range []string{"library_book_recycle_bin", "library_video_recycle_bin"} {
		res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE deleted_at <= $1", table), cutoff)
		if err != nil {
			return total, fmt.Errorf("purge %s: %w", table, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("purge %s: %w", table, err)
		}
		total += affected
	}
	return total, nil
}
