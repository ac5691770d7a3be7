package services

import (
	"context"
	"errors"
	"fmt"

	"momentumAPI/internal/note"
	"momentumAPI/internal/stats"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NoteService struct {
	db *pgxpool.Pool
}

func NewNoteService(db *pgxpool.Pool) *NoteService {
	return &NoteService{db: db}
}

const noteColumns = `id, user_id, title, content, note_type, is_pinned, is_archived, tags, created_at, updated_at`

func scanNote(row pgx.Row) (*note.Note, error) {
	n := &note.Note{}
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Content,
		&n.NoteType,
		&n.IsPinned,
		&n.IsArchived,
		&n.Tags,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteService) queryNotes(ctx context.Context, query string, args ...any) ([]*note.Note, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	defer rows.Close()

	notes := []*note.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *NoteService) CreateNote(ctx context.Context, clerkID string, req *note.CreateNoteRequest) (*note.Note, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	noteType := req.NoteType
	if noteType == "" {
		noteType = "note"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
	INSERT INTO notes (id, user_id, title, content, note_type, tags, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING ` + noteColumns

	n, err := scanNote(s.db.QueryRow(ctx, query, uuid.New(), clerkID, req.Title, req.Content, noteType, tags))
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return n, nil
}

func (s *NoteService) GetNotes(ctx context.Context, clerkID string, noteType, search string, pinnedOnly, includeArchived bool) ([]*note.Note, error) {
	query := `
	SELECT ` + noteColumns + `
	FROM notes
	WHERE user_id = $1 AND NOT is_deleted`
	args := []any{clerkID}

	if noteType != "" {
		args = append(args, noteType)
		query += fmt.Sprintf(" AND note_type = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR content ILIKE $%d)", len(args), len(args))
	}
	if pinnedOnly {
		query += " AND is_pinned"
	}
	if !includeArchived {
		query += " AND NOT is_archived"
	}
	query += " ORDER BY is_pinned DESC, updated_at DESC"

	return s.queryNotes(ctx, query, args...)
}

func (s *NoteService) GetNote(ctx context.Context, clerkID string, noteID uuid.UUID) (*note.NoteWithLinks, error) {
	n, err := s.getNoteByUser(ctx, clerkID, noteID)
	if err != nil {
		return nil, err
	}

	linksTo, err := s.queryNotes(ctx, `
	SELECT `+noteColumns+`
	FROM notes
	WHERE id IN (SELECT target_note_id FROM note_links WHERE source_note_id = $1)
		AND NOT is_deleted
	ORDER BY title ASC`, noteID)
	if err != nil {
		return nil, err
	}

	linkedBy, err := s.queryNotes(ctx, `
	SELECT `+noteColumns+`
	FROM notes
	WHERE id IN (SELECT source_note_id FROM note_links WHERE target_note_id = $1)
		AND NOT is_deleted
	ORDER BY title ASC`, noteID)
	if err != nil {
		return nil, err
	}

	return &note.NoteWithLinks{
		Note:      n,
		LinksTo:   linksTo,
		LinkedBy:  linkedBy,
		WordCount: n.WordCount(),
	}, nil
}

func (s *NoteService) getNoteByUser(ctx context.Context, clerkID string, noteID uuid.UUID) (*note.Note, error) {
	n, err := scanNote(s.db.QueryRow(ctx, `
	SELECT `+noteColumns+`
	FROM notes
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted`, noteID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

func (s *NoteService) UpdateNote(ctx context.Context, clerkID string, noteID uuid.UUID, req *note.UpdateNoteRequest) (*note.Note, error) {
	var tags any
	if req.Tags != nil {
		tags = req.Tags
	}

	query := `
	UPDATE notes
	SET
		title = COALESCE($3, title),
		content = COALESCE($4, content),
		note_type = COALESCE($5, note_type),
		is_archived = COALESCE($6, is_archived),
		tags = COALESCE($7, tags),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	RETURNING ` + noteColumns

	n, err := scanNote(s.db.QueryRow(ctx, query, noteID, clerkID, req.Title, req.Content, req.NoteType, req.IsArchived, tags))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return n, nil
}

func (s *NoteService) DeleteNote(ctx context.Context, clerkID string, noteID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
	UPDATE notes
	SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted`, noteID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Soft-deleted notes should not keep showing up as links.
	if _, err := tx.Exec(ctx, `
	DELETE FROM note_links WHERE source_note_id = $1 OR target_note_id = $1`, noteID); err != nil {
		return fmt.Errorf("failed to remove note links: %w", err)
	}

	return tx.Commit(ctx)
}

// TogglePin flips the pinned flag and returns the updated note.
func (s *NoteService) TogglePin(ctx context.Context, clerkID string, noteID uuid.UUID) (*note.Note, error) {
	n, err := scanNote(s.db.QueryRow(ctx, `
	UPDATE notes
	SET is_pinned = NOT is_pinned, updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	RETURNING `+noteColumns, noteID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to toggle pin: %w", err)
	}
	return n, nil
}

func (s *NoteService) AddLink(ctx context.Context, clerkID string, sourceID, targetID uuid.UUID) error {
	if sourceID == targetID {
		return fmt.Errorf("%w: a note cannot link to itself", ErrInvalidArgument)
	}
	if _, err := s.getNoteByUser(ctx, clerkID, sourceID); err != nil {
		return err
	}
	if _, err := s.getNoteByUser(ctx, clerkID, targetID); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx, `
	INSERT INTO note_links (source_note_id, target_note_id)
	VALUES ($1, $2)
	ON CONFLICT (source_note_id, target_note_id) DO NOTHING`, sourceID, targetID)
	if err != nil {
		return fmt.Errorf("failed to add note link: %w", err)
	}
	return nil
}

func (s *NoteService) RemoveLink(ctx context.Context, clerkID string, sourceID, targetID uuid.UUID) error {
	if _, err := s.getNoteByUser(ctx, clerkID, sourceID); err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
	DELETE FROM note_links
	WHERE source_note_id = $1 AND target_note_id = $2`, sourceID, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove note link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NoteService) GetStats(ctx context.Context, clerkID string) (*stats.NoteStats, error) {
	st := &stats.NoteStats{}

	err := s.db.QueryRow(ctx, `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE is_pinned),
		COUNT(*) FILTER (WHERE is_archived),
		COALESCE(SUM(array_length(regexp_split_to_array(trim(content), '\s+'), 1)) FILTER (WHERE content != ''), 0)
	FROM notes
	WHERE user_id = $1 AND NOT is_deleted`, clerkID).Scan(
		&st.Total,
		&st.Pinned,
		&st.Archived,
		&st.Words,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get note stats: %w", err)
	}
	return st, nil
}
