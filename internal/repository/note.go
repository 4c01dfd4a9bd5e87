package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/watch"
)

// noteRepository implements NoteRepository.
type noteRepository struct {
	db     *gorm.DB
	broker *watch.Broker
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db *gorm.DB, broker *watch.Broker) NoteRepository {
	return &noteRepository{db: db, broker: broker}
}

// Create creates a new note.
func (r *noteRepository) Create(ctx context.Context, userID, title, content, color string, tags models.StringList) (*models.Note, error) {
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}

	note := &models.Note{
		UserID:  userID,
		Title:   title,
		Content: content,
		Color:   color,
		Tags:    tags,
	}
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableNotes)
	return note, nil
}

// GetByID retrieves a note by id for a specific user.
func (r *noteRepository) GetByID(ctx context.Context, userID, noteID string) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", noteID, userID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoteNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &note, nil
}

// GetByUser returns the user's unarchived notes, pinned first then newest.
func (r *noteRepository) GetByUser(ctx context.Context, userID string) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND archived = ?", userID, false).
		Order("pinned DESC, updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notes, nil
}

// Search returns unarchived notes whose title or content contains the query.
func (r *noteRepository) Search(ctx context.Context, userID, query string) ([]models.Note, error) {
	pattern := "%" + query + "%"
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND archived = ?", userID, false).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Order("pinned DESC, updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notes, nil
}

// Update updates a note's mutable fields.
func (r *noteRepository) Update(ctx context.Context, userID, noteID string, params UpdateNoteParams) (*models.Note, error) {
	note, err := r.GetByID(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if params.Title != nil {
		updates["title"] = *params.Title
	}
	if params.Content != nil {
		updates["content"] = *params.Content
	}
	if params.Color != nil {
		updates["color"] = *params.Color
	}
	if params.Tags != nil {
		updates["tags"] = *params.Tags
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(note).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableNotes)
	}

	return note, nil
}

// SetPinned pins or unpins a note.
func (r *noteRepository) SetPinned(ctx context.Context, userID, noteID string, pinned bool) error {
	return r.setFlag(ctx, userID, noteID, "pinned", pinned)
}

// SetArchived archives or restores a note.
func (r *noteRepository) SetArchived(ctx context.Context, userID, noteID string, archived bool) error {
	return r.setFlag(ctx, userID, noteID, "archived", archived)
}

func (r *noteRepository) setFlag(ctx context.Context, userID, noteID, column string, value bool) error {
	note, err := r.GetByID(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Model(note).Update(column, value).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableNotes)
	return nil
}

// Delete removes a note.
func (r *noteRepository) Delete(ctx context.Context, userID, noteID string) error {
	note, err := r.GetByID(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Delete(note).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableNotes)
	return nil
}

// Observe streams the user's unarchived notes.
func (r *noteRepository) Observe(ctx context.Context, userID string) <-chan []models.Note {
	return observe(ctx, r.broker, []string{tableNotes}, func(ctx context.Context) ([]models.Note, error) {
		return r.GetByUser(ctx, userID)
	})
}
