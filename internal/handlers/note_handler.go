package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/repository"
)

// NoteHandler handles note-related requests.
type NoteHandler struct {
	notes repository.NoteRepository
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes repository.NoteRepository) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// CreateNoteRequest represents the request payload for creating a note.
type CreateNoteRequest struct {
	Title   string   `json:"title" binding:"required,min=1,max=200"`
	Content string   `json:"content" binding:"max=10000"`
	Color   string   `json:"color" binding:"omitempty,hex_color"`
	Tags    []string `json:"tags"`
}

// UpdateNoteRequest represents the request payload for updating a note.
type UpdateNoteRequest struct {
	Title   *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Content *string   `json:"content" binding:"omitempty,max=10000"`
	Color   *string   `json:"color" binding:"omitempty,hex_color"`
	Tags    *[]string `json:"tags"`
}

// SetFlagRequest toggles a boolean note flag.
type SetFlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// CreateNote handles the creation of a new note.
// @Summary     Create a note
// @Description Create a new note
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateNoteRequest true "Note details"
// @Success     201 {object} models.Note "Note created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	note, err := h.notes.Create(c.Request.Context(), userID, req.Title, req.Content, req.Color, models.StringList(req.Tags))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// GetNotes lists the user's unarchived notes, pinned first.
// @Summary     Get notes
// @Description Get unarchived notes, optionally filtered by a search query
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       q query string false "Search query over title and content"
// @Success     200 {array} models.Note "Notes"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes [get]
func (h *NoteHandler) GetNotes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var notes []models.Note
	if q := c.Query("q"); q != "" {
		notes, err = h.notes.Search(c.Request.Context(), userID, q)
	} else {
		notes, err = h.notes.GetByUser(c.Request.Context(), userID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// GetNote retrieves a specific note.
// @Summary     Get note by ID
// @Description Get a specific note by ID
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Note ID"
// @Success     200 {object} models.Note "Note details"
// @Failure     400 {object} ErrorResponse "Invalid note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id} [get]
func (h *NoteHandler) GetNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	note, err := h.notes.GetByID(c.Request.Context(), userID, noteID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// UpdateNote updates an existing note.
// @Summary     Update note
// @Description Update a note's mutable fields
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Note ID"
// @Param       request body UpdateNoteRequest true "Updated note details"
// @Success     200 {object} models.Note "Updated note"
// @Failure     400 {object} ErrorResponse "Invalid input or note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id} [put]
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	params := repository.UpdateNoteParams{
		Title:   req.Title,
		Content: req.Content,
		Color:   req.Color,
	}
	if req.Tags != nil {
		tags := models.StringList(*req.Tags)
		params.Tags = &tags
	}

	note, err := h.notes.Update(c.Request.Context(), userID, noteID, params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// PinNote pins or unpins a note.
// @Summary     Pin note
// @Description Pin or unpin a note
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Note ID"
// @Param       request body SetFlagRequest true "Pinned state"
// @Success     200 {object} MessageResponse "Note updated"
// @Failure     400 {object} ErrorResponse "Invalid input or note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id}/pin [post]
func (h *NoteHandler) PinNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.notes.SetPinned(c.Request.Context(), userID, noteID, *req.Value); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note updated successfully"})
}

// ArchiveNote archives or restores a note.
// @Summary     Archive note
// @Description Archive or restore a note
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Note ID"
// @Param       request body SetFlagRequest true "Archived state"
// @Success     200 {object} MessageResponse "Note updated"
// @Failure     400 {object} ErrorResponse "Invalid input or note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id}/archive [post]
func (h *NoteHandler) ArchiveNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.notes.SetArchived(c.Request.Context(), userID, noteID, *req.Value); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note updated successfully"})
}

// DeleteNote removes a note.
// @Summary     Delete note
// @Description Delete a note by ID
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Note ID"
// @Success     200 {object} MessageResponse "Note deleted"
// @Failure     400 {object} ErrorResponse "Invalid note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notes.Delete(c.Request.Context(), userID, noteID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
