package repository

import (
	"database/sql"
	"fmt"

	"cmfs/models"
)

// CommentRepository handles database operations for complaint comments
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateComment inserts a comment and sets its id.
func (r *CommentRepository) CreateComment(c *models.Comment) error {
	query := `INSERT INTO comments (complaint_id, author_id, message) VALUES (?, ?, ?)`
	result, err := r.db.Exec(query, c.ComplaintID, c.AuthorID, c.Message)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get comment ID: %w", err)
	}
	c.CommentID = id
	return nil
}

// ListCommentsByComplaint retrieves a complaint's comments, oldest first.
func (r *CommentRepository) ListCommentsByComplaint(complaintID string) ([]models.Comment, error) {
	query := `
		SELECT comment_id, complaint_id, author_id, message, created_at, updated_at
		FROM comments WHERE complaint_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.CommentID, &c.ComplaintID, &c.AuthorID, &c.Message,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
