package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

type GrantRepository struct {
	db DBTX
}

func NewGrantRepository(db DBTX) *GrantRepository {
	return &GrantRepository{db: db}
}

// Upsert gives a user access to a course. Safe to call any number of times
// for the same (user, course) pair: the unique key absorbs duplicates,
// including rows created earlier through the admin surface. Returns whether a
// new row was created.
func (r *GrantRepository) Upsert(ctx context.Context, userID, courseID, grantedBy string, now time.Time) (bool, error) {
	query := `
		INSERT INTO course_access_grants (user_id, course_id, granted_by, created_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE user_id = user_id
	`

	result, err := r.db.ExecContext(ctx, query, userID, courseID, grantedBy, now)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	// MySQL reports 1 affected row for a fresh insert and 0 for the no-op
	// duplicate branch above.
	return affected == 1, nil
}

func (r *GrantRepository) Find(ctx context.Context, userID, courseID string) (*entity.CourseAccessGrant, error) {
	query := `
		SELECT id, user_id, course_id, granted_by, created_at
		FROM course_access_grants
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	grant := &entity.CourseAccessGrant{}
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&grant.ID,
		&grant.UserID,
		&grant.CourseID,
		&grant.GrantedBy,
		&grant.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// Delete removes a grant. Used only by the manual admin surface; webhook
// processing never revokes access.
func (r *GrantRepository) Delete(ctx context.Context, userID, courseID string) (bool, error) {
	query := `DELETE FROM course_access_grants WHERE user_id = ? AND course_id = ?`

	result, err := r.db.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
