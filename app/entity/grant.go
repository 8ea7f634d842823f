package entity

import "time"

// CourseAccessGrant records that a user may access a course. A (UserID,
// CourseID) pair either has a row or it does not; there is no quantity or
// expiry. Rows may also be created or removed by the admin surface, so the
// webhook processor never assumes it is the only writer.
type CourseAccessGrant struct {
	ID uint64

	UserID   string
	CourseID string

	GrantedBy string

	CreatedAt time.Time
}
