package service

import (
	"context"
	"strings"
	"time"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// CheckAccess reports whether a user holds a grant for a course. Returns the
// grant row, or nil when the user has no access.
func (s *EnrollmentService) CheckAccess(ctx context.Context, userID, courseID string) (*entity.CourseAccessGrant, error) {
	userID = strings.TrimSpace(userID)
	courseID = strings.TrimSpace(courseID)
	if userID == "" || courseID == "" {
		return nil, ErrInvalidRequest
	}
	return s.grantRepo.Find(ctx, userID, courseID)
}

// GrantAccess is the manual admin grant. Same upsert semantics as the webhook
// path: repeated calls for the same pair succeed without effect. Returns
// whether a new grant row was created.
func (s *EnrollmentService) GrantAccess(ctx context.Context, userID, courseID, grantedBy string) (bool, error) {
	userID = strings.TrimSpace(userID)
	courseID = strings.TrimSpace(courseID)
	if userID == "" || courseID == "" {
		return false, ErrInvalidRequest
	}
	grantedBy = strings.TrimSpace(grantedBy)
	if grantedBy == "" {
		grantedBy = "admin"
	}
	return s.grantRepo.Upsert(ctx, userID, courseID, grantedBy, time.Now().UTC())
}

// RevokeAccess removes a grant. This is the only way access is ever revoked;
// refund or chargeback webhooks never do it implicitly.
func (s *EnrollmentService) RevokeAccess(ctx context.Context, userID, courseID string) error {
	userID = strings.TrimSpace(userID)
	courseID = strings.TrimSpace(courseID)
	if userID == "" || courseID == "" {
		return ErrInvalidRequest
	}

	deleted, err := s.grantRepo.Delete(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGrantNotFound
	}
	return nil
}
