package types

import (
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

type GrantRequest struct {
	UserID    string `json:"user_id"`
	CourseID  string `json:"course_id"`
	GrantedBy string `json:"granted_by"`
}

// NewGrantRequestFromContext accepts the pair either as a JSON body (POST,
// DELETE) or as query params (GET), whichever the caller used.
func NewGrantRequestFromContext(ctx echo.Context) (*GrantRequest, error) {
	var body GrantRequest
	if err := ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if strings.TrimSpace(body.UserID) == "" {
		body.UserID = ctx.QueryParam("user_id")
	}
	if strings.TrimSpace(body.CourseID) == "" {
		body.CourseID = ctx.QueryParam("course_id")
	}

	body.UserID = strings.TrimSpace(body.UserID)
	body.CourseID = strings.TrimSpace(body.CourseID)
	body.GrantedBy = strings.TrimSpace(body.GrantedBy)

	return &body, nil
}

func (r *GrantRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	if r.CourseID == "" {
		return errors.New("course_id is required")
	}
	return nil
}
