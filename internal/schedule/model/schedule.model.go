package model

import (
	"slices"
	"time"
)

// Platforms a post can be scheduled for.
var Platforms = []string{"Twitter", "Facebook", "Instagram", "LinkedIn"}

func ValidPlatform(p string) bool { return slices.Contains(Platforms, p) }

const StatusScheduled = "scheduled"

type ScheduledPost struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ProjectID    string    `json:"project_id"`
	ProjectTitle string    `json:"project_title"`
	Platform     string    `json:"platform"`
	ScheduleDate time.Time `json:"schedule_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreatePostRequest struct {
	ProjectID    string    `json:"project_id"`
	Platform     string    `json:"platform"`
	ScheduleDate time.Time `json:"schedule_date"`
}

// UpdatePostRequest is a partial update; nil fields are left unchanged.
type UpdatePostRequest struct {
	ProjectID    *string    `json:"project_id"`
	Platform     *string    `json:"platform"`
	ScheduleDate *time.Time `json:"schedule_date"`
}

func (r UpdatePostRequest) Empty() bool {
	return r.ProjectID == nil && r.Platform == nil && r.ScheduleDate == nil
}
