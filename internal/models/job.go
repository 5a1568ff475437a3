package models

import (
	"time"

	"github.com/google/uuid"
)

// JobPhase tags which stage of the pipeline a run was executing. Free-form
// for operator diagnosis; the tracker stores and filters on it without
// interpreting it.
type JobPhase string

const (
	PhaseImport      JobPhase = "IMPORT"
	PhaseConsolidate JobPhase = "CONSOLIDATE"
	PhaseSyncShopify JobPhase = "SYNC_SHOPIFY"
)

// JobStatus represents the lifecycle state of a run
type JobStatus string

const (
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusWarning JobStatus = "WARNING"
	JobStatusError   JobStatus = "ERROR"
)

// IsTerminal reports whether the status is final
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSuccess || s == JobStatusWarning || s == JobStatusError
}

// JobRun records one batch operation end to end. Created as RUNNING,
// terminated exactly once by its owner, or reclaimed by the stuck-job sweep
// when the owning process died without closing it.
type JobRun struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_job_runs_tenant;index:idx_job_runs_tenant_status"`

	Phase  JobPhase  `json:"phase" gorm:"type:varchar(50);not null;index"`
	Status JobStatus `json:"status" gorm:"type:varchar(20);not null;default:'RUNNING';index:idx_job_runs_tenant_status"`

	StartedAt       time.Time  `json:"startedAt" gorm:"not null;index"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
	DurationSeconds int        `json:"durationSeconds"`

	// Detail carries the structured diagnostic payload: counters, warnings,
	// rejection samples, reclaim markers
	Detail JSON `json:"detail,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for JobRun
func (JobRun) TableName() string {
	return "job_runs"
}

type JobRunResponse struct {
	Success bool    `json:"success"`
	Data    *JobRun `json:"data"`
	Message *string `json:"message,omitempty"`
}

type JobRunListResponse struct {
	Success    bool            `json:"success"`
	Data       []JobRun        `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}
