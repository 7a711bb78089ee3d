package models

import (
	"time"

	"gorm.io/gorm"
)

// Event kinds stored in SessionEvent.Kind
const (
	KindLaunched    = "launched"
	KindWindowFound = "window_found"
	KindAttached    = "attached"
	KindTerminated  = "terminated"
	KindFailed      = "failed"
)

// SessionEvent is one step of an application's lifecycle as driven by appctl
type SessionEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Timestamp     time.Time      `gorm:"not null;index" json:"timestamp"`
	SessionID     string         `gorm:"not null;index;size:36" json:"session_id"`
	Kind          string         `gorm:"not null;index" json:"kind"`
	AppName       string         `gorm:"not null;index" json:"app_name"`
	ExePath       string         `gorm:"not null" json:"exe_path"`
	Version       string         `json:"version,omitempty"`
	PID           int            `gorm:"not null;default:0" json:"pid"`
	WindowID      uint64         `gorm:"not null;default:0" json:"window_id"`
	WindowTitle   string         `json:"window_title,omitempty"`
	ElapsedMs     int64          `gorm:"not null;default:0" json:"elapsed_ms"` // Time the step took
	DisplayServer string         `json:"display_server,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

type AppSummary struct {
	AppName      string  `json:"app_name"`
	Launches     int     `json:"launches"`
	Attaches     int     `json:"attaches"`
	Terminations int     `json:"terminations"`
	Failures     int     `json:"failures"`
	AvgLaunchMs  float64 `json:"avg_launch_ms"`
	AvgWindowMs  float64 `json:"avg_window_ms"`
	EventCount   int     `json:"event_count"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period        ReportPeriod `json:"period"`
	Apps          []AppSummary `json:"apps"`
	TotalLaunches int          `json:"total_launches"`
	TotalFailures int          `json:"total_failures"`
	SuccessRate   float64      `json:"success_rate"` // Percentage of launches that did not fail
	GeneratedAt   time.Time    `json:"generated_at"`
}
