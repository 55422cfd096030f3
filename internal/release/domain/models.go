// Package domain contains persistence models for app releases.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Release is a published desktop build used for update checks.
type Release struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	Version             string       `gorm:"type:text;not null;uniqueIndex:ux_releases_version" json:"version"`
	ReleaseNotes        string       `gorm:"column:release_notes;type:text" json:"release_notes,omitempty"`
	DownloadURLMac      string       `gorm:"column:download_url_mac;type:text" json:"download_url_mac,omitempty"`
	DownloadURLMacArm   string       `gorm:"column:download_url_mac_arm;type:text" json:"download_url_mac_arm,omitempty"`
	DownloadURLWindows  string       `gorm:"column:download_url_windows;type:text" json:"download_url_windows,omitempty"`
	DownloadURLLinux    string       `gorm:"column:download_url_linux;type:text" json:"download_url_linux,omitempty"`
	IsLatest            bool         `gorm:"column:is_latest;not null;default:false" json:"is_latest"`
	MinSupportedVersion string       `gorm:"column:min_supported_version;type:text" json:"min_supported_version,omitempty"`
	ReleasedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"released_at"`
}

// TableName sets the database table name.
func (Release) TableName() string { return "releases" }
