package domain

import (
	"context"
	"errors"
)

var (
	// ErrNoReleases is returned when no release has been published yet.
	ErrNoReleases = errors.New("no_releases")

	// ErrVersionExists is returned when publishing a version that already exists.
	ErrVersionExists = errors.New("version_exists")

	// ErrInvalidVersion is returned when the version string is empty.
	ErrInvalidVersion = errors.New("invalid_version")
)

// PublishRequest describes a new build to publish.
type PublishRequest struct {
	Version             string
	ReleaseNotes        string
	DownloadURLMac      string
	DownloadURLMacArm   string
	DownloadURLWindows  string
	DownloadURLLinux    string
	MinSupportedVersion string
}

// LatestRelease is the update-check response for a given platform.
type LatestRelease struct {
	Version             string `json:"version"`
	ReleaseNotes        string `json:"release_notes,omitempty"`
	DownloadURL         string `json:"download_url,omitempty"`
	MinSupportedVersion string `json:"min_supported_version,omitempty"`
}

// Service publishes releases and answers update checks.
type Service interface {
	Publish(ctx context.Context, req PublishRequest) (*Release, error)
	Latest(ctx context.Context, platform string) (*LatestRelease, error)
}
