package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/keygate/internal/clock"
	"github.com/smallbiznis/keygate/internal/release/domain"
)

// Params describes the dependencies of the release service.
type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

// New constructs the release service.
func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("release.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) Publish(ctx context.Context, req domain.PublishRequest) (*domain.Release, error) {
	version := strings.TrimSpace(req.Version)
	if version == "" {
		return nil, domain.ErrInvalidVersion
	}

	existing, err := s.repo.FindByVersion(ctx, s.db, version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrVersionExists
	}

	release := &domain.Release{
		ID:                  s.genID.Generate(),
		Version:             version,
		ReleaseNotes:        req.ReleaseNotes,
		DownloadURLMac:      req.DownloadURLMac,
		DownloadURLMacArm:   req.DownloadURLMacArm,
		DownloadURLWindows:  req.DownloadURLWindows,
		DownloadURLLinux:    req.DownloadURLLinux,
		IsLatest:            true,
		MinSupportedVersion: req.MinSupportedVersion,
		ReleasedAt:          s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearLatest(ctx, tx); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, release)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("release published", zap.String("version", release.Version))
	return release, nil
}

func (s *service) Latest(ctx context.Context, platform string) (*domain.LatestRelease, error) {
	release, err := s.repo.FindLatest(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, domain.ErrNoReleases
	}

	return &domain.LatestRelease{
		Version:             release.Version,
		ReleaseNotes:        release.ReleaseNotes,
		DownloadURL:         downloadURLFor(release, platform),
		MinSupportedVersion: release.MinSupportedVersion,
	}, nil
}

func downloadURLFor(release *domain.Release, platform string) string {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "darwin", "mac", "macos":
		return release.DownloadURLMac
	case "darwin-arm64", "mac-arm", "macos-arm64":
		if release.DownloadURLMacArm != "" {
			return release.DownloadURLMacArm
		}
		return release.DownloadURLMac
	case "windows", "win32", "win":
		return release.DownloadURLWindows
	case "linux":
		return release.DownloadURLLinux
	default:
		return ""
	}
}
