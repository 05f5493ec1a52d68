package cameraService

import (
	cameraRepository "GateROI/internal/api/camera/repository"
	"GateROI/internal/editor"
	"GateROI/internal/entity"
	"GateROI/pkg/s3"
	"GateROI/pkg/snapshot"
	"GateROI/pkg/utils"
	"mime/multipart"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/sync/singleflight"
)

type ICameraService interface {
	ListCameras(ctx context.Context) ([]entity.Camera, error)
	GetCamera(ctx context.Context, id int64) (entity.Camera, error)
	GateExists(ctx context.Context, gateID int64) (bool, error)
	GetSnapshot(ctx context.Context, id int64, fresh bool) (editor.Snapshot, error)
	UploadReferenceFrame(ctx context.Context, id int64, file *multipart.FileHeader) (editor.Snapshot, error)
}

type Option func(*cameraService)

// WithSamplePath sets the still served when a camera has no other source.
func WithSamplePath(path string) Option {
	return func(s *cameraService) {
		s.samplePath = path
	}
}

// WithCaptureTimeout bounds one shared grab across all of its sources.
func WithCaptureTimeout(d time.Duration) Option {
	return func(s *cameraService) {
		s.captureTimeout = d
	}
}

func WithSnapshotTTL(ttl time.Duration) Option {
	return func(s *cameraService) {
		s.snapshots = cache.New(ttl, 2*ttl)
	}
}

type cameraService struct {
	log              *logrus.Logger
	cameraRepository cameraRepository.Repository
	s3               s3.ItfS3
	grabber          snapshot.IGrabber
	utils            utils.IUtils
	snapshots        *cache.Cache
	inflight         singleflight.Group
	samplePath       string
	captureTimeout   time.Duration
	now              func() time.Time
}

// NewCameraService reads SAMPLE_SNAPSHOT_PATH, SNAPSHOT_CACHE_TTL and
// SNAPSHOT_CAPTURE_TIMEOUT; options override them. s3Client may be nil when no object store is configured.
func NewCameraService(
	log *logrus.Logger,
	cr cameraRepository.Repository,
	s3Client s3.ItfS3,
	grabber snapshot.IGrabber,
	utils utils.IUtils,
	opts ...Option,
) ICameraService {
	ttl := 5 * time.Second
	if d, err := time.ParseDuration(os.Getenv("SNAPSHOT_CACHE_TTL")); err == nil && d > 0 {
		ttl = d
	}
	captureTimeout := 15 * time.Second
	if d, err := time.ParseDuration(os.Getenv("SNAPSHOT_CAPTURE_TIMEOUT")); err == nil && d > 0 {
		captureTimeout = d
	}

	s := &cameraService{
		log:              log,
		cameraRepository: cr,
		s3:               s3Client,
		grabber:          grabber,
		utils:            utils,
		snapshots:        cache.New(ttl, 2*ttl),
		samplePath:       os.Getenv("SAMPLE_SNAPSHOT_PATH"),
		captureTimeout:   captureTimeout,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
