package roiService

import (
	cameraService "GateROI/internal/api/camera/service"
	"GateROI/internal/api/roi"
	roiRepository "GateROI/internal/api/roi/repository"
	"GateROI/internal/editor"
	"GateROI/internal/entity"
	"GateROI/pkg/redis"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IROIService interface {
	GetCameraROI(ctx context.Context, cameraID int64) (entity.CameraROI, error)
	SaveCameraROI(ctx context.Context, req editor.SaveRequest) (entity.CameraROI, error)
	GetGateROI(ctx context.Context, gateID, cameraID int64) (entity.GateROI, error)
	UpsertGateROI(ctx context.Context, req roi.CreateGateROIRequest) (entity.GateROI, error)
}

type roiClient = roiRepository.Client

type roiService struct {
	log           *logrus.Logger
	roiRepository roiRepository.Repository
	cameraService cameraService.ICameraService
	cache         redis.IRedis
	cacheTTL      time.Duration
}

// NewROIService reads ROI_CACHE_TTL. cache may be nil, in which case every
// read goes to the database.
func NewROIService(
	log *logrus.Logger,
	rr roiRepository.Repository,
	cs cameraService.ICameraService,
	cache redis.IRedis,
) IROIService {
	ttl := 10 * time.Minute
	if d, err := time.ParseDuration(os.Getenv("ROI_CACHE_TTL")); err == nil && d > 0 {
		ttl = d
	}

	return &roiService{
		log:           log,
		roiRepository: rr,
		cameraService: cs,
		cache:         cache,
		cacheTTL:      ttl,
	}
}
