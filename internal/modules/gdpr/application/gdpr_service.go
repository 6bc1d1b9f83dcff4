package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/notifeed/notifeed/internal/modules/gdpr/domain"
	"github.com/notifeed/notifeed/internal/shared/logger"
)

const defaultDownloadURLTTL = 15 * time.Minute

// TaskEnqueuer hands the long-running work to the background worker.
type TaskEnqueuer interface {
	EnqueueExport(ctx context.Context, exportID, userID uuid.UUID) error
	EnqueueErasure(ctx context.Context, userID uuid.UUID) error
}

// ExportStatusResponse is what the status endpoint returns. DownloadURL
// is a presigned link, only present once the bundle exists.
type ExportStatusResponse struct {
	domain.ExportRequest
	DownloadURL string `json:"download_url,omitempty"`
}

type GdprService struct {
	repo     domain.ExportRepository
	store    domain.ObjectStore
	enqueuer TaskEnqueuer
	urlTTL   time.Duration
	log      *logrus.Entry
}

func NewGdprService(repo domain.ExportRepository, store domain.ObjectStore, enqueuer TaskEnqueuer, urlTTL time.Duration) *GdprService {
	if urlTTL <= 0 {
		urlTTL = defaultDownloadURLTTL
	}
	return &GdprService{
		repo:     repo,
		store:    store,
		enqueuer: enqueuer,
		urlTTL:   urlTTL,
		log:      logger.New("gdpr-service"),
	}
}

// RequestExport records a pending export and schedules the worker job.
func (s *GdprService) RequestExport(ctx context.Context, userID uuid.UUID) (*domain.ExportRequest, error) {
	export := &domain.ExportRequest{
		UserID: userID,
		Status: domain.ExportStatusPending,
	}
	if err := s.repo.Create(ctx, export); err != nil {
		return nil, err
	}
	if err := s.enqueuer.EnqueueExport(ctx, export.ID, userID); err != nil {
		if failErr := s.repo.MarkFailed(ctx, export.ID); failErr != nil {
			s.log.WithError(failErr).WithField("export_id", export.ID).Warn("Failed to mark export failed after enqueue error")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"export_id": export.ID, "user_id": userID}).Info("Export requested")
	return export, nil
}

// GetExport returns the export status. Only the requesting user may see
// their own exports.
func (s *GdprService) GetExport(ctx context.Context, id, userID uuid.UUID) (*ExportStatusResponse, error) {
	export, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if export.UserID != userID {
		return nil, domain.ErrExportNotFound
	}

	resp := &ExportStatusResponse{ExportRequest: *export}
	if export.Status == domain.ExportStatusCompleted && export.ObjectKey != nil {
		url, err := s.store.PresignGet(ctx, *export.ObjectKey, s.urlTTL)
		if err != nil {
			return nil, err
		}
		resp.DownloadURL = url
	}
	return resp, nil
}

// RequestErasure schedules account anonymization and notification purge.
func (s *GdprService) RequestErasure(ctx context.Context, userID uuid.UUID) error {
	if err := s.enqueuer.EnqueueErasure(ctx, userID); err != nil {
		return err
	}
	s.log.WithField("user_id", userID).Info("Erasure requested")
	return nil
}
