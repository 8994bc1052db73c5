package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/logging"
	"github.com/dmitrijs2005/guestgallery/internal/server/config"
	"github.com/dmitrijs2005/guestgallery/internal/server/metrics"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/guestgallery/internal/server/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Gallery page size bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// UploadMessage is shown to a guest after a successful submission.
const UploadMessage = "Photo uploaded successfully! It will appear in the gallery after approval."

// GuestResolver maps a session to a guest.
type GuestResolver interface {
	Resolve(ctx context.Context, session *models.Session) (*models.Guest, error)
}

// PhotoService runs the upload pipeline and the moderation-gated gallery
// queries.
type PhotoService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	guests         GuestResolver
	store          storage.ObjectStore
	log            logging.Logger
	observer       metrics.Observer
	tracer         trace.Tracer
	storageTimeout time.Duration
	dbTimeout      time.Duration
	now            func() time.Time
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(db *sql.DB, m repomanager.RepositoryManager, guests GuestResolver, store storage.ObjectStore,
	cfg *config.Config, l logging.Logger, observer metrics.Observer) *PhotoService {
	if observer == nil {
		observer = metrics.Nop()
	}
	return &PhotoService{
		db:             db,
		repomanager:    m,
		guests:         guests,
		store:          store,
		log:            l.With("module", "photo_service"),
		observer:       observer,
		tracer:         otel.Tracer("github.com/dmitrijs2005/guestgallery/internal/server/services"),
		storageTimeout: cfg.StorageTimeout,
		dbTimeout:      cfg.DatabaseTimeout,
		now:            time.Now,
	}
}

// Upload validates a submission, resolves the submitting guest, writes the
// blob and records a pending photo. The blob and the record are kept
// together: when the record cannot be written the blob is deleted again.
//
// Errors match (errors.Is) one of common.ErrValidation,
// common.ErrorUnauthorized, common.ErrorNotFound, common.ErrStorageWrite or
// common.ErrDatabase.
func (s *PhotoService) Upload(ctx context.Context, session *models.Session, sub *Submission) (*models.GuestPhoto, error) {
	ctx, span := s.tracer.Start(ctx, "gallery.upload")
	defer span.End()

	text, err := ValidateSubmission(sub)
	if err != nil {
		s.observer.RecordUpload(metrics.OutcomeRejected, 0)
		span.SetStatus(codes.Error, "rejected")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("upload.media_type", sub.MediaType),
		attribute.Int64("upload.size", sub.Size),
	)

	guest, err := s.resolve(ctx, session)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("guest.id", guest.ID))

	key := storage.NewKey(guest.ID, sub.Filename, sub.MediaType, s.now())
	url, err := s.put(ctx, key, sub)
	if err != nil {
		err = fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
		s.fail(span, err)
		return nil, err
	}

	photo, err := s.record(ctx, &models.GuestPhoto{
		GuestID:    guest.ID,
		PhotoURL:   url,
		StorageKey: key,
		Caption:    text.Caption,
		Location:   text.Location,
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", common.ErrDatabase, err)
		if delErr := s.compensate(ctx, key); delErr != nil {
			err = errors.Join(err, delErr)
		}
		s.fail(span, err)
		return nil, err
	}

	s.observer.RecordUpload(metrics.OutcomeAccepted, sub.Size)
	s.log.Info(ctx, "photo uploaded", "photo_id", photo.ID, "guest_id", guest.ID, "key", key, "size", sub.Size)
	return photo, nil
}

func (s *PhotoService) resolve(ctx context.Context, session *models.Session) (*models.Guest, error) {
	start := time.Now()
	g, err := s.guests.Resolve(ctx, session)
	var stageErr error
	if errors.Is(err, common.ErrDatabase) {
		stageErr = err
	}
	s.observer.RecordStage(metrics.StageResolve, time.Since(start), stageErr)
	return g, err
}

func (s *PhotoService) put(ctx context.Context, key string, sub *Submission) (string, error) {
	ctx, span := s.tracer.Start(ctx, "gallery.storage.put", trace.WithAttributes(attribute.String("storage.key", key)))
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.storageTimeout)
	defer cancel()

	start := time.Now()
	url, err := s.store.Put(ctx, key, sub.MediaType, sub.Size, sub.Body)
	s.observer.RecordStage(metrics.StageStorage, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put failed")
	}
	return url, err
}

func (s *PhotoService) record(ctx context.Context, photo *models.GuestPhoto) (*models.GuestPhoto, error) {
	ctx, span := s.tracer.Start(ctx, "gallery.photos.create")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.dbTimeout)
	defer cancel()

	start := time.Now()
	p, err := s.repomanager.Photos(s.db).Create(ctx, photo)
	s.observer.RecordStage(metrics.StageRecord, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return p, err
}

// compensate deletes a blob whose record could not be written. It runs
// detached from the request so a disconnecting client cannot interrupt it.
func (s *PhotoService) compensate(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(context.WithoutCancel(ctx), s.storageTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.Delete(ctx, key)
	s.observer.RecordStage(metrics.StageCleanup, time.Since(start), err)
	if err != nil {
		s.observer.RecordCompensationFailure()
		s.log.Error(ctx, "orphaned blob: compensating delete failed", "key", key, "error", err)
		return fmt.Errorf("compensating delete of %s: %w", key, err)
	}
	s.log.Warn(ctx, "blob removed after failed insert", "key", key)
	return nil
}

func (s *PhotoService) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	switch {
	case errors.Is(err, common.ErrStorageWrite):
		s.observer.RecordUpload(metrics.OutcomeStorageError, 0)
	case errors.Is(err, common.ErrDatabase):
		s.observer.RecordUpload(metrics.OutcomeDBError, 0)
	case errors.Is(err, common.ErrorUnauthorized):
		s.observer.RecordUpload(metrics.OutcomeUnauthorized, 0)
	case errors.Is(err, common.ErrorNotFound):
		s.observer.RecordUpload(metrics.OutcomeUnknownGuest, 0)
	default:
		s.observer.RecordUpload(metrics.OutcomeDBError, 0)
	}
}

// NormalizePage clamps gallery paging parameters to the supported range.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListApproved returns one page of the public gallery, newest first.
// Unapproved photos are never included.
func (s *PhotoService) ListApproved(ctx context.Context, limit, offset int) ([]*models.GuestPhoto, error) {
	limit, offset = NormalizePage(limit, offset)

	ctx, cancel := withTimeout(ctx, s.dbTimeout)
	defer cancel()

	photos, err := s.repomanager.Photos(s.db).ListApproved(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list approved: %w", common.ErrDatabase, err)
	}
	return photos, nil
}

// GetApproved returns an approved photo by id; unknown, malformed and
// unapproved ids all yield common.ErrorNotFound.
func (s *PhotoService) GetApproved(ctx context.Context, id string) (*models.GuestPhoto, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	ctx, cancel := withTimeout(ctx, s.dbTimeout)
	defer cancel()

	p, err := s.repomanager.Photos(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: get photo: %w", common.ErrDatabase, err)
	}
	if !p.IsApproved {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

// ListPending returns the moderation queue.
func (s *PhotoService) ListPending(ctx context.Context) ([]*models.GuestPhoto, error) {
	return s.repomanager.Photos(s.db).ListPending(ctx)
}

// Approve publishes a photo in the gallery.
func (s *PhotoService) Approve(ctx context.Context, id string) error {
	return s.setApproved(ctx, id, true)
}

// Reject moves a photo back to the moderation queue.
func (s *PhotoService) Reject(ctx context.Context, id string) error {
	return s.setApproved(ctx, id, false)
}

func (s *PhotoService) setApproved(ctx context.Context, id string, approved bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Photos(s.db).SetApproved(ctx, id, approved); err != nil {
		return err
	}
	s.log.Info(ctx, "moderation updated", "photo_id", id, "approved", approved)
	return nil
}
