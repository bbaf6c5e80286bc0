package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/dbx"
	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/blobstore"
	"github.com/dmitrijs2005/stargram/internal/server/config"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/repomanager"
)

// newFeedID is a seam for tests.
var newFeedID = func() string {
	return uuid.New().String()
}

// FeedService runs the upload pipeline and serves feed listings and images.
type FeedService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	blobs            blobstore.Store
	maxImageBytes    int64
	maxCaptionBytes  int64
	maxImagesPerFeed int
	logger           logging.Logger
}

// NewFeedService builds a FeedService. blobs may be nil, in which case image
// bytes are stored in the images table.
func NewFeedService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, cfg *config.Config, l logging.Logger) *FeedService {
	return &FeedService{
		db:               db,
		repomanager:      m,
		blobs:            blobs,
		maxImageBytes:    cfg.MaxImageBytes,
		maxCaptionBytes:  cfg.MaxCaptionBytes,
		maxImagesPerFeed: cfg.MaxImagesPerFeed,
		logger:           l.With("module", "feed_service"),
	}
}

// pendingImage is an image part that has been read and sniffed but not yet
// stored.
type pendingImage struct {
	data        []byte
	contentType string
}

// upload carries the state of one Create call across the parts.
type upload struct {
	parts      PartReader
	caption    string
	hasCaption bool
	position   int
}

// next reads parts until the next acceptable image, applying caption parts
// on the way. It returns nil at the end of the body.
func (s *FeedService) next(u *upload) (*pendingImage, error) {
	for {
		part, err := u.parts.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, readError(err)
		}

		if part.FormName() == CaptionFieldName {
			text, err := readCaption(part, s.maxCaptionBytes)
			part.Close()
			if err != nil {
				return nil, err
			}
			u.caption, u.hasCaption = text, true
			continue
		}

		if u.position >= s.maxImagesPerFeed {
			part.Close()
			return nil, fmt.Errorf("%w: more than %d images", common.ErrorValidation, s.maxImagesPerFeed)
		}

		data, err := readBounded(part, s.maxImageBytes)
		part.Close()
		if err != nil {
			return nil, err
		}

		contentType, ok := sniffImage(data)
		if !ok {
			return nil, fmt.Errorf("%w: image %d", common.ErrorUnsupportedImage, u.position)
		}
		return &pendingImage{data: data, contentType: contentType}, nil
	}
}

// Create consumes parts and stores a feed authored by user.
//
// The "caption" part sets the caption (last one wins); every other part is
// an image stored at the next position. The feed needs at least one image
// and a non-empty caption. The transaction begins at the first accepted
// image, so no connection is held while a client sends captions or junk.
// All rows are written in that transaction and a rejected upload leaves
// nothing behind; objects already put into the blob store are deleted on a
// best-effort basis.
func (s *FeedService) Create(ctx context.Context, user *models.User, parts PartReader) (*models.Feed, error) {
	feedID := newFeedID()
	u := &upload{parts: parts}

	var (
		written []string
		feed    *models.Feed
	)

	first, err := s.next(u)
	if err == nil && first == nil {
		err = fmt.Errorf("%w: no images", common.ErrorValidation)
	}

	if err == nil {
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			images := s.repomanager.Images(tx)

			img := first
			for img != nil {
				image := &models.Image{FeedID: feedID, Position: u.position, ContentType: img.contentType}
				if s.blobs != nil {
					key := blobstore.ImageKey(feedID, u.position)
					if err := s.blobs.Put(ctx, key, img.contentType, img.data); err != nil {
						return internalError(err)
					}
					written = append(written, key)
					image.StorageKey = key
				} else {
					image.Data = img.data
				}

				if err := images.Create(ctx, image); err != nil {
					return internalError(err)
				}
				u.position++

				var err error
				if img, err = s.next(u); err != nil {
					return err
				}
			}

			if !u.hasCaption || u.caption == "" {
				return fmt.Errorf("%w: missing caption", common.ErrorValidation)
			}

			feed = &models.Feed{ID: feedID, UserID: user.ID, Caption: u.caption, ImageCount: u.position}
			if err := s.repomanager.Feeds(tx).Create(ctx, feed); err != nil {
				return internalError(err)
			}
			return nil
		})
	}

	if err != nil {
		s.discardBlobs(ctx, written)
		if !isTaxonomy(err) {
			err = internalError(err)
		}
		if errors.Is(err, common.ErrorInternal) {
			s.logger.Error(ctx, "feed upload failed", "feed_id", feedID, "error", err)
		} else {
			s.logger.Debug(ctx, "feed upload rejected", "feed_id", feedID, "error", err)
		}
		return nil, err
	}

	s.logger.Info(ctx, "feed created", "feed_id", feedID, "user_id", user.ID, "images", u.position)
	return feed, nil
}

// discardBlobs deletes objects written for a rejected upload. The request
// context may already be cancelled, so deletion runs detached from it.
func (s *FeedService) discardBlobs(ctx context.Context, keys []string) {
	if s.blobs == nil {
		return
	}
	cleanupCtx := context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.blobs.Delete(cleanupCtx, key); err != nil {
			s.logger.Warn(ctx, "orphaned image object", "key", key, "error", err)
		}
	}
}

// GetImage returns the image at position of feedID with its bytes loaded.
// Malformed ids and out-of-range positions are reported as not found.
func (s *FeedService) GetImage(ctx context.Context, feedID string, position int) (*models.Image, error) {
	if _, err := uuid.Parse(feedID); err != nil || position < 0 {
		return nil, common.ErrorNotFound
	}

	image, err := s.repomanager.Images(s.db).Get(ctx, feedID, position)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, internalError(err)
	}

	if image.StorageKey == "" {
		return image, nil
	}

	if s.blobs == nil {
		return nil, internalError(fmt.Errorf("image %s is in object storage but no blob store is configured", image.StorageKey))
	}
	data, err := s.blobs.Get(ctx, image.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, internalError(err)
	}
	image.Data = data

	return image, nil
}

// ListHome returns every feed, newest first.
func (s *FeedService) ListHome(ctx context.Context) ([]*models.FeedWithUser, error) {
	feeds, err := s.repomanager.Feeds(s.db).ListAll(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return feeds, nil
}

// ListByUser returns the feeds of userName, newest first.
func (s *FeedService) ListByUser(ctx context.Context, userName string) ([]*models.FeedWithUser, error) {
	feeds, err := s.repomanager.Feeds(s.db).ListByUserName(ctx, userName)
	if err != nil {
		return nil, internalError(err)
	}
	return feeds, nil
}
