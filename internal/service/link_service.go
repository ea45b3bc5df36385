package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"tinylink/internal/model"
	"tinylink/internal/shortcode"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// LinkService implements link CRUD and the click-and-redirect operation on
// top of the shared connection pool. It holds no state between requests.
type LinkService struct {
	db        *gorm.DB
	generator *shortcode.Generator
	logger    *zap.SugaredLogger
}

// NewLinkService creates a service instance.
func NewLinkService(db *gorm.DB, generator *shortcode.Generator, logger *zap.SugaredLogger) *LinkService {
	return &LinkService{
		db:        db,
		generator: generator,
		logger:    logger.Named("links"),
	}
}

// Create validates target and code, derives a code when none is supplied,
// and inserts the new link. The explicit-code existence check is a fast
// path only: two concurrent creations can both pass it, so a duplicate-key
// violation on insert is translated to ErrCodeConflict as well.
func (s *LinkService) Create(ctx context.Context, target, code string) (*model.Link, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}

	if code != "" {
		if !codePattern.MatchString(code) {
			return nil, ErrInvalidCode
		}
		taken, err := s.codeExists(ctx, code)
		if err != nil {
			return nil, s.storageError("create precheck", err)
		}
		if taken {
			return nil, ErrCodeConflict
		}
	} else {
		generated, err := s.generator.Generate(ctx)
		if err != nil {
			if errors.Is(err, shortcode.ErrExhausted) {
				return nil, err
			}
			return nil, s.storageError("generate code", err)
		}
		code = generated
	}

	link := model.Link{Code: code, Target: target}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCodeConflict
		}
		return nil, s.storageError("insert link", err)
	}

	return &link, nil
}

// List returns every link, newest first. No pagination.
func (s *LinkService) List(ctx context.Context) ([]model.Link, error) {
	var links []model.Link
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, s.storageError("list links", err)
	}
	return links, nil
}

// Get returns the link for code, or ErrNotFound.
func (s *LinkService) Get(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.storageError("get link", err)
	}
	return &link, nil
}

// Delete hard-deletes the link for code. The freed code may be reused by a
// later creation.
func (s *LinkService) Delete(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Where("code = ?", code).Delete(&model.Link{})
	if result.Error != nil {
		return s.storageError("delete link", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Resolve records one click for code and returns the target to redirect
// to. The initial lookup only produces a fast not-found response; the
// atomic update is authoritative, so a concurrent delete landing between
// the two still yields ErrNotFound rather than a stale redirect.
func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	taken, err := s.codeExists(ctx, code)
	if err != nil {
		return "", s.storageError("resolve precheck", err)
	}
	if !taken {
		return "", ErrNotFound
	}

	// Single atomic increment-and-read. A separate read/compute/write
	// sequence would lose counts under concurrent clicks on the same code.
	var link model.Link
	result := s.db.WithContext(ctx).
		Model(&link).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "target"}}}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"total_clicks": gorm.Expr("total_clicks + 1"),
			"last_clicked": time.Now().UTC(),
		})
	if result.Error != nil {
		return "", s.storageError("record click", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", ErrNotFound
	}

	return link.Target, nil
}

// Stats aggregates totals across all links.
type Stats struct {
	TotalLinks  int64 `json:"total_links"`
	TotalClicks int64 `json:"total_clicks"`
}

// GetStats computes the aggregate counters shown on the stats page.
func (s *LinkService) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.db.WithContext(ctx).Model(&model.Link{}).Count(&stats.TotalLinks).Error; err != nil {
		return nil, s.storageError("count links", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Link{}).
		Select("COALESCE(SUM(total_clicks), 0)").Scan(&stats.TotalClicks).Error; err != nil {
		return nil, s.storageError("sum clicks", err)
	}
	return &stats, nil
}

func (s *LinkService) codeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Link{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// storageError logs the unexpected failure with full context and returns a
// wrapped error; handlers render it as an opaque internal failure.
func (s *LinkService) storageError(op string, err error) error {
	s.logger.Errorw("storage failure", "op", op, "err", err)
	return fmt.Errorf("%s: %w", op, err)
}

// validateTarget requires an absolute http(s) URL with a host.
func validateTarget(target string) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return ErrInvalidTarget
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrInvalidTarget
	}
	if parsed.Host == "" {
		return ErrInvalidTarget
	}
	return nil
}
