package shortcode

import (
	"context"
	"errors"
	"math/rand/v2"

	"tinylink/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Charset contains every character codes are drawn from.
	Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// CodeLength is the length of generated codes.
	CodeLength = 6
	// MaxAttempts bounds collision retries before giving up.
	MaxAttempts = 5
)

// ErrExhausted means every candidate collided with an existing code. It
// signals keyspace pressure or a bug, and callers must report it as a
// server-side failure rather than a client error.
var ErrExhausted = errors.New("shortcode: exhausted generation attempts")

// Generator produces short codes that are free in storage at generation
// time. The existence check is advisory only; the primary key on links
// remains the authoritative uniqueness guarantee.
type Generator struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	exists func(ctx context.Context, code string) (bool, error)
}

// NewGenerator creates a generator backed by the shared connection pool.
func NewGenerator(db *gorm.DB, logger *zap.SugaredLogger) *Generator {
	g := &Generator{
		db:     db,
		logger: logger.Named("shortcode"),
	}
	g.exists = g.codeExists
	return g
}

// Generate returns a CodeLength-character alphanumeric code not currently
// present in storage, retrying up to MaxAttempts times on collision.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		candidate := randomCode(CodeLength)

		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		g.logger.Warnw("short code collision", "code", candidate, "attempt", attempt)
	}

	g.logger.Errorw("gave up generating a short code", "attempts", MaxAttempts)
	return "", ErrExhausted
}

func (g *Generator) codeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&model.Link{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// randomCode draws length independent uniform characters from Charset.
// Deliberately not cryptographic: collisions are caught by the storage
// check and, ultimately, by the primary key constraint.
func randomCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = Charset[rand.IntN(len(Charset))]
	}
	return string(b)
}
