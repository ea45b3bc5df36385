package shortcode

import (
	"context"
	"fmt"
	"testing"

	"tinylink/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Link{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func TestGenerateFormat(t *testing.T) {
	g := NewGenerator(setupDB(t), zap.NewNop().Sugar())

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Za-z0-9]{6}$`, code)
		seen[code] = true
	}
	// 50 draws from a 62^6 keyspace should never repeat
	assert.Len(t, seen, 50)
}

func TestGenerateSkipsTakenCodes(t *testing.T) {
	g := NewGenerator(setupDB(t), zap.NewNop().Sugar())

	var checked []string
	g.exists = func(ctx context.Context, code string) (bool, error) {
		checked = append(checked, code)
		return len(checked) < 3, nil // first two candidates collide
	}

	code, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, checked, 3)
	assert.Equal(t, checked[2], code)
}

func TestGenerateExhausted(t *testing.T) {
	g := NewGenerator(setupDB(t), zap.NewNop().Sugar())

	attempts := 0
	g.exists = func(ctx context.Context, code string) (bool, error) {
		attempts++
		return true, nil
	}

	_, err := g.Generate(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, MaxAttempts, attempts)
}

func TestCodeExists(t *testing.T) {
	db := setupDB(t)
	g := NewGenerator(db, zap.NewNop().Sugar())

	require.NoError(t, db.Create(&model.Link{Code: "abc123", Target: "https://example.com"}).Error)

	taken, err := g.codeExists(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = g.codeExists(context.Background(), "zzz999")
	require.NoError(t, err)
	assert.False(t, taken)
}
