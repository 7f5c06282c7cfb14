package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	assert.False(t, repo.Enabled())

	var dest map[string]int
	err := repo.Get(context.Background(), "dashboard:user-1", &dest)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)

	assert.NoError(t, repo.Set(context.Background(), "dashboard:user-1", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "dashboard:user-1"))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "dashboard:*"))
	assert.NoError(t, repo.Close())
}
