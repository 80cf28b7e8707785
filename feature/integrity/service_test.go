package integrity

import (
	"context"
	"testing"

	"company-manager/core/database"
	"company-manager/core/storage"
	"company-manager/core/storage/mocks"
	"company-manager/feature/integrity/checks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testStorage = storage.Config{Bucket: "test-bucket", Prefix: "snapshots"}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_Structure(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, testStorage, nil, zap.NewNop())

	t.Run("CheckStructure", func(t *testing.T) {
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())

		missing, err := svc.CheckStructure(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []string{"snapshots"}, missing)
	})

	t.Run("FixStructure", func(t *testing.T) {
		mockClient.On("PutObject", mock.Anything, "test-bucket", "snapshots/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
		err := svc.FixStructure(context.Background(), []string{"snapshots"})
		assert.NoError(t, err)
	})
}

func TestService_Snapshots(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, testStorage, nil, zap.NewNop())

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())

	missing, err := svc.CheckSnapshots(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"latest.json"}, missing)
}

func TestService_WithoutSinks(t *testing.T) {
	svc := NewService(nil, testStorage, nil, nil)
	ctx := context.Background()

	_, err := svc.CheckStructure(ctx)
	assert.ErrorIs(t, err, checks.ErrStorageDisabled)
	_, err = svc.CheckSchema()
	assert.ErrorIs(t, err, checks.ErrDatabaseDisabled)
	_, err = svc.CheckCatalogue(ctx)
	assert.ErrorIs(t, err, checks.ErrDatabaseDisabled)

	report := svc.CheckAll(ctx)
	for _, name := range []string{"structure", "snapshots", "schema", "catalogue"} {
		entry, ok := report[name].(map[string]any)
		require.True(t, ok, name)
		assert.Equal(t, "error", entry["status"], name)
	}
}

func TestService_Database(t *testing.T) {
	db := setupSQLite(t)
	svc := NewService(nil, testStorage, db, zap.NewNop())
	ctx := context.Background()

	schema, err := svc.CheckSchema()
	require.NoError(t, err)
	assert.False(t, schema.Matched)

	_, err = svc.CheckCatalogue(ctx)
	assert.Error(t, err, "tables are not migrated yet")
}
