package companies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"company-manager/core/reconcile"
	"company-manager/core/storage"
	"company-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExporter(client storage.Client, retain int) *Exporter {
	e := NewExporter(client, storage.Config{Bucket: "companies", Prefix: "/snapshots/", RetainSnapshots: retain}, zap.NewNop())
	e.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return e
}

func objectChan(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestExporter_Export(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 0)

	var latest []byte
	client.On("PutObject", mock.Anything, "companies", "snapshots/companies-20260304T050607Z.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("PutObject", mock.Anything, "companies", "snapshots/latest.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			latest, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	key, err := e.Export(context.Background(), resultOf(2, 0, testCompany(1, "Acme")))
	require.NoError(t, err)
	assert.Equal(t, "snapshots/companies-20260304T050607Z.json", key)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(latest, &doc))
	assert.Equal(t, "partial", doc["status"])
	assert.Equal(t, float64(1), doc["loaded"])
	assert.Len(t, doc["items"], 1)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestExporter_ExportUploadFails(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 0)

	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	_, err := e.Export(context.Background(), resultOf(1, 0, testCompany(1, "Acme")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	client.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestExporter_PrunesOldest(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 2)

	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("ListObjects", mock.Anything, "companies", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return o.Prefix == "snapshots/companies-"
	})).Return(objectChan(
		"snapshots/companies-20260304T050607Z.json",
		"snapshots/companies-20260101T000000Z.json",
		"snapshots/companies-20260201T000000Z.json",
		"snapshots/companies-20251201T000000Z.json",
	))
	client.On("RemoveObject", mock.Anything, "companies", mock.Anything, mock.Anything).Return(nil)

	_, err := e.Export(context.Background(), resultOf(1, 0, testCompany(1, "Acme")))
	require.NoError(t, err)

	client.AssertCalled(t, "RemoveObject", mock.Anything, "companies", "snapshots/companies-20251201T000000Z.json", mock.Anything)
	client.AssertCalled(t, "RemoveObject", mock.Anything, "companies", "snapshots/companies-20260101T000000Z.json", mock.Anything)
	client.AssertNumberOfCalls(t, "RemoveObject", 2)
}

func TestExporter_Latest(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 0)

	body, err := json.Marshal(ExportDocument{
		Status:  reconcile.StatusComplete,
		Message: "1 companies loaded",
		Result:  resultOf(1, 0, testCompany(1, "Acme")),
	})
	require.NoError(t, err)
	client.On("GetObject", mock.Anything, "companies", "snapshots/latest.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(body)), nil)

	doc, err := e.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusComplete, doc.Status)
	require.NotNil(t, doc.Result)
	assert.Equal(t, int64(1), doc.Companies[0].Code)
}

func TestExporter_LatestMissing(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 0)

	client.On("GetObject", mock.Anything, "companies", "snapshots/latest.json", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})

	_, err := e.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
