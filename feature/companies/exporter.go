package companies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"company-manager/core/reconcile"
	"company-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	latestObject   = "latest.json"
	snapshotPrefix = "companies-"
	timestampFmt   = "20060102T150405Z"
)

// ExportDocument is the JSON body of an exported snapshot.
type ExportDocument struct {
	Status  reconcile.Status `json:"status"`
	Message string           `json:"message"`
	*reconcile.Result
}

// Exporter writes reconciled catalogues to object storage as JSON.
type Exporter struct {
	client storage.Client
	bucket string
	prefix string
	retain int
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates an exporter for the configured bucket and prefix.
func NewExporter(client storage.Client, cfg storage.Config, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		retain: cfg.RetainSnapshots,
		logger: logger,
		now:    time.Now,
	}
}

func (e *Exporter) key(name string) string {
	if e.prefix == "" {
		return name
	}
	return path.Join(e.prefix, name)
}

// Export writes result as a timestamped object and as latest.json, then
// prunes timestamped objects beyond the retention count. It returns the
// timestamped key.
func (e *Exporter) Export(ctx context.Context, result *reconcile.Result) (string, error) {
	doc := ExportDocument{
		Status:  result.Status(),
		Message: result.Message(),
		Result:  result,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := e.key(snapshotPrefix + e.now().UTC().Format(timestampFmt) + ".json")
	for _, name := range []string{key, e.key(latestObject)} {
		_, err := e.client.PutObject(ctx, e.bucket, name, bytes.NewReader(body), int64(len(body)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return "", fmt.Errorf("failed to upload %s: %w", name, err)
		}
	}

	if e.retain > 0 {
		if err := e.prune(ctx); err != nil {
			// The export itself succeeded.
			e.logger.Warn("Failed to prune old snapshots", zap.Error(err))
		}
	}
	return key, nil
}

// Latest reads back the most recent export.
func (e *Exporter) Latest(ctx context.Context) (*ExportDocument, error) {
	obj, err := e.client.GetObject(ctx, e.bucket, e.key(latestObject), minio.GetObjectOptions{})
	if err != nil {
		return nil, e.objectError(err)
	}
	defer obj.Close()

	var doc ExportDocument
	if err := json.NewDecoder(obj).Decode(&doc); err != nil {
		return nil, e.objectError(err)
	}
	if doc.Result == nil {
		return nil, fmt.Errorf("snapshot %s is empty", e.key(latestObject))
	}
	return &doc, nil
}

func (e *Exporter) objectError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("failed to read %s: %w", e.key(latestObject), err)
}

// Snapshots lists the timestamped snapshot keys, oldest first.
func (e *Exporter) Snapshots(ctx context.Context) ([]string, error) {
	var keys []string
	opts := minio.ListObjectsOptions{Prefix: e.key(snapshotPrefix), Recursive: true}
	for obj := range e.client.ListObjects(ctx, e.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	// Timestamps are fixed-width, so lexical order is chronological.
	sort.Strings(keys)
	return keys, nil
}

func (e *Exporter) prune(ctx context.Context) error {
	keys, err := e.Snapshots(ctx)
	if err != nil {
		return err
	}
	if len(keys) <= e.retain {
		return nil
	}

	var errs []error
	for _, key := range keys[:len(keys)-e.retain] {
		if err := e.client.RemoveObject(ctx, e.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
			continue
		}
		e.logger.Debug("Pruned snapshot", zap.String("key", key))
	}
	return errors.Join(errs...)
}
