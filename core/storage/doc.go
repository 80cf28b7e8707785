// Package storage provides an abstraction layer for S3-compatible object
// storage, used to export reconciled company snapshots.
//
// It wraps the MinIO Go client behind the Client interface so exporters can
// be unit tested with the mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: EnsureBucket creates the target bucket on demand.
//   - PutObject / GetObject: write and read snapshot documents.
//   - ListObjects / RemoveObject: enumerate and prune old snapshots.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
