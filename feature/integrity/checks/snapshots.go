package checks

import (
	"context"
	"path"
	"strings"

	"company-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// RequiredSnapshotFiles lists the files that must exist under the snapshot prefix.
var RequiredSnapshotFiles = []string{
	"latest.json",
}

// CheckSnapshots returns the snapshot files missing from the bucket.
func CheckSnapshots(ctx context.Context, client storage.Client, bucket, prefix string) ([]string, error) {
	if err := ensureBucket(ctx, client, bucket); err != nil {
		return nil, err
	}

	prefix = strings.Trim(prefix, "/")
	var missing []string
	for _, filename := range RequiredSnapshotFiles {
		key := filename
		if prefix != "" {
			key = path.Join(prefix, filename)
		}
		opts := minio.ListObjectsOptions{
			Prefix:    key,
			Recursive: false,
			MaxKeys:   1,
		}

		found := false
		for obj := range client.ListObjects(ctx, bucket, opts) {
			if obj.Err == nil && obj.Key == key {
				found = true
			}
			break
		}

		if !found {
			missing = append(missing, filename)
		}
	}

	return missing, nil
}
