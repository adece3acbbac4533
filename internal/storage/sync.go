package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
)

// SyncArtifacts downloads each named artifact from bucket/prefix into dir,
// overwriting local copies. Every artifact must exist before any is fetched.
func SyncArtifacts(ctx context.Context, p Provider, bucket, prefix, dir string, names ...string) error {
	objects, err := p.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return fmt.Errorf("error listing artifacts in bucket %s: %w", bucket, err)
	}

	sizes := make(map[string]int64, len(objects))
	for _, obj := range objects {
		sizes[obj.Name] = obj.Size
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = path.Join(prefix, name)
		if _, ok := sizes[keys[i]]; !ok {
			return fmt.Errorf("artifact %s not found in bucket %s", keys[i], bucket)
		}
	}

	for i, name := range names {
		dst := filepath.Join(dir, name)

		slog.Info("syncing model artifact", "bucket", bucket, "key", keys[i], "size", sizes[keys[i]], "dest", dst)
		if err := p.DownloadObject(ctx, bucket, keys[i], dst); err != nil {
			return fmt.Errorf("error syncing artifact %s from bucket %s: %w", keys[i], bucket, err)
		}
	}
	return nil
}
