// Package offload uploads packaged static assets to an object store so the
// serving tier never touches them. Hashed framework assets are uploaded with
// an immutable cache-control header; everything else gets no caching
// directive and inherits the store's default.
package offload

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nextroute-dev/nextroute/internal/errors"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// Uploader uploads one local file to a remote key and returns the public URL
// it will be served from.
type Uploader interface {
	Upload(ctx context.Context, localPath, key, cacheControl string) (string, error)
}

// immutablePrefix marks keys whose filenames are content-hashed by the
// framework build and can be cached forever.
const immutablePrefix = "_next/static/"

// Dir uploads every regular file under dir. Keys are the slash-separated
// paths relative to dir, with prefix prepended. It returns a map of key to
// public URL.
//
// Files are uploaded in sorted key order so partial-failure reporting is
// deterministic.
func Dir(ctx context.Context, upl Uploader, dir, prefix string) (map[string]string, error) {
	var keys []string
	local := make(map[string]string)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" {
			key = strings.TrimSuffix(prefix, "/") + "/" + key
		}
		keys = append(keys, key)
		local[key] = path
		return nil
	})
	if err != nil {
		return nil, errors.New("N301").
			WithDetail("Cannot walk %s", dir).
			Wrap(err)
	}
	sort.Strings(keys)

	urls := make(map[string]string, len(keys))
	for _, key := range keys {
		cacheControl := ""
		if isImmutable(key, prefix) {
			cacheControl = routes.ImmutableCacheControl
		}
		url, err := upl.Upload(ctx, local[key], key, cacheControl)
		if err != nil {
			return nil, errors.New("N301").
				WithDetail("Uploading %s", key).
				Wrap(err)
		}
		urls[key] = url
	}
	return urls, nil
}

func isImmutable(key, prefix string) bool {
	if prefix != "" {
		key = strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/")+"/")
	}
	return strings.HasPrefix(key, immutablePrefix)
}
