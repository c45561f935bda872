package knowledge

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/utils/safe"
	"google.golang.org/api/iterator"
)

var documentExtensions = []string{".md", ".txt"}

func isDocument(name string) bool {
	return slices.Contains(documentExtensions, strings.ToLower(path.Ext(name)))
}

// DirLoader reads markdown and text documents from a local directory (non-recursive)
type DirLoader struct {
	dir string
}

func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir}
}

func (l *DirLoader) Load(ctx context.Context) ([]Document, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge directory", goerr.V("dir", l.dir))
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !isDocument(entry.Name()) {
			continue
		}
		p := filepath.Join(l.dir, entry.Name())
		// #nosec G304 - path is under the configured knowledge directory
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read knowledge document", goerr.V("path", p))
		}
		docs = append(docs, Document{Name: entry.Name(), Content: string(data)})
	}
	return docs, nil
}

// GCSLoader reads documents stored under a prefix of a Cloud Storage bucket
type GCSLoader struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSLoader(client *storage.Client, bucket, prefix string) *GCSLoader {
	return &GCSLoader{client: client, bucket: bucket, prefix: prefix}
}

// ParseGCSURL splits "gs://bucket/prefix" into its bucket and prefix
func ParseGCSURL(url string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(url, "gs://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, prefix, true
}

func (l *GCSLoader) Load(ctx context.Context) ([]Document, error) {
	it := l.client.Bucket(l.bucket).Objects(ctx, &storage.Query{Prefix: l.prefix})

	var docs []Document
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list knowledge objects",
				goerr.V("bucket", l.bucket),
				goerr.V("prefix", l.prefix))
		}
		if !isDocument(attrs.Name) {
			continue
		}

		content, err := l.read(ctx, attrs.Name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: path.Base(attrs.Name), Content: content})
	}
	return docs, nil
}

func (l *GCSLoader) read(ctx context.Context, name string) (string, error) {
	r, err := l.client.Bucket(l.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open knowledge object", goerr.V("bucket", l.bucket), goerr.V("object", name))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read knowledge object", goerr.V("bucket", l.bucket), goerr.V("object", name))
	}
	return string(data), nil
}
