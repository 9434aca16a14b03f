package s3blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// Reader implements domain.BlobReader using an S3-compatible backend.
type Reader struct {
	client     *s3.Client
	downloader *manager.Downloader
	bucket     string
	maxBytes   int64
}

// NewReader creates a Reader over the client's bucket. Objects larger than
// maxBytes are refused; zero means no limit.
func NewReader(c *Client, maxBytes int64) *Reader {
	return &Reader{
		client:     c.S3(),
		downloader: manager.NewDownloader(c.S3()),
		bucket:     c.Bucket(),
		maxBytes:   maxBytes,
	}
}

// Download fetches the whole object at path into memory. It returns
// domain.ErrNotFound if the object does not exist and domain.ErrInvalidInput
// if it is larger than the configured limit.
func (r *Reader) Download(ctx context.Context, path string) ([]byte, error) {
	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3blob: head %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("s3blob: head %s: %w", path, err)
	}

	size := aws.ToInt64(head.ContentLength)
	if r.maxBytes > 0 && size > r.maxBytes {
		return nil, fmt.Errorf("s3blob: %s is %d bytes, limit is %d: %w",
			path, size, r.maxBytes, domain.ErrInvalidInput)
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, size))
	if _, err := r.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(path),
	}); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3blob: download %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("s3blob: download %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// List returns metadata for all objects whose key starts with prefix,
// following continuation tokens until the listing is exhausted.
func (r *Reader) List(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	var infos []domain.BlobInfo

	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3blob: list prefix %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			info := domain.BlobInfo{
				Path: aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// isNotFound reports whether err means the object does not exist: the typed
// NoSuchKey and NotFound errors, or a bare 404 from a compatible provider.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	type httpResponseError interface {
		HTTPStatusCode() int
	}
	var httpErr httpResponseError
	return errors.As(err, &httpErr) && httpErr.HTTPStatusCode() == http.StatusNotFound
}

// Compile-time interface check.
var _ domain.BlobReader = (*Reader)(nil)
