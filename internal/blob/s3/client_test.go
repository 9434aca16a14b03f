package s3blob

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseEndpoint(t *testing.T) {
	assert.Equal(t, "https://s3.example.com", normaliseEndpoint("https://s3.example.com", false))
	assert.Equal(t, "http://localhost:9000", normaliseEndpoint("http://localhost:9000", true))
	assert.Equal(t, "https://minio.internal:9000", normaliseEndpoint("minio.internal:9000", true))
	assert.Equal(t, "http://minio.internal", normaliseEndpoint("minio.internal", false))
}

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestIsNotFound(t *testing.T) {
	require.True(t, isNotFound(&types.NoSuchKey{}))
	require.True(t, isNotFound(fmt.Errorf("wrapped: %w", &types.NotFound{})))
	require.True(t, isNotFound(fmt.Errorf("wrapped: %w", statusErr(404))))
	require.False(t, isNotFound(statusErr(403)))
	require.False(t, isNotFound(errors.New("boom")))
}

func TestNew_RequiresBucketAndRegion(t *testing.T) {
	_, err := New(t.Context(), ClientConfig{Region: "us-east-1"})
	require.ErrorContains(t, err, "bucket")

	_, err = New(t.Context(), ClientConfig{Bucket: "b"})
	require.ErrorContains(t, err, "region")
}
