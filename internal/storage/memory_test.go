package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryBlobsNoOverwrite(t *testing.T) {
	b := NewMemoryBlobs("https://cdn.example.test/images/")
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "recipes/1_pie.jpg", strings.NewReader("one"), 3, "image/jpeg"))
	err := b.Upload(ctx, "recipes/1_pie.jpg", strings.NewReader("two"), 3, "image/jpeg")
	require.True(t, errors.Is(err, ErrObjectExists))

	rc, err := b.DownloadFile(ctx, "recipes/1_pie.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.Equal(t, "one", string(data))

	require.Equal(t, "https://cdn.example.test/images/recipes/1_pie.jpg", b.PublicURL("recipes/1_pie.jpg"))
	require.Equal(t, "https://cdn.example.test/images/recipes/1_pie%231%3F100%25.jpg", b.PublicURL("recipes/1_pie#1?100%.jpg"))

	require.NoError(t, b.Remove(ctx, "recipes/1_pie.jpg", "never-existed"))
	ok, err := b.Exists(ctx, "recipes/1_pie.jpg")
	require.NoError(t, err)
	require.False(t, ok)
	_, err = b.DownloadFile(ctx, "recipes/1_pie.jpg")
	require.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestMinIOConfigBaseURL(t *testing.T) {
	c := &MinIOConfig{Endpoint: "minio:9000", Bucket: "images"}
	require.Equal(t, "http://minio:9000/images", c.BaseURL())
	c.UseSSL = true
	require.Equal(t, "https://minio:9000/images", c.BaseURL())
	c.PublicBaseURL = "https://media.example.test/images/"
	require.Equal(t, "https://media.example.test/images", c.BaseURL())
}
