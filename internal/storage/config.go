package storage

import (
	"fmt"
	"strings"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicBaseURL prefixes every public object URL. Empty means
	// <scheme>://<endpoint>/<bucket>.
	PublicBaseURL string
}

// BaseURL returns the public URL prefix for objects in the bucket, without a
// trailing slash.
func (c *MinIOConfig) BaseURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, c.Endpoint, c.Bucket)
}
