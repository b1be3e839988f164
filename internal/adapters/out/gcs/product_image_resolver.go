package gcs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
)

// ProductImageResolver turns a catalog imageRef (object name like "one.jpeg")
// into a public GCS URL. When the client is configured it probes the object
// so missing images are logged once at resolve time; resolution itself never
// fails the caller; a bare ref is returned as-is when nothing is configured.
type ProductImageResolver struct {
	Client *storage.Client
	Bucket string
}

func NewProductImageResolver(client *storage.Client, bucket string) *ProductImageResolver {
	return &ProductImageResolver{Client: client, Bucket: strings.TrimSpace(bucket)}
}

// Resolve returns the public URL for ref, or ref unchanged when no bucket is
// configured.
func (r *ProductImageResolver) Resolve(ctx context.Context, ref string) string {
	obj := strings.TrimLeft(strings.TrimSpace(ref), "/")
	if obj == "" {
		return ""
	}
	if r == nil || r.Bucket == "" {
		return obj
	}

	if r.Client != nil {
		if _, err := r.Client.Bucket(r.Bucket).Object(obj).Attrs(ctx); err != nil {
			if errors.Is(err, storage.ErrObjectNotExist) {
				log.Printf("[product_image] WARN: object not found bucket=%s object=%s", r.Bucket, obj)
			} else {
				log.Printf("[product_image] WARN: attrs failed bucket=%s object=%s: %v", r.Bucket, obj, err)
			}
		}
	}

	return publicURL(r.Bucket, obj)
}

// publicURL builds a public GCS URL.
func publicURL(bucket, objectPath string) string {
	b := strings.TrimSpace(bucket)
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b, obj)
}
