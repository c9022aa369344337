package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/domain"
	"github.com/cloo-solutions/searchbench/internal/sink"
)

// ObjectStore is the subset of S3Client the publisher needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, contentType string, body []byte) error
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)
	DeleteObject(ctx context.Context, key string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// Artifact is one rendering of a batch, uploaded as Name.
type Artifact struct {
	Name   string
	Writer sink.Writer
}

// Published describes an uploaded artifact.
type Published struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	// Unchanged is set when an identical object was already stored.
	Unchanged bool `json:"unchanged,omitempty"`
}

// Publisher uploads rendered batches under runs/<batch id>/.
type Publisher struct {
	store  ObjectStore
	prefix string
	retain int

	mu      sync.Mutex
	batches []string            // oldest first
	keys    map[string][]string // batch id -> uploaded keys
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithRetain keeps the artifacts of the n most recent batches published
// through this Publisher and deletes older ones. n <= 0 keeps everything.
func WithRetain(n int) PublisherOption {
	return func(p *Publisher) { p.retain = n }
}

func NewPublisher(store ObjectStore, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, prefix: "runs", keys: map[string][]string{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the object key for an artifact of batch id.
func (p *Publisher) Key(batchID, name string) string {
	return path.Join(p.prefix, batchID, name)
}

// Publish renders and uploads every artifact. A failing artifact does not
// stop the others; all failures are returned joined.
func (p *Publisher) Publish(ctx context.Context, b *bench.Batch, artifacts []Artifact) ([]Published, error) {
	var (
		out  []Published
		errs []error
	)
	for _, a := range artifacts {
		pub, err := p.publishOne(ctx, b, a)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
			continue
		}
		out = append(out, pub)
	}

	if len(out) > 0 {
		keys := make([]string, 0, len(out))
		for _, pub := range out {
			keys = append(keys, pub.Key)
		}
		p.prune(ctx, b.ID, keys)
	}
	return out, errors.Join(errs...)
}

func (p *Publisher) publishOne(ctx context.Context, b *bench.Batch, a Artifact) (Published, error) {
	var buf bytes.Buffer
	if err := a.Writer.Write(&buf, b); err != nil {
		return Published{}, err
	}

	key := p.Key(b.ID, a.Name)
	pub := Published{Name: a.Name, Key: key}
	if p.stored(ctx, key, buf.Bytes()) {
		pub.Unchanged = true
	} else if err := p.store.PutObject(ctx, key, a.Writer.ContentType(), buf.Bytes()); err != nil {
		return Published{}, fmt.Errorf("%w: %w", domain.ErrStorageOperationFail, err)
	}

	url, err := p.store.GenerateDownloadURL(ctx, key)
	if err != nil {
		return Published{}, fmt.Errorf("%w: %w", domain.ErrStorageOperationFail, err)
	}
	pub.URL = url
	return pub, nil
}

// stored reports whether key already holds body. Any lookup failure,
// including a missing object, means it has to be uploaded.
func (p *Publisher) stored(ctx context.Context, key string, body []byte) bool {
	meta, err := p.store.HeadObject(ctx, key)
	if err != nil || meta == nil {
		return false
	}
	sum := md5.Sum(body)
	return meta.ContentLength == int64(len(body)) &&
		strings.Trim(meta.ETag, `"`) == hex.EncodeToString(sum[:])
}

// prune records the keys of batchID and deletes the artifacts of batches
// that fell out of the retention window. Deletion failures are logged.
func (p *Publisher) prune(ctx context.Context, batchID string, keys []string) {
	p.mu.Lock()
	if _, seen := p.keys[batchID]; !seen {
		p.batches = append(p.batches, batchID)
	}
	p.keys[batchID] = keys

	var expired []string
	if p.retain > 0 {
		for len(p.batches) > p.retain {
			old := p.batches[0]
			p.batches = p.batches[1:]
			expired = append(expired, p.keys[old]...)
			delete(p.keys, old)
		}
	}
	p.mu.Unlock()

	for _, key := range expired {
		if err := p.store.DeleteObject(ctx, key); err != nil {
			log.Printf("storage: failed to delete expired artifact %s: %v", key, err)
		}
	}
}
