// Package s3store adapts Amazon S3 (and S3-compatible services) to the
// store.Client capability. Listing translates the flat keyspace into file
// and virtual-directory entries; cross-account copy is implemented as an
// asynchronous fetch from a presigned source URL tracked by a local status
// registry.
package s3store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/store"
	"github.com/blobkit/transfer/transfertypes"
)

const maxPageSize = 1000

// Config holds adapter settings populated by functional options.
type Config struct {
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	HTTPClient     *http.Client
}

// Option configures the adapter.
type Option func(*Config)

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(c *Config) { c.Region = region }
}

// WithEndpoint sets a custom S3 endpoint URL, for S3-compatible services.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) { c.Endpoint = endpoint }
}

// WithStaticCredentials sets explicit credentials instead of the default
// credential chain.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(c *Config) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithForcePathStyle forces path-style URLs, required by most
// S3-compatible services.
func WithForcePathStyle(force bool) Option {
	return func(c *Config) { c.ForcePathStyle = force }
}

// WithHTTPClient sets the HTTP client used both for SDK calls and for
// fetching presigned source URLs during copies.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// Store is an S3-backed store.Client.
type Store struct {
	api       S3API
	presigner Presigner
	http      *http.Client

	copyMu sync.Mutex
	copies map[string]*copyJob
}

// New creates an S3 adapter using the default credential chain, overridden
// by any options.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	var c Config
	for _, opt := range opts {
		opt(&c)
	}

	var loadOpts []func(*config.LoadOptions) error
	if c.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(c.Region))
	}
	if c.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.ForcePathStyle
		if c.HTTPClient != nil {
			o.HTTPClient = c.HTTPClient
		}
	})

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Store{
		api:       client,
		presigner: s3.NewPresignClient(client),
		http:      httpClient,
		copies:    make(map[string]*copyJob),
	}, nil
}

// NewWithAPI creates an adapter around an existing API implementation.
// This is primarily used for testing with mocked clients.
func NewWithAPI(api S3API, presigner Presigner) *Store {
	return &Store{
		api:       api,
		presigner: presigner,
		http:      http.DefaultClient,
		copies:    make(map[string]*copyJob),
	}
}

// ListDirect returns the entries one level below prefix: objects directly
// under it plus a directory entry per common prefix.
func (s *Store) ListDirect(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error) {
	var entries []*transfertypes.ObjectEntry
	var token *string

	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(container),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String(store.Delimiter),
			MaxKeys:           aws.Int32(maxPageSize),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, errors.NewObjectError("listDirect", container, prefix, err)
		}

		for _, cp := range out.CommonPrefixes {
			entries = append(entries, transfertypes.NewDirEntry(aws.ToString(cp.Prefix)))
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			entries = append(entries, transfertypes.NewFileEntry(
				key,
				aws.ToInt64(obj.Size),
				aws.ToTime(obj.LastModified),
				string(obj.StorageClass),
			))
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	return entries, nil
}

// ListRecursive returns every object under prefix at any depth. Sizes are
// known immediately since S3 listings carry them.
func (s *Store) ListRecursive(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error) {
	var entries []*transfertypes.ObjectEntry
	var token *string

	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(container),
			Prefix:            aws.String(prefix),
			MaxKeys:           aws.Int32(maxPageSize),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, errors.NewObjectError("listRecursive", container, prefix, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, store.Delimiter) {
				// Zero-byte folder markers are hierarchy, not content.
				continue
			}
			entries = append(entries, transfertypes.NewFileEntry(
				key,
				aws.ToInt64(obj.Size),
				aws.ToTime(obj.LastModified),
				string(obj.StorageClass),
			))
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	return entries, nil
}

// GetMetadata returns object metadata, mapping absence to ErrNotFound.
func (s *Store) GetMetadata(ctx context.Context, container, key string) (*store.Metadata, error) {
	out, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewObjectError("getMetadata", container, key, errors.ErrNotFound)
		}
		return nil, errors.NewObjectError("getMetadata", container, key, err)
	}

	return &store.Metadata{
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		Tier:         string(out.StorageClass),
		ContentType:  aws.ToString(out.ContentType),
	}, nil
}

// GetBytes opens an object for reading. The caller owns the returned body.
func (s *Store) GetBytes(ctx context.Context, container, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewObjectError("getBytes", container, key, errors.ErrNotFound)
		}
		return nil, errors.NewObjectError("getBytes", container, key, err)
	}
	return out.Body, nil
}

// PutBytes writes an object. With overwrite off the put is conditional on
// the key not existing and an existing object maps to ErrAlreadyExists.
func (s *Store) PutBytes(ctx context.Context, container, key string, body io.Reader, contentType string, overwrite bool) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.NewObjectError("putBytes", container, key, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(container),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if !overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		if !overwrite && isPreconditionFailed(err) {
			return errors.NewObjectError("putBytes", container, key, errors.ErrAlreadyExists)
		}
		return errors.NewObjectError("putBytes", container, key, err)
	}
	return nil
}

// Delete removes an object. S3 deletes are idempotent; deleting a missing
// key succeeds.
func (s *Store) Delete(ctx context.Context, container, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.NewObjectError("delete", container, key, err)
	}
	return nil
}

// IssueReadURL returns a presigned GET URL valid for ttl.
func (s *Store) IssueReadURL(ctx context.Context, container, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = ttl
	})
	if err != nil {
		return "", errors.NewObjectError("issueReadURL", container, key, err)
	}
	return req.URL, nil
}

// isNotFound checks if an error indicates that an object was not found.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound")
}

// isPreconditionFailed checks for a failed conditional write.
func isPreconditionFailed(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "PreconditionFailed") || strings.Contains(msg, "412")
}

var _ store.Client = (*Store)(nil)
