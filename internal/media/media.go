// Package media presigns object storage URLs for verification evidence and
// profile avatars. Clients upload to and download from the returned URLs
// directly.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/newsinsight/internal/config"
)

// DefaultExpiry is the lifetime of presigned URLs.
const DefaultExpiry = 15 * time.Minute

// Upload kinds.
const (
	KindVerification = "verification"
	KindAvatar       = "avatar"
)

var (
	ErrDisabled    = errors.New("object storage is not configured")
	ErrUnknownKind = errors.New("unknown upload kind")
	ErrInvalidKey  = errors.New("invalid object key")
)

// Key prefixes, one per upload kind.
const (
	verificationPrefix = "verifications/"
	avatarPrefix       = "avatars/"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Options locate the bucket. An empty BaseEndpoint uses AWS itself;
// otherwise path-style addressing is used (MinIO and friends).
type Options struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Expiry       time.Duration
	Now          func() time.Time
}

// OptionsFromConfig maps the S3* settings.
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
	}
}

// Upload is a presigned request: PUT for uploads, GET for downloads.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Presigner struct {
	opts Options

	mu     sync.Mutex
	client *s3.PresignClient
}

func NewPresigner(opts Options) *Presigner {
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Presigner{opts: opts}
}

// Enabled reports whether a bucket is configured.
func (p *Presigner) Enabled() bool {
	return p != nil && p.opts.Bucket != ""
}

// VerificationKey names evidence uploaded on day t.
func VerificationKey(t time.Time) string {
	return fmt.Sprintf("%s%d/%d/%d/%v", verificationPrefix, t.Year(), t.Month(), t.Day(), uuid.New())
}

// AvatarKey names a new avatar for userID.
func AvatarKey(userID string) string {
	return fmt.Sprintf("%s%s/%v", avatarPrefix, userID, uuid.New())
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(p.opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.opts.AccessKey,
			p.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(p.opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	p.client = newS3PresignClient(client)
	return p.client, nil
}

// PresignUpload returns a PUT URL for a new object of the given kind.
// userID is part of avatar keys.
func (p *Presigner) PresignUpload(ctx context.Context, kind, userID, contentType string) (Upload, error) {
	if !p.Enabled() {
		return Upload{}, ErrDisabled
	}

	var key string
	switch kind {
	case KindVerification, "":
		key = VerificationKey(p.opts.Now().UTC())
	case KindAvatar:
		if strings.TrimSpace(userID) == "" {
			return Upload{}, fmt.Errorf("%w: avatar without user", ErrUnknownKind)
		}
		key = AvatarKey(userID)
	default:
		return Upload{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	pc, err := p.presignClient(ctx)
	if err != nil {
		return Upload{}, err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(p.opts.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(p.opts.Expiry))
	if err != nil {
		return Upload{}, fmt.Errorf("presign put %s: %w", key, err)
	}

	return Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: p.opts.Now().Add(p.opts.Expiry).UTC(),
	}, nil
}

// ValidKey reports whether key names an object this package hands out:
// it lives under a known prefix and has no empty or dot segments.
func ValidKey(key string) bool {
	if !strings.HasPrefix(key, verificationPrefix) && !strings.HasPrefix(key, avatarPrefix) {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// PresignDownload returns a GET URL for an existing key.
func (p *Presigner) PresignDownload(ctx context.Context, key string) (Upload, error) {
	if !p.Enabled() {
		return Upload{}, ErrDisabled
	}
	if !ValidKey(key) {
		return Upload{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	pc, err := p.presignClient(ctx)
	if err != nil {
		return Upload{}, err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.opts.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.opts.Expiry))
	if err != nil {
		return Upload{}, fmt.Errorf("presign get %s: %w", key, err)
	}
	return Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: p.opts.Now().Add(p.opts.Expiry).UTC(),
	}, nil
}
