package media

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/newsinsight/internal/config"
)

var fixedNow = time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Bucket:       "newsinsight",
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		BaseEndpoint: "http://127.0.0.1:9000",
		Now:          func() time.Time { return fixedNow },
	}
}

// offlineAWSConfig keeps the shared config files and environment out of the
// tests.
func offlineAWSConfig(t *testing.T) {
	t.Helper()
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}
}

func TestVerificationKey(t *testing.T) {
	key := VerificationKey(fixedNow)
	assert.Regexp(t, regexp.MustCompile(`^verifications/2024/3/7/[0-9a-f-]{36}$`), key)
	assert.NotEqual(t, key, VerificationKey(fixedNow))
}

func TestAvatarKey(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^avatars/42/[0-9a-f-]{36}$`), AvatarKey("42"))
}

func TestPresignUpload_Disabled(t *testing.T) {
	p := NewPresigner(Options{})
	assert.False(t, p.Enabled())

	_, err := p.PresignUpload(context.Background(), KindVerification, "1", "")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = p.PresignDownload(context.Background(), "k")
	assert.ErrorIs(t, err, ErrDisabled)

	var nilP *Presigner
	assert.False(t, nilP.Enabled())
}

func TestPresignUpload_SignsPathStyleURL(t *testing.T) {
	offlineAWSConfig(t)
	p := NewPresigner(testOptions())

	up, err := p.PresignUpload(context.Background(), KindVerification, "1", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up.Key, "verifications/2024/3/7/"))
	assert.Equal(t, "PUT", up.Method)
	assert.Equal(t, fixedNow.Add(DefaultExpiry), up.ExpiresAt)

	u, err := url.Parse(up.URL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/newsinsight/"+up.Key, u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestPresignDownload(t *testing.T) {
	offlineAWSConfig(t)
	p := NewPresigner(testOptions())

	down, err := p.PresignDownload(context.Background(), "verifications/2024/3/7/abc")
	require.NoError(t, err)
	assert.Equal(t, "verifications/2024/3/7/abc", down.Key)
	assert.Equal(t, "GET", down.Method)
	assert.Equal(t, fixedNow.Add(DefaultExpiry), down.ExpiresAt)

	u, err := url.Parse(down.URL)
	require.NoError(t, err)
	assert.Equal(t, "/newsinsight/verifications/2024/3/7/abc", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	_, err = p.PresignDownload(context.Background(), "avatars/../secrets")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"verifications/2024/3/7/abc", true},
		{"avatars/2/abc", true},
		{"", false},
		{"other/abc", false},
		{"avatars//abc", false},
		{"avatars/../etc", false},
		{"verifications/./x", false},
		{"avatars/2/", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidKey(tt.key))
		})
	}
}

func TestPresignUpload_Avatar(t *testing.T) {
	offlineAWSConfig(t)
	p := NewPresigner(testOptions())

	up, err := p.PresignUpload(context.Background(), KindAvatar, "2", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Key, "avatars/2/"))

	_, err = p.PresignUpload(context.Background(), KindAvatar, " ", "")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = p.PresignUpload(context.Background(), "video", "2", "")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestPresignClient_BuiltOnce(t *testing.T) {
	origLoad, origNewS3, origNewPre, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
	})

	loads := 0
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		loads++
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		_, ok := lo.Credentials.(credentials.StaticCredentialsProvider)
		assert.True(t, ok, "static credentials expected")
		return aws.Config{}, nil
	}

	var endpoint string
	var pathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		endpoint = aws.ToString(o.BaseEndpoint)
		pathStyle = o.UsePathStyle
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, "newsinsight", aws.ToString(in.Bucket))
		return &v4.PresignedHTTPRequest{URL: "http://signed/" + aws.ToString(in.Key), Method: "PUT"}, nil
	}

	p := NewPresigner(testOptions())
	for i := 0; i < 3; i++ {
		_, err := p.PresignUpload(context.Background(), KindVerification, "", "")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, loads)
	assert.Equal(t, "http://127.0.0.1:9000", endpoint)
	assert.True(t, pathStyle)
}

func TestPresignUpload_Errors(t *testing.T) {
	origLoad, origPut := loadDefaultAWSConfig, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		presignPutObject = origPut
	})

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}
	_, err := NewPresigner(testOptions()).PresignUpload(context.Background(), KindVerification, "", "")
	assert.ErrorContains(t, err, "load aws config")

	offlineAWSConfig(t)
	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}
	_, err = NewPresigner(testOptions()).PresignUpload(context.Background(), KindVerification, "", "")
	assert.ErrorContains(t, err, "sign failed")
}

func TestOptionsFromConfig(t *testing.T) {
	c := &config.Config{S3Bucket: "b", S3Region: "eu-west-1", S3RootUser: "u", S3RootPassword: "p", S3BaseEndpoint: "http://minio:9000"}
	assert.Equal(t, Options{Bucket: "b", Region: "eu-west-1", AccessKey: "u", SecretKey: "p", BaseEndpoint: "http://minio:9000"}, OptionsFromConfig(c))
}
