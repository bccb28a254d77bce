package s3_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catb00mer/fluffer/core/keypair"
	"github.com/catb00mer/fluffer/core/static"
	"github.com/catb00mer/fluffer/integration/storage/s3"
)

type object struct {
	contentType string
	body        string
}

type fakeClient struct {
	objects map[string]object
	err     error
	body    io.ReadCloser
	keys    []string
}

func (f *fakeClient) GetObject(_ context.Context, in *s3aws.GetObjectInput, _ ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	if f.body != nil {
		return &s3aws.GetObjectOutput{Body: f.body}, nil
	}
	obj, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	out := &s3aws.GetObjectOutput{Body: io.NopCloser(strings.NewReader(obj.body))}
	if obj.contentType != "" {
		out.ContentType = aws.String(obj.contentType)
	}
	return out, nil
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("reset by peer") }
func (brokenBody) Close() error             { return nil }

func newSource(t *testing.T, client s3.Client, prefix string) *s3.Source {
	t.Helper()
	src, err := s3.New(context.Background(), s3.Config{
		Bucket: "capsule",
		Region: "us-east-1",
		Prefix: prefix,
	}, s3.WithClient(client))
	require.NoError(t, err)
	return src
}

func TestNewBuildsClient(t *testing.T) {
	t.Parallel()

	var configured bool
	src, err := s3.New(context.Background(), s3.Config{
		Bucket:         "capsule",
		Region:         "us-east-1",
		Endpoint:       "http://127.0.0.1:9000",
		AccessKeyID:    "minio",
		SecretKey:      "minio123",
		ForcePathStyle: true,
	},
		s3.WithHTTPTimeout(time.Second),
		s3.WithConfigOption(awsconfig.WithSharedConfigFiles([]string{})),
		s3.WithConfigOption(awsconfig.WithSharedCredentialsFiles([]string{})),
		s3.WithS3ClientOption(func(o *s3aws.Options) {
			configured = o.UsePathStyle && aws.ToString(o.BaseEndpoint) == "http://127.0.0.1:9000"
		}),
	)
	require.NoError(t, err)
	assert.NotNil(t, src)
	assert.True(t, configured)
}

func TestNewWithCABundle(t *testing.T) {
	certPEM, _, err := keypair.GeneratePEM([]string{"minio.local"}, time.Hour)
	require.NoError(t, err)
	bundle := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(bundle, certPEM, 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	src, err := s3.New(context.Background(), s3.Config{
		Bucket:      "capsule",
		Region:      "us-east-1",
		AccessKeyID: "minio",
		SecretKey:   "minio123",
		HTTPTimeout: 5 * time.Second,
	},
		s3.WithConfigOption(awsconfig.WithSharedConfigFiles([]string{})),
		s3.WithConfigOption(awsconfig.WithSharedCredentialsFiles([]string{})),
	)
	require.NoError(t, err)
	assert.NotNil(t, src)
}

func TestNewInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := s3.New(context.Background(), s3.Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, s3.ErrInvalidConfig)
}

func TestSourceOpen(t *testing.T) {
	t.Parallel()

	client := &fakeClient{objects: map[string]object{
		"public/index.gmi":  {body: "# hello"},
		"public/photo.png":  {contentType: "image/png", body: "png"},
		"public/notes":      {contentType: "binary/octet-stream", body: "??"},
		"public/typed.blob": {contentType: "text/plain", body: "plain"},
	}}
	src := newSource(t, client, "/public/")

	tests := []struct {
		name     string
		file     string
		wantMIME string
		wantBody string
		wantErr  error
	}{
		{name: "guessed gemtext", file: "index.gmi", wantMIME: "text/gemini", wantBody: "# hello"},
		{name: "content type from object", file: "photo.png", wantMIME: "image/png", wantBody: "png"},
		{name: "explicit type beats extension", file: "typed.blob", wantMIME: "text/plain", wantBody: "plain"},
		{name: "generic type without extension", file: "notes", wantErr: static.ErrUnknownMIME},
		{name: "missing", file: "nope.gmi", wantErr: static.ErrNotFound},
		{name: "sanitized to empty", file: "..", wantErr: static.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := src.Open(context.Background(), tt.file)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, asset.MIME)
			assert.Equal(t, tt.wantBody, string(asset.Body))
		})
	}
}

func TestSourceOpenStripsTraversal(t *testing.T) {
	t.Parallel()

	client := &fakeClient{objects: map[string]object{}}
	src := newSource(t, client, "")

	_, err := src.Open(context.Background(), "../secret.gmi")
	assert.ErrorIs(t, err, static.ErrNotFound)
	require.Len(t, client.keys, 1)
	assert.Equal(t, "..secret.gmi", client.keys[0])
}

func TestSourceOpenErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		client  *fakeClient
		wantErr error
	}{
		{
			name:    "api not found code",
			client:  &fakeClient{err: &smithy.GenericAPIError{Code: "NoSuchKey"}},
			wantErr: static.ErrNotFound,
		},
		{
			name:    "access denied",
			client:  &fakeClient{err: &smithy.GenericAPIError{Code: "AccessDenied"}},
			wantErr: static.ErrNotFound,
		},
		{
			name:    "transport failure",
			client:  &fakeClient{err: errors.New("dial tcp: timeout")},
			wantErr: static.ErrRead,
		},
		{
			name:    "body read failure",
			client:  &fakeClient{body: brokenBody{}},
			wantErr: static.ErrRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(t, tt.client, "")
			_, err := src.Open(context.Background(), "index.gmi")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
