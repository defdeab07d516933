package file_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/file"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func newS3(t *testing.T, client *mockS3Client, cfg file.S3Config) *file.S3Storage {
	t.Helper()
	store, err := file.NewS3Storage(context.Background(), cfg, file.WithS3Client(client))
	require.NoError(t, err)
	return store
}

func TestS3Storage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("put uploads with content type", func(t *testing.T) {
		t.Parallel()
		client := &mockS3Client{}
		store := newS3(t, client, file.S3Config{Bucket: "media", Region: "eu-west-1"})

		client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			body, _ := io.ReadAll(in.Body)
			return *in.Bucket == "media" && *in.Key == "avatars/a.png" &&
				*in.ContentType == "image/png" && *in.ContentLength == 3 && string(body) == "png"
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		obj, err := store.Put(ctx, "/avatars/a.png", strings.NewReader("png"), 3, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/avatars/a.png", obj.URL)
		client.AssertExpectations(t)
	})

	t.Run("custom endpoint url", func(t *testing.T) {
		t.Parallel()
		store := newS3(t, &mockS3Client{}, file.S3Config{Bucket: "media", Region: "auto", Endpoint: "http://minio:9000/"})
		assert.Equal(t, "http://minio:9000/media/k.png", store.URL("k.png"))
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		client := &mockS3Client{}
		store := newS3(t, client, file.S3Config{Bucket: "media", Region: "eu-west-1", BaseURL: "https://cdn.example.com"})
		client.On("PutObject", ctx, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}).Once()

		_, err := store.Put(ctx, "a.png", strings.NewReader("x"), 1, "image/png")
		assert.ErrorIs(t, err, file.ErrAccessDenied)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		client := &mockS3Client{}
		store := newS3(t, client, file.S3Config{Bucket: "media", Region: "eu-west-1"})
		client.On("DeleteObject", ctx, mock.Anything).Return(nil, context.DeadlineExceeded).Once()

		assert.ErrorIs(t, store.Delete(ctx, "a.png"), file.ErrOperationTimeout)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		t.Parallel()
		client := &mockS3Client{}
		store := newS3(t, client, file.S3Config{Bucket: "media", Region: "eu-west-1"})
		boom := errors.New("boom")
		client.On("DeleteObject", ctx, mock.Anything).Return(nil, boom).Once()

		assert.ErrorIs(t, store.Delete(ctx, "a.png"), boom)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		_, err := file.NewS3Storage(ctx, file.S3Config{Bucket: "media"})
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
	})
}
