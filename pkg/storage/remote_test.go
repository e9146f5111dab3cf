package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	puts    map[string]string
	deletes []string
	putErr  error
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, _ := io.ReadAll(in.Body)
	if m.puts == nil {
		m.puts = map[string]string{}
	}
	m.puts[*in.Key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deletes = append(m.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_UploadAndDelete(t *testing.T) {
	client := &mockS3{}
	s := newS3Storage(client, "talib", "https://talib.s3.ap-southeast-1.amazonaws.com/")

	url, err := s.UploadImage(context.Background(), strings.NewReader("jpeg"), "items", "desk.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://talib.s3.ap-southeast-1.amazonaws.com/items/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	require.Len(t, client.puts, 1)

	require.NoError(t, s.DeleteImage(context.Background(), url))
	require.Len(t, client.deletes, 1)
	_, uploaded := client.puts[client.deletes[0]]
	assert.True(t, uploaded)
}

func TestS3Storage_UploadError(t *testing.T) {
	s := newS3Storage(&mockS3{putErr: errors.New("denied")}, "talib", "https://x")
	_, err := s.UploadImage(context.Background(), strings.NewReader("x"), "items", "a.png")
	assert.Error(t, err)
}

func TestS3Storage_KeyFromPathStyleURL(t *testing.T) {
	s := newS3Storage(&mockS3{}, "talib", "http://minio:9000/talib")
	assert.Equal(t, "housing/2026/01/a.png", s.keyFromURL("http://minio:9000/talib/housing/2026/01/a.png"))
	assert.Equal(t, "housing/a.png", s.keyFromURL("http://other-host/talib/housing/a.png"))
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	key := objectKey("avatars", "me.PNG", now)
	assert.True(t, strings.HasPrefix(key, "avatars/2026/03/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestCloudinaryPublicID(t *testing.T) {
	assert.Equal(t, "housing/123-room",
		cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/v1712/housing/123-room.webp"))
	assert.Equal(t, "housing/room",
		cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/housing/room.jpg"))
	assert.Equal(t, "", cloudinaryPublicID("https://example.com/no-upload-segment.png"))
}
