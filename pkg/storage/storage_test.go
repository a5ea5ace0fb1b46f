package storage_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/storage"
)

func newLocal(t *testing.T) *storage.LocalDisk {
	t.Helper()
	disk, err := storage.NewLocalDisk(t.TempDir(), "/images")
	require.NoError(t, err)
	return disk
}

func TestLocalDiskPutGetDelete(t *testing.T) {
	ctx := context.Background()
	disk := newLocal(t)

	require.NoError(t, disk.Put(ctx, "a.jpg", []byte("jpeg")))

	ok, err := disk.Exists(ctx, "a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := disk.Get(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	require.NoError(t, disk.Delete(ctx, "a.jpg"))
	err = disk.Delete(ctx, "a.jpg")
	assert.ErrorIs(t, err, storage.ErrNotExist)

	assert.Equal(t, "/images/a.jpg", disk.URL("a.jpg"))
}

func TestLocalDiskRefusesEscape(t *testing.T) {
	disk := newLocal(t)
	require.NoError(t, disk.Put(context.Background(), "../../x.jpg", []byte("x")))

	_, err := os.Stat(filepath.Join(disk.Root(), "x.jpg"))
	assert.NoError(t, err, "traversal is clamped to the root")
}

func TestLocalDiskKeysFiltersExtension(t *testing.T) {
	ctx := context.Background()
	disk := newLocal(t)
	for _, name := range []string{"reports/a.json", "reports/b.json", "reports/c.txt", "other/d.json"} {
		require.NoError(t, disk.Put(ctx, name, []byte("{}")))
	}

	keys, err := disk.Keys(ctx, "reports", "json")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"reports/a.json", "reports/b.json"}, keys)

	all, err := disk.Keys(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestFileStoreDeleteMissingIsNotAnError(t *testing.T) {
	var logs bytes.Buffer
	files := storage.NewFileStore(newLocal(t), slog.New(slog.NewTextHandler(&logs, nil)))

	require.NoError(t, files.Delete(context.Background(), "gone.jpg"))
	assert.Contains(t, logs.String(), "gone.jpg")
	assert.Contains(t, logs.String(), "WARN")
}

func TestFileStoreWriteAndURL(t *testing.T) {
	ctx := context.Background()
	files := storage.NewFileStore(newLocal(t), nil)

	require.NoError(t, files.Write(ctx, "b.jpg", []byte{0xff, 0xd8}))
	url, err := files.URL(ctx, "b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/images/b.jpg", url)

	_, err = files.URL(ctx, "missing.jpg")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// b.jpg is a file, so it cannot become a directory.
	err = files.Write(ctx, "b.jpg/c.jpg", []byte{1})
	assert.ErrorIs(t, err, apperr.ErrIO)
}

func TestFileStoreReadMissingIsNotFound(t *testing.T) {
	files := storage.NewFileStore(newLocal(t), nil)

	_, err := files.Read(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFileStoreGetJSON(t *testing.T) {
	ctx := context.Background()
	disk := newLocal(t)
	files := storage.NewFileStore(disk, nil)

	require.NoError(t, disk.Put(ctx, "gaze/day.json", []byte(`{"count":3}`)))
	require.NoError(t, disk.Put(ctx, "gaze/bad.json", []byte(`{`)))

	doc, err := files.GetJSON(ctx, "gaze/day.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": float64(3)}, doc)

	_, err = files.GetJSON(ctx, "gaze/bad.json")
	assert.ErrorIs(t, err, apperr.ErrDecode)
}

func TestFileStoreKeysMissingPrefixIsEmpty(t *testing.T) {
	files := storage.NewFileStore(newLocal(t), nil)

	keys, err := files.Keys(context.Background(), "nowhere", "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

// fakeS3 serves a fixed object set.
type fakeS3 struct {
	objects map[string][]byte
	deleted []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3DiskKeysAndMissingObjects(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{
		"anlz/2024-01-01.json": []byte(`{}`),
		"anlz/2024-01-02.json": []byte(`{}`),
		"anlz/readme.txt":      []byte(`hi`),
	}}
	disk := storage.NewS3DiskWithClient(fake, "bucket", "https://cdn.example.com/")

	keys, err := disk.Keys(ctx, "/anlz/", ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{"anlz/2024-01-01.json", "anlz/2024-01-02.json"}, keys)

	_, err = disk.Get(ctx, "anlz/missing.json")
	assert.ErrorIs(t, err, storage.ErrNotExist)

	err = disk.Delete(ctx, "anlz/missing.json")
	assert.ErrorIs(t, err, storage.ErrNotExist)
	assert.Empty(t, fake.deleted)

	require.NoError(t, disk.Delete(ctx, "anlz/readme.txt"))
	assert.Equal(t, []string{"anlz/readme.txt"}, fake.deleted)

	assert.Equal(t, "https://cdn.example.com/a.jpg", disk.URL("/a.jpg"))
}
