package store

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/inkpad/internal/errors"
	"github.com/vango-dev/inkpad/pkg/settings"
)

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, meta: map[string]map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := *in.Bucket + "/" + *in.Key
	f.objects[key] = data
	f.meta[key] = in.Metadata
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func sampleSnapshot() settings.Snapshot {
	s := settings.DefaultSnapshot()
	s.Tool = settings.ToolEraser
	s.Pen.Color = "#ff8800"
	return s
}

func testStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := st.Load(ctx, "missing"); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) = %v, want ErrNotFound", err)
	}

	want := sampleSnapshot()
	if err := st.Save(ctx, "doc-1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryStore().Save(ctx, "doc", sampleSnapshot()); !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestS3Store(t *testing.T) {
	client := newFakeS3()
	st := NewS3Store(client, "bucket", "inkpad/")
	testStore(t, st)

	if st.Key("doc-1") != "inkpad/doc-1.json" {
		t.Errorf("Key = %q", st.Key("doc-1"))
	}
	if client.meta["bucket/inkpad/doc-1.json"]["document"] != "doc-1" {
		t.Errorf("missing document metadata: %v", client.meta)
	}
}

func TestS3StoreErrors(t *testing.T) {
	client := newFakeS3()
	st := NewS3Store(client, "bucket", "")
	ctx := context.Background()

	client.objects["bucket/corrupt.json"] = []byte(`{"tool":"lasso"}`)
	if _, err := st.Load(ctx, "corrupt"); !errors.HasCode(err, "E102") {
		t.Errorf("expected E102 for invalid stored snapshot, got %v", err)
	}

	client.putErr = stderrors.New("access denied")
	err := st.Save(ctx, "doc", sampleSnapshot())
	if !errors.HasCode(err, "E202") {
		t.Errorf("expected E202, got %v", err)
	}
}

func TestTraced(t *testing.T) {
	testStore(t, Traced(NewMemoryStore()))
}
