package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
	"github.com/psds-microservice/report-service/internal/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storage int64 = -1003719357983

func TestChannel_SendsBatchWithCaption(t *testing.T) {
	tr := transporttest.New()
	r := &model.Report{ID: "B-004", Photos: []string{"p1", "p2"}}

	refs, err := NewChannel(tr, storage).Archive(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	media := tr.Media(storage)
	require.Len(t, media, 1)
	assert.Equal(t, "Report: B-004", media[0].Items[0].Caption)
	assert.Empty(t, media[0].Items[1].Caption)
	assert.Equal(t, "p2", media[0].Items[1].FileID)
}

func TestChannel_NoMedia(t *testing.T) {
	tr := transporttest.New()
	refs, err := NewChannel(tr, storage).Archive(context.Background(), &model.Report{ID: "B-001"})
	require.NoError(t, err)
	assert.Nil(t, refs)
	assert.Empty(t, tr.Media(storage))
}

func TestChannel_Failure(t *testing.T) {
	tr := transporttest.New()
	tr.MediaErr = func(int64, []transport.MediaItem) error { return errors.New("chat not found") }

	_, err := NewChannel(tr, storage).Archive(context.Background(), &model.Report{ID: "B-001", Videos: []string{"v"}})
	assert.ErrorContains(t, err, "chat not found")
}

type fakeS3 struct {
	puts []*s3.PutObjectInput
	body [][]byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.body = append(f.body, b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3_UploadsEachFile(t *testing.T) {
	tr := transporttest.New()
	tr.Files["v1"] = []byte("mp4-bytes")
	client := &fakeS3{}
	a := NewS3(client, tr, "reports-bucket")
	a.newID = func() string { return "fixed" }

	keys, err := a.Archive(context.Background(), &model.Report{ID: "B-010", Videos: []string{"v1"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"reports/B-010/1-fixed.mp4"}, keys)
	require.Len(t, client.puts, 1)
	assert.Equal(t, "reports-bucket", aws.ToString(client.puts[0].Bucket))
	assert.Equal(t, "video/mp4", aws.ToString(client.puts[0].ContentType))
	assert.Equal(t, "B-010", client.puts[0].Metadata["report_id"])
	assert.Equal(t, []byte("mp4-bytes"), client.body[0])
}

func TestS3_DownloadFailure(t *testing.T) {
	a := NewS3(&fakeS3{}, transporttest.New(), "b")
	_, err := a.Archive(context.Background(), &model.Report{ID: "B-1", Photos: []string{"missing"}})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "reports/B-001/2-abc.jpg", ObjectKey("B-001", 2, "abc", transport.MediaPhoto))
}

func TestNop(t *testing.T) {
	refs, err := Nop{}.Archive(context.Background(), &model.Report{Photos: []string{"p"}})
	assert.NoError(t, err)
	assert.Nil(t, refs)
}
