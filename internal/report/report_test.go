package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"

	"github.com/gyeh/chargeflow/internal/model"
)

func sampleSummary() *model.RunSummary {
	return &model.RunSummary{
		RunID:             "run-1",
		TotalRows:         3,
		EncountersCreated: 2,
		PaymentsPosted:    1,
		FailedRows:        1,
		Results: []model.RowResult{
			{RowNumber: 2, PracticeName: "Acme Clinic", PatientID: "100", Results: "Payment #9 Posted."},
		},
	}
}

func TestWriteJSON_Keys(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleSummary()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"run_id", "total_rows", "encounters_created", "payments_posted", "failed_rows", "results"} {
		if _, ok := m[k]; !ok {
			t.Errorf("summary JSON missing %q", k)
		}
	}
	if _, ok := m["CacheHits"]; ok {
		t.Error("cache counters should not be serialized")
	}
}

func TestWriteFile_GzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"summary.json", "summary.json.gz"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, sampleSummary()); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if diff := cmp.Diff(sampleSummary(), got); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", name, diff)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "summary.json.gz"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Error("expected gzip magic bytes")
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, sampleSummary())
	if !strings.Contains(buf.String(), "Payments posted:    1") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestUploader_UploadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "summary.json.gz")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	fp := &fakePutter{}
	u := &Uploader{client: fp, bucket: "bills", prefix: "/runs/"}

	key, err := u.UploadFile(context.Background(), "abc", file)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if key != "runs/abc/summary.json.gz" {
		t.Errorf("key = %q", key)
	}
	if aws.ToString(fp.input.Bucket) != "bills" || aws.ToString(fp.input.ContentType) != "application/gzip" {
		t.Errorf("unexpected input: bucket=%q type=%q", aws.ToString(fp.input.Bucket), aws.ToString(fp.input.ContentType))
	}
	if string(fp.body) != "data" {
		t.Errorf("body = %q", fp.body)
	}
}

func TestUploader_PutError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("denied")
	u := &Uploader{client: &fakePutter{err: boom}, bucket: "b"}

	if _, err := u.UploadFile(context.Background(), "r", file); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
