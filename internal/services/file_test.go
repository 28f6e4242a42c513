package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
)

func TestUploadStoresUnderLecturePrefix(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lecture, file := f.lectureWithFile(userID)

	prefix := userID.String() + "/" + lecture.ID.String() + "/"
	if !strings.HasPrefix(file.StoragePath, prefix) || !strings.HasSuffix(file.StoragePath, "-cells.pdf") {
		t.Fatalf("storage path: got=%q", file.StoragePath)
	}
	if file.MimeType != "application/pdf" || file.URL == "" {
		t.Fatalf("view: got=%+v", file)
	}
	keys, _ := f.bucket.ListKeys(f.dbc.Ctx, prefix)
	if len(keys) != 1 || keys[0] != file.StoragePath {
		t.Fatalf("bucket keys: got=%v", keys)
	}
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lecture, _ := f.lectureWithFile(userID)

	_, err := f.files.Upload(f.dbc, userID, lecture.ID, FileUpload{Name: "notes.txt", Size: 3, Reader: strings.NewReader("abc")})
	if generation.Classify(err) != generation.CodeUnsupported {
		t.Fatalf("txt: got=%v", err)
	}
	_, err = f.files.Upload(f.dbc, userID, lecture.ID, FileUpload{Name: "big.pptx", Size: 11 << 20, Reader: strings.NewReader("x")})
	if ae, ok := apierr.As(err); !ok || ae.Code != "file_too_large" || ae.Status != 413 {
		t.Fatalf("size: got=%v", err)
	}
	if f.bucket.Len() != 1 {
		t.Fatalf("rejected uploads must not be stored: objects=%d", f.bucket.Len())
	}
}

func TestDeleteFileRemovesObject(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lecture, file := f.lectureWithFile(userID)

	if err := f.files.Delete(f.dbc, uuid.New(), file.ID); err == nil {
		t.Fatalf("another user must not delete the file")
	}
	if err := f.files.Delete(f.dbc, userID, file.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.bucket.Len() != 0 {
		t.Fatalf("objects: want=0 got=%d", f.bucket.Len())
	}
	list, err := f.files.List(f.dbc, userID, lecture.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("list: got=%v err=%v", list, err)
	}
}

func TestResolveSourcePrefersExplicitFile(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lecture, first := f.lectureWithFile(userID)
	if _, err := f.files.Upload(f.dbc, userID, lecture.ID, FileUpload{Name: "later.docx", Size: 1, Reader: strings.NewReader("x")}); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	got, err := f.files.ResolveSource(f.dbc, userID, lecture.ID, first.ID)
	if err != nil || got.ID != first.ID {
		t.Fatalf("explicit: got=%v err=%v", got, err)
	}
}
