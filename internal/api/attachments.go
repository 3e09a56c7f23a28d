package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/alexanderramin/taskdesk/internal/domain"
)

type AttachmentService struct {
	c *Client
}

func (s *AttachmentService) List(ctx context.Context, taskID int64) ([]domain.Attachment, error) {
	var out []domain.Attachment
	if err := s.c.get(ctx, idPath("/tasks/%d/attachments", taskID), nil, &out); err != nil {
		return nil, fmt.Errorf("listing attachments of task %d: %w", taskID, err)
	}
	return out, nil
}

// Upload sends the file at up.Path as multipart form field "file".
func (s *AttachmentService) Upload(ctx context.Context, up domain.AttachmentUpload) (*domain.Attachment, error) {
	if err := domain.Validate(up); err != nil {
		return nil, err
	}
	f, err := os.Open(up.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", up.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", up.Path, err)
	}
	if info.Size() > domain.MaxAttachmentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrInvalid, filepath.Base(up.Path), info.Size(), domain.MaxAttachmentBytes)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(up.Path))
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading %s: %w", up.Path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	var att domain.Attachment
	err = s.c.do(ctx, call{
		method:      http.MethodPost,
		path:        idPath("/tasks/%d/attachments", up.TaskID),
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		out:         &att,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filepath.Base(up.Path), err)
	}
	return &att, nil
}

// Download streams the attachment's bytes into w.
func (s *AttachmentService) Download(ctx context.Context, id int64, w io.Writer) error {
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		path:   idPath("/attachments/%d/download", id),
		accept: "application/octet-stream",
		sink:   w,
	})
	if err != nil {
		return fmt.Errorf("downloading attachment %d: %w", id, err)
	}
	return nil
}

// DownloadTo writes the attachment into dir under its original name and
// returns the written path.
func (s *AttachmentService) DownloadTo(ctx context.Context, att domain.Attachment, dir string) (string, error) {
	name := filepath.Base(att.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = fmt.Sprintf("attachment-%d", att.ID)
		if exts, _ := mime.ExtensionsByType(att.ContentType); len(exts) > 0 {
			name += exts[0]
		}
	}
	return writeFile(filepath.Join(dir, name), func(w io.Writer) error {
		return s.Download(ctx, att.ID, w)
	})
}

func (s *AttachmentService) Delete(ctx context.Context, id int64) error {
	if err := s.c.send(ctx, http.MethodDelete, idPath("/attachments/%d", id), nil, nil); err != nil {
		return fmt.Errorf("deleting attachment %d: %w", id, err)
	}
	return nil
}

// writeFile fills path through a temp file so a failed download leaves
// nothing behind.
func writeFile(path string, fill func(io.Writer) error) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".taskdesk-*")
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
