package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/clouddrive/internal/client/client"
	"github.com/dmitrijs2005/clouddrive/internal/client/models"
	"github.com/dmitrijs2005/clouddrive/internal/filex"
	"github.com/dmitrijs2005/clouddrive/internal/logging"
)

var (
	// ErrSaveFailed wraps a panic raised by the save action.
	ErrSaveFailed = errors.New("save failed")
	// ErrInvalidFileID is returned for ids that cannot address a single file.
	ErrInvalidFileID = errors.New("invalid file id")
)

// FileService defines the file transfer operations.
type FileService interface {
	Upload(ctx context.Context, name string, data io.Reader) (*models.File, error)
	List(ctx context.Context) ([]models.File, error)
	ListPage(ctx context.Context, skip, limit int) ([]models.File, error)
	// Download fetches the file and saves it under displayName, returning
	// where it was saved. Failures are also reported through the Notifier.
	Download(ctx context.Context, id models.FileID, displayName string) (string, error)
	Delete(ctx context.Context, id models.FileID) (*models.Confirmation, error)
}

type fileService struct {
	api      Requester
	saver    filex.Saver
	notifier Notifier
	logger   logging.Logger
}

func NewFileService(api Requester, saver filex.Saver, notifier Notifier, logger logging.Logger) FileService {
	return &fileService{api: api, saver: saver, notifier: notifier, logger: logger}
}

// Upload sends data as the multipart field "file".
func (s *fileService) Upload(ctx context.Context, name string, data io.Reader) (*models.File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("read upload data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	resp, err := s.api.Do(ctx, client.Request{
		Method:      http.MethodPost,
		Path:        "/files/upload",
		Body:        &buf,
		ContentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	var f models.File
	if err := resp.Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *fileService) List(ctx context.Context) ([]models.File, error) {
	return s.list(ctx, nil)
}

func (s *fileService) ListPage(ctx context.Context, skip, limit int) ([]models.File, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	return s.list(ctx, q)
}

func (s *fileService) list(ctx context.Context, q url.Values) ([]models.File, error) {
	resp, err := s.api.Do(ctx, client.Request{Path: "/files", Query: q})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := []models.File{}
	if err := resp.Decode(&files); err != nil {
		return nil, err
	}
	return files, nil
}

// filePath returns the escaped resource path of id. Empty and dot-segment ids
// are rejected because the joined URL would be cleaned to another endpoint.
func filePath(id models.FileID, suffix string) (string, error) {
	switch id.String() {
	case "", ".", "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidFileID, id.String())
	}
	return "/files/" + url.PathEscape(id.String()) + suffix, nil
}

func (s *fileService) Download(ctx context.Context, id models.FileID, displayName string) (string, error) {
	path, err := filePath(id, "/download")
	if err != nil {
		s.report(ctx, err, id)
		return "", err
	}

	resp, err := s.api.Do(ctx, client.Request{
		Path:         path,
		ResponseType: client.ResponseBinary,
	})
	if err != nil {
		err = fmt.Errorf("download file %s: %w", id, err)
		s.report(ctx, err, id)
		return "", err
	}

	saved, err := s.save(ctx, filex.Blob{Data: resp.Body}, displayName)
	if err != nil {
		err = fmt.Errorf("save file %s: %w", id, err)
		s.report(ctx, err, id)
		return "", err
	}

	s.logger.Info(ctx, "file downloaded", "file_id", id.String(), "path", saved)
	return saved, nil
}

// save stages the blob, saves it and releases the staged reference exactly
// once, whatever the save action does.
func (s *fileService) save(ctx context.Context, blob filex.Blob, name string) (saved string, err error) {
	ref, err := s.saver.Acquire(blob)
	if err != nil {
		return "", fmt.Errorf("stage download: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			saved, err = "", fmt.Errorf("%w: %v", ErrSaveFailed, p)
		}
		if relErr := s.saver.Release(ref); relErr != nil {
			s.logger.Warn(ctx, "failed to release staged download", "error", relErr.Error())
		}
	}()

	return s.saver.Save(ref, name)
}

func (s *fileService) report(ctx context.Context, err error, id models.FileID) {
	s.logger.Error(ctx, "download failed", "file_id", id.String(), "error", err.Error())
	s.notifier.Notify(ctx, "Download failed, please try again.")
}

// Delete removes the file. The service usually answers 204, in which case the
// returned confirmation is empty.
func (s *fileService) Delete(ctx context.Context, id models.FileID) (*models.Confirmation, error) {
	path, err := filePath(id, "")
	if err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, client.Request{
		Method: http.MethodDelete,
		Path:   path,
	})
	if err != nil {
		return nil, fmt.Errorf("delete file %s: %w", id, err)
	}

	var c models.Confirmation
	if err := resp.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
