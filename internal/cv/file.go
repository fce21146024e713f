// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Accepted CV document types, keyed by extension.
var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// oleMagic starts every legacy Word (.doc) file.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const sniffLen = 512

// UploadFile stores r as the actor's CV document, replacing any previous
// one. The extension of name and the sniffed content must agree on PDF,
// DOC, or DOCX. declaredType, when set to something specific, must agree
// too.
func (s *Service) UploadFile(ctx context.Context, actor types.Actor, name, declaredType string, r io.Reader) (types.CVFile, error) {
	name = filepath.Base(strings.TrimSpace(name))
	ext := strings.ToLower(filepath.Ext(name))
	contentType, ok := documentTypes[ext]
	if !ok || name == "." || name == string(filepath.Separator) {
		return types.CVFile{}, invalidFile("only PDF, DOC, and DOCX files are accepted")
	}
	if mt := mediaType(declaredType); mt != "" && mt != "application/octet-stream" && mt != contentType {
		return types.CVFile{}, invalidFile(fmt.Sprintf("content type %s does not match a %s file", mt, ext))
	}

	dir := filepath.Join(s.storage.Dir, "cv", actor.UserID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.CVFile{}, fmt.Errorf("creating upload directory: %w", err)
	}
	rel := filepath.Join("cv", actor.UserID, uuid.NewString()+ext)
	dest := filepath.Join(s.storage.Dir, rel)

	size, err := s.writeDocument(r, dir, dest, ext)
	if err != nil {
		return types.CVFile{}, err
	}

	f := types.CVFile{
		ID:           uuid.NewString(),
		ResearcherID: actor.UserID,
		FileName:     name,
		ContentType:  contentType,
		Size:         size,
		StoragePath:  rel,
	}
	previous, err := s.store.ReplaceCVFile(ctx, &f)
	if err != nil {
		os.Remove(dest)
		return types.CVFile{}, fmt.Errorf("recording CV file: %w", err)
	}
	if previous != nil {
		s.removeStored(previous.StoragePath)
	}
	s.logger.Info("cv file uploaded",
		zap.String("researcher", actor.UserID), zap.String("file", name), zap.Int64("bytes", size))
	return f, nil
}

// writeDocument copies r to dest through a temporary file, enforcing the
// size limit and checking the leading bytes against ext.
func (s *Service) writeDocument(r io.Reader, dir, dest, ext string) (int64, error) {
	limit := s.storage.MaxUploadBytes
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("reading upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return 0, invalidFile("file is empty")
	}
	if !sniffMatches(head, ext) {
		return 0, invalidFile(fmt.Sprintf("file content is not a valid %s document", strings.TrimPrefix(ext, ".")))
	}

	tmp, err := os.CreateTemp(dir, ".upload-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	body := io.MultiReader(bytes.NewReader(head), r)
	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}
	size, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing upload: %w", copyErr)
	case closeErr != nil:
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	case limit > 0 && size > limit:
		os.Remove(tmpPath)
		return 0, invalidFile(fmt.Sprintf("file exceeds %d bytes", limit))
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return size, nil
}

// OpenFile returns the metadata and an open handle for the CV document of
// researcherID. The caller closes the file.
func (s *Service) OpenFile(ctx context.Context, researcherID string) (types.CVFile, *os.File, error) {
	f, err := s.store.GetCVFile(ctx, researcherID)
	if err != nil {
		return types.CVFile{}, nil, err
	}
	fh, err := os.Open(filepath.Join(s.storage.Dir, f.StoragePath))
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("cv file missing on disk", zap.String("researcher", researcherID), zap.String("path", f.StoragePath))
		return types.CVFile{}, nil, apperr.NotFound("CV file")
	}
	if err != nil {
		return types.CVFile{}, nil, fmt.Errorf("opening CV file: %w", err)
	}
	return f, fh, nil
}

// DeleteFile removes the actor's CV document.
func (s *Service) DeleteFile(ctx context.Context, actor types.Actor) error {
	f, err := s.store.DeleteCVFile(ctx, actor.UserID)
	if err != nil {
		return err
	}
	s.removeStored(f.StoragePath)
	s.logger.Info("cv file deleted", zap.String("researcher", actor.UserID))
	return nil
}

func (s *Service) removeStored(rel string) {
	err := os.Remove(filepath.Join(s.storage.Dir, rel))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("removing stored cv file", zap.String("path", rel), zap.Error(err))
	}
}

func sniffMatches(head []byte, ext string) bool {
	switch ext {
	case ".pdf":
		return http.DetectContentType(head) == "application/pdf"
	case ".docx":
		return http.DetectContentType(head) == "application/zip"
	case ".doc":
		return bytes.HasPrefix(head, oleMagic)
	}
	return false
}

func mediaType(ct string) string {
	mt, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func invalidFile(msg string) error {
	var v apperr.Validation
	v.Add("file", msg)
	return v.Err()
}
