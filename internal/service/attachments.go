package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/domain"
	apperrors "github.com/ticketflow/ticketflow/pkg/util/errorutil"
)

// allowedFileTypes pairs each permitted extension with the mime types it may
// arrive under. An empty incoming mime type passes; anything else must match.
var allowedFileTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".txt":  {"text/plain"},
	".zip":  {"application/zip", "application/x-zip-compressed"},
	".rar":  {"application/x-rar-compressed", "application/vnd.rar"},
}

// UploadFile is one file of an incoming batch.
type UploadFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// UploadIssue describes a single file that was rejected from a batch.
type UploadIssue struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// UploadAttachments validates and stores a batch of files. The count cap is
// enforced against the batch plus whatever the target ticket already holds
// and fails the whole batch before any file reaches storage. Per-file size
// and type violations only exclude that file, reported in the issue list.
func (s *TicketService) UploadAttachments(ctx context.Context, user *domain.User, currentCount int, files []UploadFile) ([]domain.Attachment, []UploadIssue, error) {
	if len(files) == 0 {
		return nil, nil, apperrors.NewValidationError("No files uploaded", nil)
	}
	if currentCount+len(files) > s.upload.MaxFiles {
		return nil, nil, apperrors.NewValidationError(
			fmt.Sprintf("attachment limit exceeded: at most %d files per ticket", s.upload.MaxFiles),
			map[string]any{"maxFiles": s.upload.MaxFiles, "current": currentCount, "batch": len(files)},
		)
	}

	var (
		stored []domain.Attachment
		issues []UploadIssue
	)
	for _, file := range files {
		if reason := s.validateFile(file); reason != "" {
			issues = append(issues, UploadIssue{FileName: file.Name, Reason: reason})
			continue
		}

		obj, err := s.storage.Store(ctx, file.Data, file.Name, file.MimeType, user.ID)
		if err != nil {
			s.logger.Warn("attachment upload failed",
				zap.String("file", file.Name), zap.Error(err))
			issues = append(issues, UploadIssue{FileName: file.Name, Reason: "upload failed"})
			continue
		}

		stored = append(stored, domain.Attachment{
			ID:         uuid.NewString(),
			Name:       file.Name,
			SizeBytes:  obj.SizeBytes,
			StorageKey: obj.Key,
			Location:   obj.Location,
			MimeType:   file.MimeType,
			UploadedAt: time.Now().UTC(),
			UploadedBy: user.ID,
		})
	}

	return stored, issues, nil
}

func (s *TicketService) validateFile(file UploadFile) string {
	if int64(len(file.Data)) > s.upload.MaxFileSizeByte {
		return fmt.Sprintf("file exceeds %d bytes", s.upload.MaxFileSizeByte)
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	mimes, ok := allowedFileTypes[ext]
	if !ok {
		return "file type not allowed"
	}
	if file.MimeType == "" {
		return ""
	}
	for _, mime := range mimes {
		if strings.EqualFold(file.MimeType, mime) {
			return ""
		}
	}
	return "file type not allowed"
}

// DownloadURL issues a presigned download URL for a stored attachment key.
func (s *TicketService) DownloadURL(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", apperrors.NewNotFound("file", nil)
	}
	url, err := s.storage.SignedURL(ctx, key, s.signedURLTTL)
	if err != nil {
		s.logger.Warn("signed url generation failed", zap.String("key", key), zap.Error(err))
		return "", apperrors.NewNotFound("file", nil)
	}
	return url, nil
}

// reconcileAttachments applies an incoming delete/add request to a ticket's
// attachment list. Deletions remove the object from storage best-effort (a
// storage failure is logged and the descriptor is removed anyway); ids not
// present are ignored. Retained attachments keep their original order, with
// new ones appended in submitted order.
func (s *TicketService) reconcileAttachments(ctx context.Context, current []domain.Attachment, toDelete []string, toAdd []domain.Attachment) []domain.Attachment {
	deleteSet := make(map[string]struct{}, len(toDelete))
	for _, id := range toDelete {
		deleteSet[id] = struct{}{}
	}

	remaining := make([]domain.Attachment, 0, len(current)+len(toAdd))
	for _, att := range current {
		if _, drop := deleteSet[att.ID]; !drop {
			remaining = append(remaining, att)
			continue
		}
		if att.StorageKey != "" {
			if err := s.storage.Delete(ctx, att.StorageKey); err != nil {
				s.logger.Warn("failed to delete attachment from storage",
					zap.String("attachment_id", att.ID),
					zap.String("key", att.StorageKey),
					zap.Error(err))
			}
		}
	}

	return append(remaining, toAdd...)
}
