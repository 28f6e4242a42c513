package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
)

var (
	errSubjectNotFound = apierr.NotFound("not_found", errors.New("subject not found"))
	errLectureNotFound = apierr.NotFound("not_found", errors.New("lecture not found"))
	errFileNotFound    = apierr.NotFound("not_found", errors.New("file not found"))
)

// Rows owned by someone else are reported as missing.

func ownedSubject(dbc dbctx.Context, subjects repos.SubjectRepo, userID, id uuid.UUID) (*types.Subject, error) {
	row, err := subjects.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if row == nil || row.UserID != userID {
		return nil, errSubjectNotFound
	}
	return row, nil
}

func ownedLecture(dbc dbctx.Context, lectures repos.LectureRepo, userID, id uuid.UUID) (*types.Lecture, error) {
	row, err := lectures.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if row == nil || row.UserID != userID {
		return nil, errLectureNotFound
	}
	return row, nil
}

func ownedFile(dbc dbctx.Context, files repos.FileRepo, userID, id uuid.UUID) (*types.File, error) {
	row, err := files.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load file: %w", err)
	}
	if row == nil || row.UserID != userID {
		return nil, errFileNotFound
	}
	return row, nil
}
