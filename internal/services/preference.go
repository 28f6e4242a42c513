package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/domain/user"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type UpdatePreferenceInput struct {
	Language *string `json:"language" validate:"omitempty,oneof=en es fr"`
	Theme    *string `json:"theme" validate:"omitempty,oneof=light dark system"`
}

type PreferenceService interface {
	// Get returns the stored preferences or the defaults (en, system).
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreference, error)
	Update(dbc dbctx.Context, userID uuid.UUID, in UpdatePreferenceInput) (*types.UserPreference, error)
}

type preferenceService struct {
	log   *logger.Logger
	prefs repos.UserPreferenceRepo
}

func NewPreferenceService(baseLog *logger.Logger, prefs repos.UserPreferenceRepo) PreferenceService {
	return &preferenceService{log: baseLog.With("service", "PreferenceService"), prefs: prefs}
}

func (s *preferenceService) Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreference, error) {
	row, err := s.prefs.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if row == nil {
		row = &types.UserPreference{UserID: userID, Language: "en", Theme: user.ThemeSystem}
	}
	return row, nil
}

func (s *preferenceService) Update(dbc dbctx.Context, userID uuid.UUID, in UpdatePreferenceInput) (*types.UserPreference, error) {
	if in.Language != nil {
		lang := strings.ToLower(strings.TrimSpace(*in.Language))
		in.Language = &lang
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	row, err := s.Get(dbc, userID)
	if err != nil {
		return nil, err
	}
	if in.Language != nil {
		row.Language = *in.Language
	}
	if in.Theme != nil {
		row.Theme = *in.Theme
	}
	if err := s.prefs.Upsert(dbc, row); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	s.log.Debug("preferences updated", "user_id", userID, "language", row.Language, "theme", row.Theme)
	return row, nil
}
