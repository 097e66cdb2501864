package service

import (
	"context"
	"strings"

	"cleaning-booking-be/internal/config"
	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/pkg/serverutils"

	"golang.org/x/crypto/bcrypt"
)

const defaultLogsLimit = 50

type IAdminService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetLogs(ctx context.Context, req *dto.LogListRequest) ([]*dto.LogListResponse, error)
}

type adminService struct {
	cfg    config.AdminConfig
	logger logger.ILogger
}

func NewAdminService(cfg config.AdminConfig, logger logger.ILogger) IAdminService {
	return &adminService{cfg: cfg, logger: logger}
}

func (s *adminService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.cfg.Email == "" || s.cfg.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), s.cfg.Email) {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("ADMIN", "Failed admin login", map[string]interface{}{"email": req.Email})
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := serverutils.IssueToken(s.cfg.JWTSecret, s.cfg.Email, serverutils.RoleAdmin, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ADMIN", "Admin logged in", map[string]interface{}{"email": s.cfg.Email})
	return &dto.LoginResponse{AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *adminService) GetLogs(ctx context.Context, req *dto.LogListRequest) ([]*dto.LogListResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultLogsLimit
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	entries, err := s.logger.GetLogs(logger.LogQuery{
		Level:  strings.ToUpper(req.Level),
		Module: strings.ToUpper(req.Module),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, &dto.LogListResponse{
			Id:        e.Id,
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Module:    e.Module,
			Message:   e.Message,
			Details:   e.Details,
		})
	}
	return res, nil
}
