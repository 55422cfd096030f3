package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	activationdomain "github.com/smallbiznis/keygate/internal/activation/domain"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
)

type activateLicenseRequest struct {
	LicenseKey string `json:"license_key"`
	Email      string `json:"email"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	OS         string `json:"os"`
	AppVersion string `json:"app_version"`
}

func (s *Server) ActivateLicense(c *gin.Context) {
	var req activateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resolved, err := s.licenseSvc.ResolveForActivation(c.Request.Context(), licensedomain.ActivateRequest{
		LicenseKey: strings.TrimSpace(req.LicenseKey),
		Email:      strings.TrimSpace(req.Email),
		DeviceID:   strings.TrimSpace(req.DeviceID),
		DeviceName: strings.TrimSpace(req.DeviceName),
		OS:         strings.TrimSpace(req.OS),
		AppVersion: strings.TrimSpace(req.AppVersion),
	})
	if err != nil {
		s.recordActivationResult(err)
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordActivation("activated")
	c.JSON(http.StatusOK, gin.H{"data": resolved})
}

type deactivateLicenseRequest struct {
	InstanceID string `json:"instance_id"`
}

func (s *Server) DeactivateLicense(c *gin.Context) {
	var req deactivateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.InstanceID) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.licenseSvc.Deactivate(c.Request.Context(), strings.TrimSpace(req.InstanceID)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deactivated": true}})
}

func (s *Server) recordActivationResult(err error) {
	var limitErr *activationdomain.ErrLimitExceeded
	switch {
	case errors.As(err, &limitErr):
		s.metrics.RecordActivation("limit_exceeded")
	case errors.Is(err, licensedomain.ErrKeyNotFound),
		errors.Is(err, licensedomain.ErrInvalidKeyFormat),
		errors.Is(err, licensedomain.ErrNotATeamMember):
		s.metrics.RecordActivation("rejected")
	default:
		s.metrics.RecordActivation("error")
	}
}
