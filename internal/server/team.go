package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	teamdomain "github.com/smallbiznis/keygate/internal/team/domain"
)

type inviteMemberRequest struct {
	LicenseKey   string `json:"license_key"`
	MemberEmail  string `json:"member_email"`
	Role         string `json:"role"`
	InviterEmail string `json:"inviter_email"`
}

func (s *Server) InviteTeamMember(c *gin.Context) {
	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.licenseSvc.InviteMember(c.Request.Context(), licensedomain.InviteMemberRequest{
		LicenseKey:   strings.TrimSpace(req.LicenseKey),
		MemberEmail:  strings.TrimSpace(req.MemberEmail),
		Role:         teamdomain.Role(strings.TrimSpace(req.Role)),
		InviterEmail: strings.TrimSpace(req.InviterEmail),
	})
	if err != nil {
		s.metrics.RecordInvite("rejected")
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordInvite(string(result.Outcome))
	c.JSON(http.StatusOK, gin.H{"data": result})
}

type removeMemberRequest struct {
	LicenseKey string `json:"license_key"`
	MemberID   string `json:"member_id"`
}

func (s *Server) RemoveTeamMember(c *gin.Context) {
	var req removeMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	memberID, err := snowflake.ParseString(strings.TrimSpace(req.MemberID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.licenseSvc.RemoveMember(c.Request.Context(), licensedomain.RemoveMemberRequest{
		LicenseKey: strings.TrimSpace(req.LicenseKey),
		MemberID:   memberID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": true}})
}

type listMembersRequest struct {
	LicenseKey string `json:"license_key"`
}

func (s *Server) ListTeamMembers(c *gin.Context) {
	var req listMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	members, err := s.licenseSvc.ListMembers(c.Request.Context(), strings.TrimSpace(req.LicenseKey))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}
