package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	checkoutdomain "github.com/smallbiznis/keygate/internal/checkout/domain"
	"github.com/smallbiznis/keygate/internal/plan"
)

type checkoutRequest struct {
	Email      string `json:"email"`
	SeatCount  int    `json:"seat_count"`
	TeamName   string `json:"team_name"`
	SuccessURL string `json:"success_url"`
}

func (s *Server) CreateProCheckout(c *gin.Context) {
	s.createCheckout(c, plan.Pro)
}

func (s *Server) CreateTeamCheckout(c *gin.Context) {
	s.createCheckout(c, plan.Team)
}

func (s *Server) createCheckout(c *gin.Context, planType plan.Type) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	session, err := s.checkoutSvc.CreateSession(c.Request.Context(), checkoutdomain.SessionRequest{
		Plan:       planType,
		SeatCount:  req.SeatCount,
		Email:      strings.TrimSpace(req.Email),
		TeamName:   strings.TrimSpace(req.TeamName),
		SuccessURL: strings.TrimSpace(req.SuccessURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": session})
}
