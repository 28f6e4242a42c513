package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

type AccountHandler struct {
	log   *logger.Logger
	loc   *Localizer
	plans services.PlanService
	prefs services.PreferenceService
}

func NewAccountHandler(log *logger.Logger, loc *Localizer, plans services.PlanService, prefs services.PreferenceService) *AccountHandler {
	return &AccountHandler{log: log.With("handler", "AccountHandler"), loc: loc, plans: plans, prefs: prefs}
}

// GET /api/me/plan
func (h *AccountHandler) Plan(c *gin.Context) {
	view, err := h.plans.Current(dbcOf(c), userID(c))
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/me/preferences
func (h *AccountHandler) Preferences(c *gin.Context) {
	p, err := h.prefs.Get(dbcOf(c), userID(c))
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}

// PUT /api/me/preferences
func (h *AccountHandler) UpdatePreferences(c *gin.Context) {
	var in services.UpdatePreferenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	p, err := h.prefs.Update(dbcOf(c), userID(c), in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}
