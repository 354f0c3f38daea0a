package handlers

import (
	"net/http"
	"time"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/web/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SeedWindow bounds how long after deployment the bootstrap seed can run.
const SeedWindow = 24 * time.Hour

type seedRequestDTO struct {
	Secret string `json:"secret"`
}

// Seed is the canonical one-shot bootstrap endpoint: shared-secret gated,
// idempotent, and rejected outside the post-deployment window. It is an
// operational utility, not part of the steady-state API.
func (ep *Endpoint) Seed(c *gin.Context) {
	secret := c.Query("secret")
	if secret == "" {
		var req seedRequestDTO
		if err := c.ShouldBindJSON(&req); err == nil {
			secret = req.Secret
		}
	}

	if ep.Cfg.SeedSecret == "" || secret != ep.Cfg.SeedSecret {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid seed secret"))
		return
	}

	if time.Since(ep.Cfg.DeployedAt) > SeedWindow {
		c.JSON(http.StatusForbidden, common.NewErrorResponse("seeding window has closed"))
		return
	}

	var result *core.SeedResult
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		var err error
		result, err = core.Seed(db)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}
