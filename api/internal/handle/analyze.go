package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"analyze-skin/api/internal/skin"
)

const opAnalyzeSkin = "handle.analyze_skin"

// AnalyzeSkin handles POST {"image": "data:<mime>;base64,<payload>"} and
// answers {"skinType": "..."}.
func (h *Handle) AnalyzeSkin(c *gin.Context) {
	// A missing key fails every POST, whatever the body looks like.
	if err := h.svc.Ready(); err != nil {
		h.fail(c, err)
		return
	}

	var req skin.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := skin.ValidationError(opAnalyzeSkin, skin.MsgInvalidJSON)
		verr.Cause = err
		h.fail(c, verr)
		return
	}

	out, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
