package session

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const (
	FlashCookieName = "jobboard_flash"

	pendingFlashesKey = "session.flashes"
	flashesReadKey    = "session.flashes_read"
)

// Flash categories, named after the alert styles of the templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AddFlash queues a notice for the next page the client renders.
func (m *Manager) AddFlash(c *gin.Context, category, message string) {
	pending := append(m.pending(c), Flash{Category: category, Message: message})
	c.Set(pendingFlashesKey, pending)
	m.setCookie(c, FlashCookieName, encodeFlashes(pending), 0)
}

// Flashes returns the notices addressed to this request and removes them.
func (m *Manager) Flashes(c *gin.Context) []Flash {
	var flashes []Flash
	if _, read := c.Get(flashesReadKey); !read {
		if raw, err := c.Cookie(FlashCookieName); err == nil && raw != "" {
			flashes = decodeFlashes(raw)
		}
	}
	flashes = append(flashes, m.pending(c)...)

	c.Set(flashesReadKey, true)
	c.Set(pendingFlashesKey, []Flash(nil))
	if len(flashes) > 0 {
		m.setCookie(c, FlashCookieName, "", -1)
	}
	return flashes
}

func (m *Manager) pending(c *gin.Context) []Flash {
	if v, ok := c.Get(pendingFlashesKey); ok {
		if flashes, ok := v.([]Flash); ok {
			return flashes
		}
	}
	return nil
}

func encodeFlashes(flashes []Flash) string {
	data, err := json.Marshal(flashes)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// decodeFlashes ignores cookies it cannot read; a lost notice is harmless.
func decodeFlashes(raw string) []Flash {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
