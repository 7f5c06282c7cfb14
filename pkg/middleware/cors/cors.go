package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AllowedHeaders lists request headers browsers may send cross-origin.
var AllowedHeaders = []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID", "X-User-ID"}

// ExposedHeaders are readable by frontend code; exports need the filename.
var ExposedHeaders = []string{"Content-Disposition", "X-Request-ID"}

type originMatcher struct {
	exact    map[string]struct{}
	suffixes []string
}

// newOriginMatcher accepts exact origins and "scheme://*.domain" patterns,
// the latter covering preview deployments of the frontend.
func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
		if origin == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			m.suffixes = append(m.suffixes, scheme+"://|."+host)
			continue
		}
		m.exact[origin] = struct{}{}
	}
	return m
}

func (m originMatcher) empty() bool {
	return len(m.exact) == 0 && len(m.suffixes) == 0
}

func (m originMatcher) allows(origin string) bool {
	origin = strings.ToLower(strings.TrimRight(origin, "/"))
	if _, ok := m.exact[origin]; ok {
		return true
	}
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, pattern := range m.suffixes {
		wantScheme, suffix, _ := strings.Cut(pattern, "|")
		if scheme+"://" == wantScheme && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// New returns a CORS middleware for the configured origins. An empty list
// allows every origin without credentials.
func New(allowedOrigins []string) gin.HandlerFunc {
	matcher := newOriginMatcher(allowedOrigins)
	allowAll := matcher.empty()
	allowHeaders := strings.Join(AllowedHeaders, ", ")
	exposeHeaders := strings.Join(ExposedHeaders, ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && matcher.allows(origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case c.Request.Method == http.MethodOptions && origin != "":
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
