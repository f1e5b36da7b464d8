package preview

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portalctl/internal/system"
	appver "portalctl/internal/version"
)

// Server serves an exported site the way a single-shell host would:
// real files first, then route.html, then the base shell.
type Server struct {
	Addr string
	Root string
	// Base is the shell served for unknown routes, default index.html.
	Base string
}

func (s *Server) base() string {
	if strings.TrimSpace(s.Base) == "" {
		return "index.html"
	}
	return s.Base
}

// Handler builds the gin engine without binding a listener.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	api := r.Group("/_portalctl")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": appver.AppVersion})
	})

	site := os.DirFS(s.Root)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		name, ok := resolve(site, c.Request.URL.Path, s.base())
		if !ok {
			c.String(http.StatusNotFound, "not found")
			return
		}
		b, err := fs.ReadFile(site, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				c.String(http.StatusNotFound, "%s not found in %s", name, s.Root)
				return
			}
			c.Status(http.StatusInternalServerError)
			return
		}
		ct := mime.TypeByExtension(path.Ext(name))
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.Data(http.StatusOK, ct, b)
	})
	return r
}

// resolve maps a request path to a file in site. Missing assets (paths with
// a non-html extension) are not rewritten to the shell.
func resolve(site fs.FS, urlPath, base string) (string, bool) {
	p := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if p == "" {
		return base, true
	}
	if !fs.ValidPath(p) {
		return "", false
	}
	candidates := []string{p, p + ".html", path.Join(p, "index.html")}
	for _, cand := range candidates {
		if st, err := fs.Stat(site, cand); err == nil && !st.IsDir() {
			return cand, true
		}
	}
	if ext := path.Ext(p); ext != "" && ext != ".html" {
		return "", false
	}
	return base, true
}

// Start listens on Addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	system.Logger.Info("preview server listening", "addr", s.Addr, "root", s.Root)
	return srv.ListenAndServe()
}
