package route

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"portfolio/internal/config"
	"portfolio/internal/handler"
	"portfolio/internal/logger"
	"portfolio/internal/middleware"
	"portfolio/internal/service"
)

// dynamicHTMLHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Clean("/" + r.URL.Path)

		if path == "/" {
			path = "/index"
		}
		path = strings.TrimSuffix(path, ".html")

		filePath := filepath.Join(staticDir, path+".html")

		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers the front end, the gallery socket, the log viewer
// and the auth endpoints, and wraps the mux with the authentication middleware.
func SetupRoutes(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	// Gallery
	mux.HandleFunc("/api/rotor", handler.RotorWebsocketHandler(manager, logger))

	// Log endpoints
	for _, level := range []string{"info", "warning", "error"} {
		file := level + ".log"
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(logger, file))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(logger, file))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /about -> static/about.html
	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDir))

	return middleware.AuthMiddleware(cfg.Password, mux)
}
