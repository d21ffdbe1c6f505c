package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

// placeholderWidget is served when no widget bundle has been deployed next to the API.
const placeholderWidget = `(function(){console.warn("paydash: widget bundle not deployed");})();`

// WidgetAssets serves the embeddable widget bundle from dir. Missing files fall back to a
// no-op script.
func WidgetAssets(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "application/javascript")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write([]byte(placeholderWidget))
	})
}
