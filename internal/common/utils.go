package common

import (
	"path/filepath"
	"strings"
)

// PagePath derives the request path for a page file relative to the pages
// root. "index.html" maps to the root; "services/index.html" and
// "services.html" both map to "/services".
func PagePath(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, ".html")
	rel = strings.TrimSuffix(rel, "/index")
	if rel == "index" || rel == "" || rel == "." {
		return "/"
	}
	return "/" + strings.Trim(rel, "/")
}

// PageURL joins the configured site base URL with a request path.
func PageURL(siteURL, path string) string {
	siteURL = strings.TrimSuffix(siteURL, "/")
	if path == "/" {
		return siteURL + "/"
	}
	return siteURL + path
}
