// Package assets maps logical image names from the question bank to URLs
// the browser can load.
package assets

import (
	"fmt"
	"path"
	"strings"
)

// Resolver turns an identification question's image reference into a URL.
type Resolver interface {
	ImageURL(ref string) (string, error)
}

// StaticResolver serves images from a static file prefix such as
// /static/images. Absolute http(s) URLs pass through unchanged.
type StaticResolver struct {
	prefix string
}

func NewStaticResolver(prefix string) *StaticResolver {
	return &StaticResolver{prefix: "/" + strings.Trim(prefix, "/")}
}

// Bank files written for the file-based layout reference images as
// static/images/<name>; both that form and a bare name resolve the same way.
var legacyPrefixes = []string{"/static/images/", "static/images/", "images/"}

func (r *StaticResolver) ImageURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty image reference")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	for _, p := range legacyPrefixes {
		if strings.HasPrefix(ref, p) {
			ref = strings.TrimPrefix(ref, p)
			break
		}
	}
	for _, part := range strings.Split(ref, "/") {
		if part == ".." {
			return "", fmt.Errorf("image reference %q escapes the image directory", ref)
		}
	}
	return path.Join(r.prefix, ref), nil
}
