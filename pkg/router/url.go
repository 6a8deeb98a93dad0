package router

import (
	"strings"

	"github.com/withgalaxy/nexp/pkg/config"
)

// Endpoint maps a route directory, relative to the source root, to the URL
// it serves. The app directory is dropped and virtual groups are
// transparent: "app" is "/", "app/(group)/stats" is "/stats".
func Endpoint(relativePath, appDir string) string {
	rest := strings.TrimPrefix(relativePath, appDir)
	var sb strings.Builder
	for _, seg := range strings.Split(rest, "/") {
		if seg == "" || config.IsVirtualGroup(seg) {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(seg)
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// StripMount removes a sub-router mount path from url when it is a whole
// leading segment. An exact match leaves "/".
func StripMount(url, mountPath string) string {
	if mountPath == "" || mountPath == "/" {
		return url
	}
	if url == mountPath {
		return "/"
	}
	if strings.HasPrefix(url, mountPath+"/") {
		return strings.TrimPrefix(url, mountPath)
	}
	return url
}
