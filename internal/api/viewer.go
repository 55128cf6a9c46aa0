package api

import (
	"net/http"
	"strconv"
	"strings"

	"admin-welcome-modal/internal/modal"
)

// Headers carrying the viewer context set by the host application.
const (
	HeaderPrivileged = "X-Viewer-Privileged"
	HeaderRoles      = "X-Viewer-Roles"
)

// ViewerFunc extracts the viewer context from a request.
type ViewerFunc func(r *http.Request) modal.Viewer

// HeaderViewer reads privilege and roles from headers and the screen id from
// the "screen" query parameter.
func HeaderViewer(r *http.Request) modal.Viewer {
	privileged, _ := strconv.ParseBool(r.Header.Get(HeaderPrivileged))
	var roles []string
	for _, role := range strings.Split(r.Header.Get(HeaderRoles), ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return modal.Viewer{
		Privileged: privileged,
		Roles:      roles,
		Screen:     strings.TrimSpace(r.URL.Query().Get("screen")),
	}
}
