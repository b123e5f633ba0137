// Package env adapts the build host: project handle resolution, the
// host-level "allow actions" switch and build properties.
package env

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var projectExts = map[string]bool{
	".csproj":  true,
	".vbproj":  true,
	".fsproj":  true,
	".vcxproj": true,
	".vcproj":  true,
	".proj":    true,
}

// Host is safe for concurrent use.
type Host struct {
	mu    sync.RWMutex
	allow bool
	props map[string]string
}

// NewHost returns a host that allows actions. props may be keyed by "name" or
// "name:project".
func NewHost(props map[string]string) *Host {
	p := make(map[string]string, len(props))
	for k, v := range props {
		p[k] = v
	}
	return &Host{allow: true, props: p}
}

// ProjectName turns a host project handle (a name or a project file path)
// into a stable project name.
func (h *Host) ProjectName(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ""
	}
	base := filepath.Base(filepath.ToSlash(strings.ReplaceAll(handle, `\`, "/")))
	if ext := filepath.Ext(base); projectExts[strings.ToLower(ext)] {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// AllowActions reports whether actions may run. It is false while another
// host instance owns the build.
func (h *Host) AllowActions() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.allow
}

// SetAllowActions flips the switch.
func (h *Host) SetAllowActions(v bool) {
	h.mu.Lock()
	h.allow = v
	h.mu.Unlock()
}

// SetProperty defines a build property; project may be empty.
func (h *Host) SetProperty(name, project, value string) {
	k := name
	if project != "" {
		k += ":" + project
	}
	h.mu.Lock()
	h.props[k] = value
	h.mu.Unlock()
}

// Property resolves a build property: project-scoped first, then global, then
// the process environment.
func (h *Host) Property(name, project string) (string, bool) {
	h.mu.RLock()
	if project != "" {
		if v, ok := h.props[name+":"+project]; ok {
			h.mu.RUnlock()
			return v, true
		}
	}
	v, ok := h.props[name]
	h.mu.RUnlock()
	if ok {
		return v, true
	}
	return os.LookupEnv(name)
}
