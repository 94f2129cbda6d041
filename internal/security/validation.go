// Package security validates user-supplied endpoints and file names before
// they are fetched or opened.
package security

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"
)

// URLPolicy relaxes ValidateHTTPURL for trusted setups.
type URLPolicy struct {
	// AllowHTTP permits plain http:// URLs.
	AllowHTTP bool

	// AllowPrivate permits localhost and private network hosts, such as a
	// locally served model.
	AllowPrivate bool
}

// ValidateHTTPURL validates an HTTP(S) URL before it is contacted. By
// default only HTTPS to public hosts is allowed.
func ValidateHTTPURL(urlStr string, policy URLPolicy) error {
	if urlStr == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch {
	case scheme == "https":
	case scheme == "http" && policy.AllowHTTP:
	default:
		return fmt.Errorf("only HTTPS URLs are allowed (got %q)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	host := strings.ToLower(parsed.Hostname())
	if !policy.AllowPrivate && isLocalOrPrivateHost(host) {
		return fmt.Errorf("URL cannot point to local or private hosts: %s", host)
	}

	return nil
}

// ValidateFilePath checks that filePath, joined to baseDir, stays inside
// baseDir.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute file path not allowed: %s", filePath)
	}

	cleanFinal := filepath.Clean(filepath.Join(baseDir, filePath))
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}

	return nil
}

// isLocalOrPrivateHost checks if a hostname is localhost or a private IP.
func isLocalOrPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
