// Package identity derives a canonical vault/item name from a
// version-control remote and the location of the env file inside the
// repository. The derivation is deterministic so repeated runs and
// different machines agree on naming without manual configuration.
package identity

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// DefaultVault is the canonical vault that holds migrated project
// secrets when no override is configured.
const DefaultVault = "gh-projects"

// Identity is the normalized form of a remote plus a repo-relative
// file location.
type Identity struct {
	Host    string
	Owner   string
	Repo    string
	Subpath string // "root" when the file lives at the repository root
	Suffix  string // qualifier beyond the base ".env" filename, if any
}

// Key addresses one item in one vault.
type Key struct {
	Vault string
	Item  string
}

// InvalidRemoteError reports a remote URL that does not match any
// supported host/owner/repo pattern.
type InvalidRemoteError struct {
	URL string
}

func (e *InvalidRemoteError) Error() string {
	return fmt.Sprintf("remote URL %q does not look like host/owner/repo", e.URL)
}

var scpLike = regexp.MustCompile(`^(?:[A-Za-z0-9._-]+@)?([A-Za-z0-9._-]+):(.+)$`)

// ParseRemote normalizes a git remote URL into host, owner and repo.
// Both URL-style (https://, ssh://, git://) and SCP-style
// (git@host:owner/repo.git) syntaxes are recognized.
func ParseRemote(remote string) (host, owner, repo string, err error) {
	raw := strings.TrimSpace(remote)
	rest := raw

	switch {
	case strings.Contains(rest, "://"):
		rest = rest[strings.Index(rest, "://")+3:]
		if at := strings.Index(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		if slash := strings.Index(rest, "/"); slash >= 0 {
			// Drop a non-standard port from the host part.
			hostPart := rest[:slash]
			if colon := strings.Index(hostPart, ":"); colon >= 0 {
				rest = hostPart[:colon] + rest[slash:]
			}
		}
	case scpLike.MatchString(rest):
		m := scpLike.FindStringSubmatch(rest)
		rest = m[1] + "/" + m[2]
	default:
		return "", "", "", &InvalidRemoteError{URL: remote}
	}

	rest = strings.TrimSuffix(rest, "/")
	parts := strings.Split(rest, "/")
	if len(parts) < 3 {
		return "", "", "", &InvalidRemoteError{URL: remote}
	}

	host = parts[0]
	owner = parts[1]
	repo = strings.TrimSuffix(parts[len(parts)-1], ".git")
	// Nested group paths (host/group/subgroup/repo) keep only the
	// leading owner segment; the repo name stays unambiguous because
	// the subpath disambiguates files, not remotes.
	if host == "" || owner == "" || repo == "" {
		return "", "", "", &InvalidRemoteError{URL: remote}
	}
	return host, owner, repo, nil
}

// Resolve derives the identity for an env file. relPath is the file's
// path relative to the repository root; empty means the repository
// root itself.
func Resolve(remote, relPath string) (Identity, error) {
	host, owner, repo, err := ParseRemote(remote)
	if err != nil {
		return Identity{}, err
	}

	dir, file := path.Split(path.Clean(strings.TrimPrefix(relPath, "/")))
	if relPath == "" || relPath == "." {
		dir, file = "", ""
	}

	return Identity{
		Host:    host,
		Owner:   owner,
		Repo:    repo,
		Subpath: subpathOf(dir),
		Suffix:  suffixOf(file),
	}, nil
}

// subpathOf joins the intermediate directory segments into the
// sanitized subpath component, collapsing to "root" when the file sits
// at the repository root.
func subpathOf(dir string) string {
	var segs []string
	for _, s := range strings.Split(dir, "/") {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, Sanitize(s))
	}
	if len(segs) == 0 {
		return "root"
	}
	return strings.Join(segs, "-")
}

// suffixOf extracts the qualifier beyond the base ".env" name, e.g.
// ".env.production" yields "production". Plain ".env" (or any name
// ending in ".env") has no suffix.
func suffixOf(file string) string {
	if file == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(file, ".env."); ok {
		return Sanitize(rest)
	}
	if idx := strings.Index(file, ".env."); idx >= 0 {
		return Sanitize(file[idx+len(".env."):])
	}
	return ""
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Sanitize lowercases a path segment and replaces runs of
// non-alphanumeric characters with a single dash.
func Sanitize(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// Key builds the deterministic vault/item key. An empty vault selects
// DefaultVault.
func (id Identity) Key(vault string) Key {
	if vault == "" {
		vault = DefaultVault
	}
	item := fmt.Sprintf("%s__%s__%s", Sanitize(id.Owner), Sanitize(id.Repo), id.Subpath)
	if id.Suffix != "" {
		item += "__" + id.Suffix
	}
	return Key{Vault: vault, Item: item}
}
