package assets

import (
	"fmt"
	"path"
	"strings"

	"surfacegate/internal/contract"
	"surfacegate/internal/manifest"
)

// Resolver resolves artifact locations against one engine's public asset
// prefix (e.g. /assets/surface).
type Resolver struct {
	PublicPrefix string
}

// NewResolver builds a resolver for the given public asset prefix.
func NewResolver(publicPrefix string) *Resolver {
	return &Resolver{PublicPrefix: "/" + strings.Trim(publicPrefix, "/")}
}

// ResolveURL canonicalizes a single artifact location. The cascade, in
// order: empty input resolves to ""; absolute http(s) URLs and locations
// already rooted at the public asset prefix pass through unchanged; with a
// publicRoot configured the relative value is joined to it; a relative value
// that already begins with the asset-root segment is rooted at /; anything
// else is joined to basePath.
func (r *Resolver) ResolveURL(raw, publicRoot, basePath string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if isAbsoluteURL(trimmed) {
		return trimmed
	}
	if strings.HasPrefix(trimmed, r.PublicPrefix+"/") {
		return trimmed
	}

	cleaned := strings.TrimLeft(trimmed, "/")
	if publicRoot != "" {
		return joinURL(publicRoot, cleaned)
	}
	if strings.HasPrefix(cleaned, strings.TrimPrefix(r.PublicPrefix, "/")+"/") {
		return collapseSlashes("/" + cleaned)
	}
	return joinURL(basePath, cleaned)
}

// Resolved is one artifact with its canonical URL.
type Resolved struct {
	Kind     Kind
	URL      string
	Checksum string
	Size     int64
}

// Derived is the full set of resolved artifacts for a job.
type Derived struct {
	JobID      string
	Subfolder  string
	BasePath   string
	PublicRoot string
	Artifacts  []Resolved
}

// Get returns the resolved artifact of the given kind.
func (d *Derived) Get(kind Kind) (Resolved, bool) {
	for _, artifact := range d.Artifacts {
		if artifact.Kind == kind {
			return artifact, true
		}
	}
	return Resolved{}, false
}

// URLFor returns the resolved URL of the given kind, or "".
func (d *Derived) URLFor(kind Kind) string {
	if artifact, ok := d.Get(kind); ok {
		return artifact.URL
	}
	return ""
}

// Derive resolves every expected artifact of a manifest. The subfolder
// argument, when non-empty, overrides the manifest's own field. Hero and
// mesh resolution are load-bearing: promotion refuses to proceed when
// either is missing, so they are only defaulted when the manifest declares
// a public_root (a declared root implies the engine's standard layout).
// Texture and heightmap are optional and never defaulted.
func (r *Resolver) Derive(man *contract.JobManifest, jobID, subfolder string) (*Derived, error) {
	if man == nil {
		return nil, fmt.Errorf("assets: manifest is required")
	}
	if jobID == "" {
		jobID = man.JobID
	}
	if jobID == "" {
		return nil, fmt.Errorf("assets: job id is required")
	}

	effectiveSubfolder := subfolder
	if effectiveSubfolder == "" {
		effectiveSubfolder = man.Subfolder
	}

	basePath := joinURLSegments(r.PublicPrefix, effectiveSubfolder, jobID)
	publicRoot := strings.TrimRight(strings.TrimSpace(man.PublicRoot), "/")

	derived := &Derived{
		JobID:      jobID,
		Subfolder:  effectiveSubfolder,
		BasePath:   basePath,
		PublicRoot: publicRoot,
	}

	defaultRoot := publicRoot != ""

	derived.add(r.resolveArtifact(man, KindHero, explicitHero(man), defaultPath(defaultRoot, "previews/hero.png"), publicRoot, basePath))
	derived.add(r.resolveArtifact(man, KindSTL, explicitSTL(man), defaultPath(defaultRoot, "enclosure/enclosure.stl"), publicRoot, basePath))
	derived.add(r.resolveArtifact(man, KindTexture, explicitTexture(man), "", publicRoot, basePath))
	derived.add(r.resolveArtifact(man, KindHeightmap, explicitHeightmap(man), "", publicRoot, basePath))
	derived.add(r.resolveArtifact(man, KindManifest, explicitManifest(man), manifest.Filename, publicRoot, basePath))

	return derived, nil
}

func (d *Derived) add(artifact Resolved) {
	if artifact.URL == "" {
		return
	}
	d.Artifacts = append(d.Artifacts, artifact)
}

// resolveArtifact applies the per-artifact cascade: explicit manifest field,
// first matching outputs entry, constructed default.
func (r *Resolver) resolveArtifact(man *contract.JobManifest, kind Kind, explicit, fallback, publicRoot, basePath string) Resolved {
	if explicit != "" {
		return Resolved{Kind: kind, URL: r.ResolveURL(explicit, publicRoot, basePath)}
	}
	if output, ok := findFirst(man.Outputs, kind); ok {
		return Resolved{
			Kind:     kind,
			URL:      r.ResolveURL(output.Location(), publicRoot, basePath),
			Checksum: output.Checksum,
			Size:     int64(output.Size),
		}
	}
	if fallback != "" {
		return Resolved{Kind: kind, URL: r.ResolveURL(fallback, publicRoot, basePath)}
	}
	return Resolved{Kind: kind}
}

func defaultPath(enabled bool, rel string) string {
	if !enabled {
		return ""
	}
	return rel
}

func explicitHero(man *contract.JobManifest) string {
	if man.Public != nil && man.Public.Previews != nil {
		return man.Public.Previews.Hero
	}
	return ""
}

func explicitSTL(man *contract.JobManifest) string {
	if man.Public != nil && man.Public.Enclosure != nil {
		return man.Public.Enclosure.STL
	}
	return ""
}

func explicitTexture(man *contract.JobManifest) string {
	if man.Public != nil && man.Public.Textures != nil {
		return man.Public.Textures.TexturePNG
	}
	return ""
}

func explicitHeightmap(man *contract.JobManifest) string {
	if man.Public == nil {
		return ""
	}
	if man.Public.Textures != nil && man.Public.Textures.HeightmapPNG != "" {
		return man.Public.Textures.HeightmapPNG
	}
	return man.Public.HeightmapURL
}

func explicitManifest(man *contract.JobManifest) string {
	if man.Public != nil {
		return man.Public.JobManifest
	}
	return ""
}

func isAbsoluteURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func joinURL(root, rel string) string {
	root = strings.TrimRight(root, "/")
	rel = strings.TrimLeft(rel, "/")
	if root == "" {
		return collapseSlashes("/" + rel)
	}
	if isAbsoluteURL(root) {
		scheme := root[:strings.Index(root, "://")+3]
		rest := root[len(scheme):]
		return scheme + collapseSlashes(rest+"/"+rel)
	}
	return collapseSlashes(root + "/" + rel)
}

func joinURLSegments(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return "/" + path.Join(cleaned...)
}

func collapseSlashes(value string) string {
	for strings.Contains(value, "//") {
		value = strings.ReplaceAll(value, "//", "/")
	}
	return value
}
