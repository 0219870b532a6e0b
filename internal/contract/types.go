package contract

// JobStatusEnvelope is one poll's view of a job. Envelopes are ephemeral:
// they are validated, relayed, and discarded, never persisted.
type JobStatusEnvelope struct {
	JobID     string         `json:"job_id"`
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	UpdatedAt string         `json:"updated_at"`
	Progress  *float64       `json:"progress,omitempty"`
	Message   string         `json:"message,omitempty"`
	Result    *JobResult     `json:"result,omitempty"`
	Error     *EnvelopeError `json:"error,omitempty"`
}

// JobResult carries the completion payload of a finished job.
type JobResult struct {
	Public *ManifestPublic `json:"public,omitempty"`
}

// EnvelopeError is the structured error block of a failure envelope.
type EnvelopeError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// JobManifest describes the artifacts a rendering engine produced for a job
// and where they live. Manifests are retrieved on demand and referenced by
// URL; they are not stored as entities.
type JobManifest struct {
	Version    string          `json:"version,omitempty"`
	JobID      string          `json:"job_id"`
	Service    string          `json:"service,omitempty"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
	Status     string          `json:"status,omitempty"`
	Subfolder  string          `json:"subfolder,omitempty"`
	PublicRoot string          `json:"public_root,omitempty"`
	Public     *ManifestPublic `json:"public,omitempty"`
	Outputs    []Output        `json:"outputs,omitempty"`
}

// ManifestPublic is the published-artifact section of a manifest.
type ManifestPublic struct {
	Previews     *Previews  `json:"previews,omitempty"`
	Enclosure    *Enclosure `json:"enclosure,omitempty"`
	Textures     *Textures  `json:"textures,omitempty"`
	JobJSON      string     `json:"job_json,omitempty"`
	JobManifest  string     `json:"job_manifest,omitempty"`
	HeightmapURL string     `json:"heightmap_url,omitempty"`
}

// Previews holds the rendered preview images keyed by camera angle.
type Previews struct {
	Hero string `json:"hero,omitempty"`
	Iso  string `json:"iso,omitempty"`
	Top  string `json:"top,omitempty"`
	Side string `json:"side,omitempty"`
}

// Enclosure holds the printable mesh outputs.
type Enclosure struct {
	STL string `json:"stl,omitempty"`
}

// Textures holds the generated texture maps.
type Textures struct {
	TexturePNG   string `json:"texture_png,omitempty"`
	HeightmapPNG string `json:"heightmap_png,omitempty"`
}

// Output is one entry of a manifest's outputs list. Engines disagree about
// which field carries the artifact location; the first non-empty of URL,
// Path, PublicURL, File wins.
type Output struct {
	Type      string  `json:"type,omitempty"`
	Name      string  `json:"name,omitempty"`
	Label     string  `json:"label,omitempty"`
	URL       string  `json:"url,omitempty"`
	Path      string  `json:"path,omitempty"`
	PublicURL string  `json:"public_url,omitempty"`
	File      string  `json:"file,omitempty"`
	Checksum  string  `json:"checksum,omitempty"`
	Size      float64 `json:"size,omitempty"`
}

// Location returns the artifact location of an output entry.
func (o Output) Location() string {
	for _, candidate := range []string{o.URL, o.Path, o.PublicURL, o.File} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
