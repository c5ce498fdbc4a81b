// Package types holds the wire-format data structures shared by the
// manifest loader, task store, credential store, preview facade, and VM
// supervisor: the JSON shapes that round-trip to disk or to the shell.
package types

// Manifest describes the immutable artifacts of a guest image. It is read
// from <runtime_dir>/manifest.json and never mutated by the supervisor.
type Manifest struct {
	Kernel  string `json:"kernel"`
	Initrd  string `json:"initrd"`
	Cmdline string `json:"cmdline,omitempty"`
	Qemu    string `json:"qemu,omitempty"`
}

// DefaultCmdline is used when a manifest omits cmdline.
const DefaultCmdline = "quiet console=ttyAMA0"

// TaskMount describes one guest-visible bind exposed alongside the task's
// working folder.
type TaskMount struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
}

// Task is the persisted record for one agent task, stored pretty-printed
// as <tasks_root>/<id>/task.json.
type Task struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Status            string      `json:"status"`
	CreatedAt         string      `json:"created_at"`
	UpdatedAt         string      `json:"updated_at"`
	SessionFile       string      `json:"session_file,omitempty"`
	WorkingFolder     string      `json:"working_folder,omitempty"`
	Mounts            []TaskMount `json:"mounts,omitempty"`
	Provider          string      `json:"provider,omitempty"`
	Model             string      `json:"model,omitempty"`
	ThinkingLevel     string      `json:"thinking_level,omitempty"`
	ConnectorsEnabled []string    `json:"connectors_enabled,omitempty"`
}

// CredentialEntry is one provider's credential, stored as a bare JSON
// object keyed by provider inside a profile's auth.json. Type is the
// discriminator; only api_key is currently recognized, but unknown types
// round-trip unexamined so a future entry kind does not corrupt the file.
type CredentialEntry struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

// CredentialSummaryEntry is the redacted view returned by Summary: the
// secret itself is never included.
type CredentialSummaryEntry struct {
	Provider  string `json:"provider"`
	EntryType string `json:"entry_type"`
}

// CredentialSummary is the full redacted view of a profile's auth.json.
type CredentialSummary struct {
	Path    string                   `json:"path"`
	Entries []CredentialSummaryEntry `json:"entries"`
}

// PreviewFile is one entry in a preview listing.
type PreviewFile struct {
	RelativePath string `json:"relative_path"`
	SizeBytes    int64  `json:"size_bytes"`
	ModifiedUnix int64  `json:"modified_unix_secs"`
}

// PreviewListing is the result of a working-folder listing.
type PreviewListing struct {
	Root      string        `json:"root"`
	Files     []PreviewFile `json:"files"`
	Truncated bool          `json:"truncated"`
}

// PreviewRead is the result of reading a single file from a working folder.
type PreviewRead struct {
	Path      string `json:"path"`
	MimeType  string `json:"mime_type"`
	Encoding  string `json:"encoding"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	Size      int64  `json:"size"`
}

// Status is the VM supervisor's session phase.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusReady    Status = "ready"
)

// StatusResponse is returned by Status and Start.
type StatusResponse struct {
	Status  Status `json:"status"`
	RpcAddr string `json:"rpc_addr,omitempty"`
	LogPath string `json:"log_path,omitempty"`
}
