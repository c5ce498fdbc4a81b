// Package authstore persists per-profile provider credentials as a bare
// JSON object on disk: <profile_root>/auth.json keyed by provider name.
package authstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cuemby/warren-vm/pkg/apperr"
	"github.com/cuemby/warren-vm/pkg/types"
)

// FileName is the credential file within a profile's directory.
const FileName = "auth.json"

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateProfile checks a profile name against the allowed character set
// and rejects any attempt at directory traversal.
func ValidateProfile(profile string) error {
	if profile == "" || !profilePattern.MatchString(profile) || strings.Contains(profile, "..") {
		return apperr.New(apperr.Validation, "invalid profile name %q", profile)
	}
	return nil
}

// ProfilePath returns <authRoot>/<profile>/auth.json after validating
// profile.
func ProfilePath(authRoot, profile string) (string, error) {
	if err := ValidateProfile(profile); err != nil {
		return "", err
	}
	return filepath.Join(authRoot, profile, FileName), nil
}

// Summary returns the redacted provider list at path. A missing file
// yields an empty summary; a non-object JSON root is an error.
func Summary(path string) (types.CredentialSummary, error) {
	m, err := readMap(path)
	if err != nil {
		return types.CredentialSummary{}, err
	}

	entries := make([]types.CredentialSummaryEntry, 0, len(m))
	for provider, raw := range m {
		entries = append(entries, types.CredentialSummaryEntry{
			Provider:  provider,
			EntryType: entryType(raw),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Provider < entries[j].Provider })

	return types.CredentialSummary{Path: path, Entries: entries}, nil
}

// SetAPIKey inserts or overwrites provider's credential as an api_key
// entry. Both provider and key must be non-blank after trimming.
func SetAPIKey(path, provider, key string) error {
	if strings.TrimSpace(provider) == "" {
		return apperr.New(apperr.Validation, "provider is required")
	}
	if strings.TrimSpace(key) == "" {
		return apperr.New(apperr.Validation, "api key is required")
	}

	m, err := readMap(path)
	if err != nil {
		return err
	}
	m[provider] = json.RawMessage(`{"type":"api_key","key":` + mustMarshalString(key) + `}`)
	return writeMap(path, m)
}

// Delete removes provider's credential if present. Idempotent.
func Delete(path, provider string) error {
	m, err := readMap(path)
	if err != nil {
		return err
	}
	delete(m, provider)
	return writeMap(path, m)
}

// Import merges the JSON object at sourcePath into the profile at
// targetPath. Entries from the source overwrite same-named entries already
// present at the target (source-wins); see DESIGN.md for why this
// direction was chosen over target-wins.
func Import(targetPath, sourcePath string) error {
	source, err := readMap(sourcePath)
	if err != nil {
		return err
	}
	target, err := readMap(targetPath)
	if err != nil {
		return err
	}

	for provider, value := range source {
		target[provider] = value
	}

	return writeMap(targetPath, target)
}

func readMap(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, apperr.Wrap(apperr.IO, err, "read %s", path)
	}

	var raw json.RawMessage = data
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, apperr.Wrap(apperr.Parse, err, "parse %s", path)
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, apperr.New(apperr.InvariantViolation, "%s must be a JSON object", path)
	}

	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperr.Wrap(apperr.Parse, err, "parse %s", path)
	}
	return m, nil
}

func writeMap(path string, m map[string]json.RawMessage) error {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return apperr.Wrap(apperr.IO, err, "create %s", parent)
	}

	if len(m) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return apperr.Wrap(apperr.IO, err, "remove %s", path)
		}
		return nil
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.Parse, err, "marshal %s", path)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return apperr.Wrap(apperr.IO, err, "write %s", path)
	}
	// os.WriteFile applies the mode only to newly created files on some
	// platforms; reassert it so overwrites of a pre-existing file stay
	// owner-only too.
	_ = os.Chmod(path, 0o600)

	return nil
}

func entryType(raw json.RawMessage) string {
	var entry struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Type == "" {
		return "unknown"
	}
	return entry.Type
}

func mustMarshalString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
