// Package manifest reads the guest image descriptor (kernel, initrd,
// command line, hypervisor binary) from a runtime directory. The manifest
// is read-only: the supervisor never rewrites manifest.json.
package manifest
