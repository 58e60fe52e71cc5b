// Package preflight verifies that a run can succeed before the pipeline
// starts: external binaries resolve and the workspace/output directories are
// usable. The status command renders these results.
package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"stitch/internal/config"
	"stitch/internal/deps"
)

// Result reports one preflight check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists (creating it if
// absent) and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectories evaluates the configured directories.
func CheckDirectories(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Workspace", cfg.Paths.WorkspaceDir),
		CheckDirectoryAccess("Output", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Logs", cfg.Paths.LogDir),
	}
}

// CheckSystemDeps evaluates the external binaries the pipeline shells out to.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for probing, normalization, and concatenation",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection and duration readback",
		},
	})
}

// Requirement re-exports deps.Requirement for callers assembling custom lists.
type Requirement = deps.Requirement
