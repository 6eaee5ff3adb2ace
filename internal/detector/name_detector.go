package detector

import (
	"context"
	"path/filepath"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// NameLister returns the executable names of all processes visible to the caller.
type NameLister func(ctx context.Context) ([]string, error)

// NameDetector reports whether any process runs with the given executable
// base name. Comparison is case-insensitive and ignores a trailing ".exe",
// so "Sync" matches "Sync.exe" and "sync".
type NameDetector struct {
	Name string
	// List overrides the process table source; nil uses gopsutil.
	List NameLister
}

func (d NameDetector) Alive(ctx context.Context) (bool, error) {
	list := d.List
	if list == nil {
		list = ProcessNames
	}
	names, err := list(ctx)
	if err != nil {
		return false, err
	}
	want := normalizeName(d.Name)
	for _, n := range names {
		if normalizeName(n) == want {
			return true, nil
		}
	}
	return false, nil
}

func (d NameDetector) Describe() string { return "name:" + d.Name }

// ProcessNames enumerates the process table via gopsutil and returns every
// name each process is known by. Processes that exit or deny access while
// being inspected are skipped.
func ProcessNames(ctx context.Context) ([]string, error) {
	procs, err := gopsproc.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(procs))
	for _, p := range procs {
		out = append(out, imageNames(ctx, p)...)
	}
	return out, nil
}

// FindByName returns the processes whose image matches name under the same
// rules as NameDetector.
func FindByName(ctx context.Context, name string) ([]*gopsproc.Process, error) {
	procs, err := gopsproc.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	want := normalizeName(name)
	var out []*gopsproc.Process
	for _, p := range procs {
		for _, n := range imageNames(ctx, p) {
			if normalizeName(n) == want {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// imageNames collects the kernel process name, the executable file and the
// first command line argument. On Linux the kernel name is cut to 15 bytes,
// so long names (often with spaces) only match through the other two.
func imageNames(ctx context.Context, p *gopsproc.Process) []string {
	var names []string
	if n, err := p.NameWithContext(ctx); err == nil && n != "" {
		names = append(names, n)
	}
	if exe, err := p.ExeWithContext(ctx); err == nil && exe != "" {
		names = append(names, exe)
	}
	if args, err := p.CmdlineSliceWithContext(ctx); err == nil && len(args) > 0 && args[0] != "" {
		names = append(names, args[0])
	}
	return names
}

func normalizeName(n string) string {
	n = strings.ToLower(filepath.Base(strings.TrimSpace(n)))
	return strings.TrimSuffix(n, ".exe")
}
