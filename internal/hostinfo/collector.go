// Package hostinfo captures a best-effort snapshot of the invoking machine:
// platform, CPU count, memory and root-disk utilization, plus a constant
// library identity block. Sub-collections that fail are omitted from the
// snapshot rather than aborting it.
package hostinfo

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	// LibraryName and LibraryVersion identify the instrumentation client
	// itself in outbound context blocks. Constant per release.
	LibraryName    = "nbpulse"
	LibraryVersion = "0.3.0"
	LibraryBuild   = "go"
)

// Snapshot describes the environment a notebook session runs in.
type Snapshot struct {
	Platform      string      `json:"platform,omitempty"`
	OS            string      `json:"os,omitempty"`
	KernelVersion string      `json:"kernel_version,omitempty"`
	CPUCount      int         `json:"cpu_count,omitempty"`
	Memory        *MemoryStat `json:"memory,omitempty"`
	Disk          *DiskStat   `json:"disk,omitempty"`
	NotebookName  string      `json:"notebook_name,omitempty"`
	Library       Library     `json:"library"`
}

// MemoryStat is a point-in-time view of virtual memory, in megabytes.
type MemoryStat struct {
	TotalMB     uint64  `json:"total_mb"`
	AvailableMB uint64  `json:"available_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// DiskStat is a point-in-time view of the root filesystem, in megabytes.
type DiskStat struct {
	Path        string  `json:"path"`
	TotalMB     uint64  `json:"total_mb"`
	FreeMB      uint64  `json:"free_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// Library identifies the instrumentation client build.
type Library struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
}

// Collector gathers snapshots. The sub-collector funcs default to gopsutil
// and exist as fields so tests can make individual collections fail.
type Collector struct {
	NotebookName string

	hostInfo      func() (*host.InfoStat, error)
	cpuCounts     func(logical bool) (int, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	diskUsage     func(path string) (*disk.UsageStat, error)
}

// NewCollector returns a Collector reading live host data via gopsutil.
func NewCollector(notebookName string) *Collector {
	return &Collector{
		NotebookName:  notebookName,
		hostInfo:      host.Info,
		cpuCounts:     cpu.Counts,
		virtualMemory: mem.VirtualMemory,
		diskUsage:     disk.Usage,
	}
}

// Collect returns a snapshot of the current machine. Each sub-collection is
// independent: a failing one leaves its field zero and the rest intact.
// Collect never returns nil and never fails.
func (c *Collector) Collect() *Snapshot {
	snap := &Snapshot{
		NotebookName: c.NotebookName,
		Library: Library{
			Name:    LibraryName,
			Version: LibraryVersion,
			Build:   LibraryBuild,
		},
	}
	if info, err := c.hostInfo(); err == nil && info != nil {
		snap.Platform = platformString(info)
		snap.OS = info.OS
		snap.KernelVersion = info.KernelVersion
	}
	if n, err := c.cpuCounts(true); err == nil {
		snap.CPUCount = n
	}
	if vm, err := c.virtualMemory(); err == nil && vm != nil {
		snap.Memory = &MemoryStat{
			TotalMB:     vm.Total / 1024 / 1024,
			AvailableMB: vm.Available / 1024 / 1024,
			UsedPercent: vm.UsedPercent,
		}
	}
	if du, err := c.diskUsage("/"); err == nil && du != nil {
		snap.Disk = &DiskStat{
			Path:        du.Path,
			TotalMB:     du.Total / 1024 / 1024,
			FreeMB:      du.Free / 1024 / 1024,
			UsedPercent: du.UsedPercent,
		}
	}
	return snap
}

func platformString(info *host.InfoStat) string {
	if info.Platform == "" {
		return info.OS
	}
	if info.PlatformVersion == "" {
		return info.Platform
	}
	return fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
}
