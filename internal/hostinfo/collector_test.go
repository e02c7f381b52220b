package hostinfo

import (
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

func stubCollector() *Collector {
	return &Collector{
		NotebookName: "demo.ipynb",
		hostInfo: func() (*host.InfoStat, error) {
			return &host.InfoStat{OS: "linux", Platform: "debian", PlatformVersion: "12", KernelVersion: "6.1.0"}, nil
		},
		cpuCounts: func(bool) (int, error) { return 8, nil },
		virtualMemory: func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 16 << 30, Available: 8 << 30, UsedPercent: 50}, nil
		},
		diskUsage: func(path string) (*disk.UsageStat, error) {
			return &disk.UsageStat{Path: path, Total: 512 << 30, Free: 256 << 30, UsedPercent: 50}, nil
		},
	}
}

func TestCollect(t *testing.T) {
	snap := stubCollector().Collect()

	if snap.Platform != "debian 12" {
		t.Errorf("Platform = %q", snap.Platform)
	}
	if snap.CPUCount != 8 {
		t.Errorf("CPUCount = %d", snap.CPUCount)
	}
	if snap.Memory == nil || snap.Memory.TotalMB != 16*1024 {
		t.Errorf("Memory = %+v", snap.Memory)
	}
	if snap.Disk == nil || snap.Disk.Path != "/" {
		t.Errorf("Disk = %+v", snap.Disk)
	}
	if snap.NotebookName != "demo.ipynb" {
		t.Errorf("NotebookName = %q", snap.NotebookName)
	}
	if snap.Library.Name != LibraryName || snap.Library.Version != LibraryVersion {
		t.Errorf("Library = %+v", snap.Library)
	}
}

func TestCollect_SubCollectorFailureOmitted(t *testing.T) {
	c := stubCollector()
	c.diskUsage = func(string) (*disk.UsageStat, error) {
		return nil, errors.New("statfs failed")
	}

	snap := c.Collect()

	if snap.Disk != nil {
		t.Error("failed disk collection must be omitted, not partial")
	}
	// The rest of the snapshot is intact.
	if snap.Platform != "debian 12" {
		t.Errorf("Platform = %q", snap.Platform)
	}
	if snap.CPUCount != 8 {
		t.Errorf("CPUCount = %d", snap.CPUCount)
	}
	if snap.Memory == nil {
		t.Error("Memory missing")
	}
}

func TestCollect_AllFailuresStillYieldsLibraryBlock(t *testing.T) {
	fail := errors.New("unavailable")
	c := &Collector{
		hostInfo:      func() (*host.InfoStat, error) { return nil, fail },
		cpuCounts:     func(bool) (int, error) { return 0, fail },
		virtualMemory: func() (*mem.VirtualMemoryStat, error) { return nil, fail },
		diskUsage:     func(string) (*disk.UsageStat, error) { return nil, fail },
	}

	snap := c.Collect()
	if snap == nil {
		t.Fatal("Collect returned nil")
	}
	if snap.Library.Name != LibraryName {
		t.Errorf("Library = %+v", snap.Library)
	}
}

func TestLiveCollectorNeverFails(t *testing.T) {
	// Real gopsutil calls; whatever this host supports, Collect must succeed.
	snap := NewCollector("").Collect()
	if snap == nil {
		t.Fatal("Collect returned nil")
	}
}
