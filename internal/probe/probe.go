// Package probe samples the console's own host machine with gopsutil.
// It backs the optional poller supplement for backends that report a bare
// service list without host data, and the `status` command's host line.
package probe

import (
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/sublymus/sublyadmin/internal/fleet"
)

// Probe collects host facts and samples. Safe for concurrent use;
// it holds no mutable state.
type Probe struct{}

// New creates a ready-to-use Probe.
func New() *Probe { return &Probe{} }

// Facts returns the static host details: OS platform/distro/release,
// uptime, and CPU manufacturer/brand/cores.
func (p *Probe) Facts() (fleet.HostFacts, error) {
	facts := fleet.HostFacts{}

	info, err := host.Info()
	if err != nil {
		return facts, fmt.Errorf("host info: %w", err)
	}
	facts.OS = fleet.HostOS{
		Platform: info.OS,
		Distro:   info.Platform,
		Release:  info.PlatformVersion,
	}
	if facts.OS.Platform == "" {
		facts.OS.Platform = runtime.GOOS
	}
	facts.Uptime = int64(info.Uptime)

	facts.CPU.Cores = runtime.NumCPU()
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		facts.CPU.Manufacturer = infos[0].VendorID
		facts.CPU.Brand = infos[0].ModelName
		if n, err := cpu.Counts(true); err == nil && n > 0 {
			facts.CPU.Cores = n
		}
	}
	return facts, nil
}

// Sample takes one host measurement: cpu %, memory %, disk % of the root
// filesystem, and the hottest sensor temperature. Individual readings
// that fail are reported as 0 rather than failing the whole sample.
func (p *Probe) Sample() fleet.Sample {
	metrics := map[string]float64{
		fleet.MetricCPU:    0,
		fleet.MetricMemory: 0,
		fleet.MetricDisk:   0,
		fleet.MetricTemp:   0,
	}

	if pcts, err := cpu.Percent(500*time.Millisecond, false); err == nil && len(pcts) > 0 {
		metrics[fleet.MetricCPU] = pcts[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		metrics[fleet.MetricMemory] = vm.UsedPercent
	}
	if usage, err := disk.Usage("/"); err == nil {
		metrics[fleet.MetricDisk] = usage.UsedPercent
	}
	if temps, err := sensors.SensorsTemperatures(); err == nil {
		var max float64
		for _, t := range temps {
			if t.Temperature > max {
				max = t.Temperature
			}
		}
		metrics[fleet.MetricTemp] = max
	}

	return fleet.NewSample(time.Now().UnixMilli(), metrics)
}

// HostStatus assembles facts plus a fresh sample in the snapshot wire
// shape, so the poller can merge a locally probed host exactly like a
// backend-reported one.
func (p *Probe) HostStatus() (*fleet.HostStatus, error) {
	facts, err := p.Facts()
	if err != nil {
		return nil, err
	}
	return &fleet.HostStatus{
		OS:      facts.OS,
		Uptime:  facts.Uptime,
		CPU:     facts.CPU,
		Current: p.Sample(),
	}, nil
}
