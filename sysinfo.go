package mipbench

import (
	"fmt"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// GetSysInfo describes the machine the batch runs on. Facts that cannot be
// read are left empty.
func GetSysInfo() SysInfo {
	var info SysInfo
	if hostStat, err := host.Info(); err == nil {
		info.Platform = fmt.Sprintf("%s %s", hostStat.Platform, hostStat.PlatformVersion)
	}
	if cpuStat, err := cpu.Info(); err == nil && len(cpuStat) > 0 {
		info.CPU = cpuStat[0].ModelName
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.RAM = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	}
	return info
}

func (s SysInfo) String() string {
	return fmt.Sprintf("platform=%q cpu=%q ram=%q", s.Platform, s.CPU, s.RAM)
}
