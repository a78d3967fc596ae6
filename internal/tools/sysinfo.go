package tools

import (
	"context"
	"net"
	"os"
	"os/user"
	"runtime"

	"golang.org/x/text/language"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// SystemInfoTool is the host information tool name.
const SystemInfoTool = "getSystemInfo"

// SystemInfoKeys are the facts every probe reports.
var SystemInfoKeys = []string{
	"platform",
	"architecture",
	"type",
	"release",
	"uptime",
	"totalMemory",
	"freeMemory",
	"cpus",
	"cpuModel",
	"hostname",
	"username",
	"networkInterfaces",
}

var systemInfoDeclaration = domain.ToolDeclaration{
	Name: SystemInfoTool,
	Description: "Gets detailed information about the operating system the server runs on. " +
		"An information type (e.g. 'hostname', 'platform', 'username') can be given to get only that value.",
	Parameters: []domain.Parameter{
		{
			Name: "infoType",
			Type: domain.ParamTypeString,
			Description: "The specific kind of system information to return (e.g. 'hostname', 'platform', " +
				"'username', 'totalMemory'). Returns everything when omitted.",
		},
	},
}

// HostProbe gathers the full fact mapping. It is called once per tool call.
type HostProbe func(ctx context.Context) (map[string]any, error)

type systemInfoArgs struct {
	InfoType string `json:"infoType"`
}

// SystemInfo returns an executor over probe. An unknown infoType yields a
// localized soft error rather than a failure.
func SystemInfo(probe HostProbe, tag language.Tag) Executor {
	if probe == nil {
		probe = ProbeHost
	}
	p := printer(tag)

	return func(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
		in, err := decodeArgs[systemInfoArgs](args)
		if err != nil {
			return nil, err
		}

		facts, err := probe(ctx)
		if err != nil {
			return nil, err
		}

		if in.InfoType == "" {
			return domain.ToolResult(facts), nil
		}
		if value, ok := facts[in.InfoType]; ok {
			return domain.ToolResult{in.InfoType: value}, nil
		}
		return domain.SoftError(p.Sprintf(msgInfoNotFound, in.InfoType)), nil
	}
}

// ProbeHost reads host facts live.
func ProbeHost(ctx context.Context) (map[string]any, error) {
	k := readKernelFacts()

	return map[string]any{
		"platform":          runtime.GOOS,
		"architecture":      runtime.GOARCH,
		"type":              k.sysname,
		"release":           k.release,
		"uptime":            k.uptimeSeconds,
		"totalMemory":       k.totalMemory,
		"freeMemory":        k.freeMemory,
		"cpus":              runtime.NumCPU(),
		"cpuModel":          readCPUModel(),
		"hostname":          hostname(),
		"username":          username(),
		"networkInterfaces": networkInterfaces(),
	}, nil
}

// kernelFacts holds the values that need a platform-specific syscall.
type kernelFacts struct {
	sysname       string
	release       string
	uptimeSeconds int64
	totalMemory   uint64
	freeMemory    uint64
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}

func username() string {
	u, err := user.Current()
	if err != nil {
		return os.Getenv("USER")
	}
	return u.Username
}

// interfaceAddr mirrors one address entry of a network interface.
type interfaceAddr struct {
	Address  string `json:"address"`
	CIDR     string `json:"cidr"`
	Family   string `json:"family"`
	MAC      string `json:"mac"`
	Internal bool   `json:"internal"`
}

func networkInterfaces() map[string][]interfaceAddr {
	result := make(map[string][]interfaceAddr)

	ifaces, err := net.Interfaces()
	if err != nil {
		return result
	}

	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			family := "IPv6"
			if ipNet.IP.To4() != nil {
				family = "IPv4"
			}
			result[iface.Name] = append(result[iface.Name], interfaceAddr{
				Address:  ipNet.IP.String(),
				CIDR:     ipNet.String(),
				Family:   family,
				MAC:      iface.HardwareAddr.String(),
				Internal: iface.Flags&net.FlagLoopback != 0,
			})
		}
	}
	return result
}
