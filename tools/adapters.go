package tools

import (
	"fmt"
	"strings"
)

func builtinAdapters() map[string]Adapter {
	return map[string]Adapter{
		"nmap_scan.sim":            networkEnumerator,
		"masscan_scan.sim":         networkBurst,
		"autorecon_scan.sim":       reconOrchestrator,
		"gobuster_scan.sim":        webDirbust,
		"nuclei_scan.sim":          webTemplates,
		"sqlmap_scan.sim":          sqlInjection,
		"prowler_assess.sim":       cloudProwler,
		"scout_suite_audit.sim":    cloudMultiscan,
		"ghidra_analyze.sim":       binaryPipeline,
		"pwntools_ctf.sim":         ctfHelper,
		"osint_profile_mapper.sim": osintMapper,
	}
}

func ports() []map[string]any {
	return []map[string]any{
		{"port": 22, "service": "ssh", "state": "open"},
		{"port": 80, "service": "http", "state": "open"},
		{"port": 443, "service": "https", "state": "open"},
	}
}

func networkEnumerator(p map[string]any) map[string]any {
	return map[string]any{
		"mode":      stringParam(p, "intensity", "medium"),
		"targets":   listParam(p, "targets"),
		"openPorts": ports(),
	}
}

func networkBurst(p map[string]any) map[string]any {
	rate, ok := p["rate"]
	if !ok {
		rate = 1000
	}
	return map[string]any{
		"scannedHosts": len(listParam(p, "targets")),
		"rate":         rate,
		"findings":     ports()[:2],
	}
}

func reconOrchestrator(p map[string]any) map[string]any {
	profiles := listParam(p, "profiles")
	if len(profiles) == 0 {
		profiles = []any{"default"}
	}
	return map[string]any{
		"profiles": profiles,
		"services": []map[string]any{
			{"host": "10.0.0.5", "service": "http", "confidence": 0.92},
			{"host": "10.0.0.8", "service": "ssh", "confidence": 0.84},
		},
	}
}

func webDirbust(p map[string]any) map[string]any {
	base := stringParam(p, "url", "https://example.com")
	return map[string]any{
		"base":  base,
		"paths": []string{base + "/admin", base + "/backup.zip"},
	}
}

func webTemplates(p map[string]any) map[string]any {
	return map[string]any{
		"targets": listParam(p, "targets"),
		"vulnerabilities": []map[string]any{
			{"id": "CVE-2023-1234", "severity": "high", "description": "Template-based RCE"},
			{"id": "CVE-2022-9876", "severity": "medium", "description": "Exposure of admin endpoint"},
		},
	}
}

func sqlInjection(p map[string]any) map[string]any {
	return map[string]any{
		"target":   stringParam(p, "target", "https://example.com/login"),
		"payloads": []string{"' OR 1=1 --", "UNION SELECT null"},
		"risk":     stringParam(p, "risk", "1"),
	}
}

func cloudProwler(p map[string]any) map[string]any {
	regions := listParam(p, "regions")
	if len(regions) == 0 {
		regions = []any{"us-east-1"}
	}
	return map[string]any{
		"accounts": listParam(p, "accountIds"),
		"regions":  regions,
		"findings": []map[string]any{
			{"check": "iam-admin-check", "status": "fail", "severity": "high"},
			{"check": "s3-public-buckets", "status": "warn", "severity": "medium"},
		},
	}
}

func cloudMultiscan(p map[string]any) map[string]any {
	providers := listParam(p, "providers")
	if len(providers) == 0 {
		providers = []any{"aws", "gcp"}
	}
	alerts := make([]map[string]any, 0, len(providers))
	for _, provider := range providers {
		alerts = append(alerts, map[string]any{
			"provider": provider,
			"alert":    "Excessive permissions",
			"severity": "high",
		})
	}
	return map[string]any{"providers": providers, "alerts": alerts}
}

func binaryPipeline(p map[string]any) map[string]any {
	return map[string]any{
		"binary":        stringParam(p, "binaryPath", "sample.bin"),
		"analysisLevel": stringParam(p, "analysisLevel", "basic"),
		"functions": []map[string]any{
			{"name": "validate_user", "risk": "medium"},
			{"name": "process_credentials", "risk": "high"},
		},
	}
}

func ctfHelper(p map[string]any) map[string]any {
	return map[string]any{
		"challenge":    stringParam(p, "challenge", "rop"),
		"architecture": stringParam(p, "architecture", "amd64"),
		"exploitPlan":  []string{"leak libc", "ret2csu"},
	}
}

func osintMapper(p map[string]any) map[string]any {
	org := stringParam(p, "organization", "Example Corp")
	sources := listParam(p, "sources")
	if len(sources) == 0 {
		sources = []any{"crt.sh", "hunter.io"}
	}
	lower := strings.ToLower(org)
	first := lower
	if fields := strings.Fields(lower); len(fields) > 0 {
		first = fields[0]
	}
	return map[string]any{
		"organization": org,
		"sources":      sources,
		"profiles": []map[string]any{
			{"domain": strings.ReplaceAll(lower, " ", "") + ".com", "exposure": "high"},
			{"domain": fmt.Sprintf("vpn.%s.net", first), "exposure": "medium"},
		},
	}
}

func stringParam(p map[string]any, key, fallback string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return fallback
	default:
		return fmt.Sprint(v)
	}
}

// listParam returns p[key] as a list. JSON-decoded arrays arrive as []any;
// a scalar is treated as a one-element list.
func listParam(p map[string]any, key string) []any {
	switch v := p[key].(type) {
	case nil:
		return []any{}
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
