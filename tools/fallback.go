package tools

import "slices"

var fallbackActions = map[string][]string{
	"nmap_scan.sim":   {"Retry with reduced intensity", "Switch to masscan for confirmation"},
	"nuclei_scan.sim": {"Validate target availability", "Run with smaller template set"},
	"sqlmap_scan.sim": {"Confirm injection point manually", "Try time-based payloads"},
}

var defaultFallbackActions = []string{"Review tool configuration", "Escalate to human analyst"}

// FallbackActions returns the recovery suggestions for toolID.
func FallbackActions(toolID string) []string {
	if actions, ok := fallbackActions[toolID]; ok {
		return slices.Clone(actions)
	}
	return slices.Clone(defaultFallbackActions)
}
