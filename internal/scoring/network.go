package scoring

import "net/netip"

// isExternalIP reports whether ip parses and is neither RFC1918/ULA private
// nor loopback. Unparseable input is treated as not external: garbage must
// not earn the external-source increment.
func isExternalIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return !addr.IsPrivate() && !addr.IsLoopback()
}

func isKnownMaliciousIP(ip string) bool {
	return knownMaliciousIPs[ip]
}

func isCriticalAsset(ip string) bool {
	return criticalAssetIPs[ip]
}

func isSuspiciousPort(port int) bool {
	return suspiciousPorts[port]
}

func isHighRiskPort(port int) bool {
	return highRiskPorts[port]
}
