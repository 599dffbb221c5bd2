package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNSClass explains a transport failure from the name-resolution side.
type DNSClass string

const (
	DNSResolves    DNSClass = "RESOLVES"
	DNSNXDomain    DNSClass = "NXDOMAIN"
	DNSNoAddress   DNSClass = "NO_A_RECORD" // zone exists, no A/AAAA
	DNSUnreachable DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName DNSClass = "INVALID_NAME"
)

type DNSStatus struct {
	Host  string
	Class DNSClass
	Addrs int
	Err   string
}

var (
	dnsTimeout  = 3 * time.Second
	dnsResolver = net.DefaultResolver
)

// CheckDNS classifies why a host might be unreachable. It is diagnostic
// only: the transport verdict does not depend on it.
func CheckDNS(ctx context.Context, host string) DNSStatus {
	st := DNSStatus{Host: strings.TrimSpace(host)}
	switch {
	case net.ParseIP(st.Host) != nil:
		st.Class, st.Addrs = DNSResolves, 1
		return st
	case st.Host == "" || strings.ContainsAny(st.Host, "/: "):
		st.Class = DNSInvalidName
		return st
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()

	addrs, err := dnsResolver.LookupIPAddr(ctx, st.Host)
	if err == nil && len(addrs) > 0 {
		st.Class, st.Addrs = DNSResolves, len(addrs)
		return st
	}
	st.Class = DNSUnreachable
	var de *net.DNSError
	if err != nil {
		st.Err = err.Error()
		if errors.As(err, &de) && de.IsNotFound {
			st.Class = DNSNXDomain
		}
	}

	// NS records without addresses mean the name is delegated but has no host.
	if st.Class == DNSNXDomain {
		if ns, nsErr := dnsResolver.LookupNS(ctx, st.Host); nsErr == nil && len(ns) > 0 {
			st.Class = DNSNoAddress
		}
	}
	return st
}
