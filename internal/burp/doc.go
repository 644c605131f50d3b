// Package burp integrates with a local Burp Suite instance.
// It verifies the intercepting proxy is reachable, launches active
// scans through Burp's REST API, and converts reported issues into
// findings. Scan traffic can be routed through the proxy so Burp's
// passive checks see everything the other scan modes request.
package burp
