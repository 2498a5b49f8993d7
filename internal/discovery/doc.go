// Package discovery finds and advertises scenebridge hosts with mDNS.
//
// A host started with advertising enabled registers a "_scenebridge._tcp"
// service whose TXT records carry the server version and the WebSocket
// path. Controllers browse for that service instead of being configured
// with an address.
//
// # Usage Example
//
//	// Host side
//	adv, err := discovery.Advertise("", 8765, discovery.TXTRecords(version.Get().Version, "/"))
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
//	// Controller side
//	hosts, err := discovery.ScanForHosts(3 * time.Second)
//	for _, host := range hosts {
//	    fmt.Println(host, host.URL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Hosts must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
