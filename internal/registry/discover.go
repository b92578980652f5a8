package registry

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

const rawPrintPort = 9100

// DetectLocalIP returns the first non-loopback IPv4 address of the host.
func DetectLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String(), nil
		}
	}
	return "", fmt.Errorf("no local IPv4 address found")
}

// Discover scans a /24 subnet for hosts answering on the raw print port and
// returns their addr strings. subnet is the three leading octets, e.g.
// "192.168.1"; empty means derive it from the local address.
func Discover(subnet string) ([]string, error) {
	if subnet == "" {
		localIP, err := DetectLocalIP()
		if err != nil {
			return nil, err
		}
		parts := strings.Split(localIP, ".")
		subnet = strings.Join(parts[:3], ".")
	}

	ipChan := make(chan string, 256)
	foundChan := make(chan string, 256)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ip := range ipChan {
				addr := fmt.Sprintf("%s:%d", ip, rawPrintPort)
				conn, err := net.DialTimeout("tcp", addr, dialTimeout)
				if err != nil {
					continue
				}
				conn.Close()
				foundChan <- addr
			}
		}()
	}

	for i := 1; i <= 254; i++ {
		ipChan <- fmt.Sprintf("%s.%d", subnet, i)
	}
	close(ipChan)

	go func() {
		wg.Wait()
		close(foundChan)
	}()

	var found []string
	deadline := time.After(2 * time.Minute)
	for {
		select {
		case addr, ok := <-foundChan:
			if !ok {
				return found, nil
			}
			found = append(found, addr)
		case <-deadline:
			return found, fmt.Errorf("discovery timed out with %d devices found", len(found))
		}
	}
}
