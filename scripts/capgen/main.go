package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/google/gopacket/layers"
	log "github.com/sirupsen/logrus"
)

var hosts = []string{
	"BP-Linux8",
	"par10s21-in-f14.1e100.net",
	"par21s05-in-f3.1e100.net",
	"190-0-175-100.gba.solunet.com.ar",
	"192.168.190.130",
	"10.0.0.7",
}

var services = []layers.TCPPort{22, 53, 80, 443}

var flags = []string{"[S]", "[S.]", "[.]", "[P.]", "[F.]"}

// endpoint renders host.port the way tcpdump does, naming well-known ports.
func endpoint(host string, port layers.TCPPort) string {
	if _, name, ok := strings.Cut(port.String(), "("); ok {
		return host + "." + strings.TrimSuffix(name, ")")
	}
	return fmt.Sprintf("%s.%d", host, port)
}

func main() {
	outputFile := flag.String("o", "capture.txt", "Output capture file path")
	frameCount := flag.Int("c", 1000, "Number of frames to generate")
	hexLines := flag.Int("x", 2, "Hex dump lines after each frame")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	log.Infof("Generating %d frames into %s...", *frameCount, *outputFile)

	clock := time.Date(0, 1, 1, 11, 42, 0, 0, time.UTC)
	for i := 0; i < *frameCount; i++ {
		clock = clock.Add(time.Duration(rand.IntN(5000)) * time.Microsecond)
		ts := clock.Format("15:04:05.000000")

		src := hosts[rand.IntN(len(hosts))]
		dst := hosts[rand.IntN(len(hosts))]
		var line string
		switch rand.IntN(10) {
		case 0:
			line = fmt.Sprintf("%s IP %s > %s: ICMP echo request, id %d, seq %d, length 64", ts, src, dst, rand.IntN(9000), i)
		case 1:
			line = fmt.Sprintf("%s IP %s > %s: ICMP echo reply, id %d, seq %d, length 64", ts, dst, src, rand.IntN(9000), i)
		default:
			srcPort := layers.TCPPort(rand.IntN(65535-1024) + 1024)
			dstPort := services[rand.IntN(len(services))]
			line = fmt.Sprintf("%s IP %s > %s: Flags %s, seq %d, win 502, length %d",
				ts, endpoint(src, srcPort), endpoint(dst, dstPort), flags[rand.IntN(len(flags))], rand.Uint32(), rand.IntN(1400))
		}
		fmt.Fprintln(w, line)

		for j := 0; j < *hexLines; j++ {
			fmt.Fprintf(w, "\t0x%04x:  %04x %04x %04x %04x %04x %04x %04x %04x\n", j*16,
				rand.IntN(0x10000), rand.IntN(0x10000), rand.IntN(0x10000), rand.IntN(0x10000),
				rand.IntN(0x10000), rand.IntN(0x10000), rand.IntN(0x10000), rand.IntN(0x10000))
		}
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to write capture: %v", err)
	}
	log.Infof("Successfully generated %d frames into %s.", *frameCount, *outputFile)
}
