// Command pcapdump is a host-side test oracle, not part of the
// kernel-resident build: it decodes a libpcap capture of frames emitted
// by the E1000 TX path during tests and prints what an independent
// decoder (gopacket) made of each layer, so a test script can diff this
// output against the hand-rolled wire package's own parse of the same
// bytes. It deliberately lives outside every package the kernel imports,
// since a full decode library is exactly the kind of dependency that
// must never end up on the driver's import path.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func main() {
	path := flag.String("pcap", "", "path to a libpcap capture file")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: pcapdump -pcap capture.pcap")
		os.Exit(2)
	}

	if err := dump(*path, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func dump(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("pcapdump: %w", err)
	}

	for i := 0; ; i++ {
		data, _, err := reader.ReadPacketData()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("pcapdump: frame %d: %w", i, err)
		}

		describeFrame(out, i, data)
	}
}

// describeFrame decodes one Ethernet frame with gopacket and prints a
// single summary line per layer it recognizes. Layers this kernel never
// emits (everything past ICMP/UDP/ARP) are decoded too, since an
// unexpected layer in a capture is itself useful diagnostic signal.
func describeFrame(out io.Writer, index int, data []byte) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	eth, ok := packet.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if !ok {
		fmt.Fprintf(out, "frame %d: not a valid ethernet frame\n", index)
		return
	}
	fmt.Fprintf(out, "frame %d: eth src=%s dst=%s type=%s\n", index, eth.SrcMAC, eth.DstMAC, eth.EthernetType)

	if arp, ok := packet.Layer(layers.LayerTypeARP).(*layers.ARP); ok {
		fmt.Fprintf(out, "  arp op=%d sha=%s spa=%s tha=%s tpa=%s\n",
			arp.Operation, formatMAC(arp.SourceHwAddress), ip4(arp.SourceProtAddress),
			formatMAC(arp.DstHwAddress), ip4(arp.DstProtAddress))
	}

	if ip4Layer, ok := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		fmt.Fprintf(out, "  ipv4 src=%s dst=%s proto=%s ttl=%d flags=%s len=%d\n",
			ip4Layer.SrcIP, ip4Layer.DstIP, ip4Layer.Protocol, ip4Layer.TTL, ip4Layer.Flags, ip4Layer.Length)
	}

	if icmp, ok := packet.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4); ok {
		fmt.Fprintf(out, "  icmp type=%d code=%d id=%d seq=%d\n",
			icmp.TypeCode.Type(), icmp.TypeCode.Code(), icmp.Id, icmp.Seq)
	}

	if udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP); ok {
		fmt.Fprintf(out, "  udp src=%d dst=%d len=%d\n", udp.SrcPort, udp.DstPort, udp.Length)
	}

	if err := packet.ErrorLayer(); err != nil {
		fmt.Fprintf(out, "  decode error: %v\n", err.Error())
	}
}

func formatMAC(b []byte) string {
	if len(b) != 6 {
		return fmt.Sprintf("%x", b)
	}
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

func ip4(b []byte) string {
	if len(b) != 4 {
		return fmt.Sprintf("%x", b)
	}
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}
