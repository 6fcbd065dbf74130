// Package pcap reads a capture file directly into the packet table, as a
// fallback packet source when no field-export CSV is available. Only the
// frame, address and TCP flag columns can be populated this way; the
// capture tool's analysis columns stay absent and their metrics fall back
// to zero.
package pcap

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"TransferScope/internal/engine/metrics"
)

// ReadTable reads all packets from the capture file at path into a
// packet table. Non-IPv4 and non-TCP packets contribute frame columns
// only.
func ReadTable(path string) (*metrics.Table, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer handle.Close()

	table := metrics.NewTable(
		metrics.ColFrameTime,
		metrics.ColFrameLen,
		metrics.ColSrcAddr,
		metrics.ColDstAddr,
		metrics.ColSYN,
		metrics.ColFIN,
		metrics.ColRST,
	)

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range source.Packets() {
		row := metrics.Row{
			FrameLen: float64(packet.Metadata().CaptureInfo.Length),
		}
		if meta := packet.Metadata(); meta != nil {
			row.Time = meta.Timestamp.UTC()
		}
		if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
			ip := l.(*layers.IPv4)
			row.SrcAddr = ip.SrcIP.String()
			row.DstAddr = ip.DstIP.String()
		}
		if l := packet.Layer(layers.LayerTypeTCP); l != nil {
			tcp := l.(*layers.TCP)
			row.SYN = tcp.SYN
			row.FIN = tcp.FIN
			row.RST = tcp.RST
		}
		table.Append(row)
	}
	return table, nil
}
