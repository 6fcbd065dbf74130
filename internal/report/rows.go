// Package report renders and persists the analysis report: a text
// rendition for humans, and fixed-schema rows for the result store.
package report

import (
	"time"

	"TransferScope/internal/model"
)

// OverallAddress labels the whole-capture row in the flattened schema.
const OverallAddress = "Overall"

// FlatRow is one fixed-schema result row: one "Overall" row per run plus
// one row per detected flow address. Column order and presence are fixed
// across all rows of a run.
type FlatRow struct {
	Timestamp         time.Time
	Address           string
	IntervalOnMillis  int
	IntervalOffMillis int
	Repeats           int
	FilesBefore       int
	FilesAfter        int
	AvgFileSizeMB     float64
	Retransmissions   int
	ZeroWindowCount   int
	WindowFullCount   int
	AvgRTTMillis      float64
	LostSegments      int
	DuplicateACKs     int
	ThroughputMbps    float64
	FlowsDetected     int
	ConnOpenedAt      time.Time
	ConnClosedAt      time.Time
	Notes             string
}

// Flatten converts a report into its fixed-schema rows: the overall row
// first, then one row per detected flow address in report order.
func Flatten(rep *model.Report) []FlatRow {
	base := FlatRow{
		Timestamp:         rep.GeneratedAt,
		IntervalOnMillis:  rep.Run.IntervalOnMillis,
		IntervalOffMillis: rep.Run.IntervalOffMillis,
		Repeats:           rep.Run.Repeats,
	}

	overall := base
	overall.Address = OverallAddress
	var totalFiles, totalAfter int
	var totalBytes float64
	for _, fs := range rep.Run.Folders {
		totalFiles += fs.FilesBefore
		totalAfter += fs.FilesAfter
		totalBytes += fs.AvgFileBytes * float64(fs.FilesBefore)
	}
	overall.FilesBefore = totalFiles
	overall.FilesAfter = totalAfter
	if totalFiles > 0 {
		overall.AvgFileSizeMB = totalBytes / float64(totalFiles) / (1024 * 1024)
	}
	fillMetrics(&overall, rep.Overall)

	rows := []FlatRow{overall}
	for _, flow := range rep.PerFlow {
		row := base
		row.Address = flow.Address
		if fs, ok := rep.Run.Folders[flow.Address]; ok {
			row.FilesBefore = fs.FilesBefore
			row.FilesAfter = fs.FilesAfter
			row.AvgFileSizeMB = fs.AvgFileBytes / (1024 * 1024)
		}
		fillMetrics(&row, flow.Metrics)
		rows = append(rows, row)
	}
	return rows
}

func fillMetrics(row *FlatRow, m model.FlowMetrics) {
	row.Retransmissions = m.Retransmissions
	row.ZeroWindowCount = m.ZeroWindowCount
	row.WindowFullCount = m.WindowFullCount
	row.AvgRTTMillis = m.AvgRTTMillis
	row.LostSegments = m.LostSegments
	row.DuplicateACKs = m.DuplicateACKs
	row.ThroughputMbps = m.ThroughputMbps
	row.FlowsDetected = m.DetectedFlowCount
	row.ConnOpenedAt = m.ConnOpenedAt
	row.ConnClosedAt = m.ConnClosedAt
}
