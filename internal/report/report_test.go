package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TransferScope/internal/model"
)

func sampleReport() *model.Report {
	t0 := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return &model.Report{
		GeneratedAt: t0.Add(time.Hour),
		Run: model.RunInfo{
			IntervalOnMillis:  5000,
			IntervalOffMillis: 10000,
			Repeats:           2,
			Folders: map[string]model.FolderStats{
				"192.168.1.20": {FilesBefore: 2, FilesAfter: 0, AvgFileBytes: 2 * 1024 * 1024},
				"192.168.1.21": {FilesBefore: 1, FilesAfter: 1, AvgFileBytes: 1024 * 1024},
			},
		},
		Transfers: []model.CorrelatedTransfer{
			{
				SignalOnTime:         t0,
				TransferStartTime:    t0.Add(2 * time.Second),
				TransferCompleteTime: t0.Add(5 * time.Second),
				Duration:             3 * time.Second,
				Latency:              2 * time.Second,
				Label:                "img_001.jpg",
				NextSignalOffTime:    t0.Add(4 * time.Second),
				CompletedAfterFalse:  true,
				OverlapAfterFalse:    time.Second,
			},
		},
		Overall: model.FlowMetrics{
			Retransmissions:   4,
			ThroughputMbps:    1.25,
			AvgRTTMillis:      18.5,
			DetectedFlowCount: 2,
			ConnOpenedAt:      t0.Add(-time.Second),
		},
		PerFlow: []model.FlowReport{
			{Address: "192.168.1.20", Metrics: model.FlowMetrics{DetectedFlowCount: 1}},
			{Address: "192.168.1.21", Metrics: model.FlowMetrics{DetectedFlowCount: 1}},
		},
		Summary: &model.SummaryStats{
			Count:      1,
			AvgLatency: 2, MinLatency: 2, MaxLatency: 2,
			AvgDuration: 3, MinDuration: 3, MaxDuration: 3,
			CompletedAfterFalseCount: 1, CompletedAfterFalsePct: 100,
			AvgOverlapAfterFalse: 1, MaxOverlapAfterFalse: 1,
		},
	}
}

func TestFlatten(t *testing.T) {
	rows := Flatten(sampleReport())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (overall + 2 flows), got %d", len(rows))
	}

	overall := rows[0]
	if overall.Address != OverallAddress {
		t.Errorf("first row must be the overall row, got %q", overall.Address)
	}
	if overall.FilesBefore != 3 || overall.FilesAfter != 1 {
		t.Errorf("unexpected overall file counts: %+v", overall)
	}
	// (2 files * 2MiB + 1 file * 1MiB) / 3 files.
	want := 5.0 / 3.0
	if diff := overall.AvgFileSizeMB - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected avg file size %.4f MB, got %.4f", want, overall.AvgFileSizeMB)
	}
	if overall.Retransmissions != 4 || overall.FlowsDetected != 2 {
		t.Errorf("overall metrics not carried over: %+v", overall)
	}

	// Per-flow rows keep the fixed column semantics with their own
	// folder stats.
	if rows[1].Address != "192.168.1.20" || rows[1].FilesBefore != 2 {
		t.Errorf("unexpected per-flow row: %+v", rows[1])
	}
	if rows[1].IntervalOnMillis != 5000 || rows[1].Repeats != 2 {
		t.Errorf("run parameters missing from per-flow row: %+v", rows[1])
	}
}

func TestRender(t *testing.T) {
	out := Render(sampleReport())

	for _, want := range []string{
		"--- Event 1 ---",
		"File: img_001.jpg",
		"Completed After OFF Signal:  YES",
		"Total Correlated Transfers: 1",
		"[Overall]",
		"[192.168.1.20]",
		"Throughput: 1.2500 Mbps",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestRender_NoTransfers(t *testing.T) {
	rep := sampleReport()
	rep.Transfers = nil
	rep.Summary = nil

	out := Render(rep)
	if !strings.Contains(out, "No transfer durations to summarize.") {
		t.Error("expected empty-summary notice")
	}
	if strings.Contains(out, "--- Event 1 ---") {
		t.Error("unexpected transfer details in empty report")
	}
}

func TestTextWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := NewTextWriter(path).Write(sampleReport()); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Transfer Analysis Report") {
		t.Error("written report missing header")
	}
}
