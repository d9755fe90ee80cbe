package model

import (
	"errors"
	"testing"

	"github.com/romsavior/romsavior/internal/config"
)

func newTestItem() *Item {
	return NewItem("https://example.com/files/Game.zip", "ConsoleA/Game.zip", config.DefaultProfile("/tmp/romsavior-test"))
}

func TestEmitProgress_Clamps(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.45, 0.45},
		{1, 1},
		{1.5, 1},
	}

	for _, test := range tests {
		it := newTestItem()
		it.EmitProgress(test.in, "", "")
		frac, _, _ := it.Progress()
		if frac != test.expected {
			t.Errorf("EmitProgress(%v): fraction = %v, expected %v", test.in, frac, test.expected)
		}
	}
}

func TestEmitStatus_EmptyStepKeepsPrevious(t *testing.T) {
	it := newTestItem()
	it.EmitStatus(StatusRunning, "Downloading")
	it.EmitStatus(StatusDownloaded, "")

	if it.Status() != StatusDownloaded {
		t.Errorf("Status() = %s, expected Downloaded", it.Status())
	}
	if it.Step() != "Downloading" {
		t.Errorf("Step() = %q, expected previous step to be kept", it.Step())
	}
}

func TestMarkConverted_RequiresDownload(t *testing.T) {
	it := newTestItem()
	it.MarkConverted()
	if it.ConvertSucceeded() {
		t.Error("ConvertSucceeded() = true without a prior successful download")
	}

	it.MarkDownloaded()
	it.MarkConverted()
	if !it.ConvertSucceeded() {
		t.Error("ConvertSucceeded() = false after download and convert both succeeded")
	}
	if !it.DownloadSucceeded() {
		t.Error("DownloadSucceeded() = false after MarkDownloaded")
	}
}

func TestSubscribe_ReceivesAllEventKinds(t *testing.T) {
	it := newTestItem()

	var gotFraction float64
	var gotSpeed, gotETA string
	var gotStatus Status
	var gotStep string
	var gotLines []string

	it.Subscribe(Events{
		OnProgress: func(fraction float64, speed, eta string) {
			gotFraction, gotSpeed, gotETA = fraction, speed, eta
		},
		OnStatus: func(status Status, step string) {
			gotStatus, gotStep = status, step
		},
		OnLog: func(line string) {
			gotLines = append(gotLines, line)
		},
	})

	it.EmitProgress(0.37, "2.3MB/s", "12s")
	it.EmitStatus(StatusRunning, "Downloading")
	it.Log("[INFO] hello\n")

	if gotFraction != 0.37 || gotSpeed != "2.3MB/s" || gotETA != "12s" {
		t.Errorf("progress event = (%v, %q, %q)", gotFraction, gotSpeed, gotETA)
	}
	if gotStatus != StatusRunning || gotStep != "Downloading" {
		t.Errorf("status event = (%s, %q)", gotStatus, gotStep)
	}
	if len(gotLines) != 1 || gotLines[0] != "[INFO] hello" {
		t.Errorf("log event = %v, expected trailing newline stripped", gotLines)
	}
}

func TestFail_SetsErrorStatusAndMessage(t *testing.T) {
	it := newTestItem()
	it.Fail("Download failed", errors.New("connection refused"))

	if it.Status() != StatusError {
		t.Errorf("Status() = %s, expected Error", it.Status())
	}
	if it.LastError() != "connection refused" {
		t.Errorf("LastError() = %q", it.LastError())
	}
	if it.Step() != "Download failed: connection refused" {
		t.Errorf("Step() = %q", it.Step())
	}
}

func TestNewItem_UniqueIDs(t *testing.T) {
	a := newTestItem()
	b := newTestItem()
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("item IDs not unique: %q vs %q", a.ID, b.ID)
	}
}
