package load

import (
	"strings"
	"testing"

	"nodepanel/pkg/model"
)

func capNode() model.Node {
	return model.Node{
		TierBandwidth:  100,
		MaxTraffic:     1000,
		MaxConnections: 50,
	}
}

func TestEncodeWeightedSum(t *testing.T) {
	// 0.8*3 + 0.1*3 + 0.2*3 = 3.3, ceiling 4.
	got := Encode(capNode(), 80, 100, 10, true)
	if got != 4 {
		t.Fatalf("Encode = %d, want 4", got)
	}
}

func TestEncodeOffline(t *testing.T) {
	if got := Encode(capNode(), 80, 100, 10, false); got != OfflineLoad {
		t.Fatalf("offline Encode = %d, want %d", got, OfflineLoad)
	}
}

func TestEncodeClamp(t *testing.T) {
	n := capNode()
	if got := Encode(n, 0, 0, 0, true); got != 2 {
		t.Fatalf("idle Encode = %d, want 2", got)
	}
	if got := Encode(n, 1000, 10000, 500, true); got != 9 {
		t.Fatalf("saturated Encode = %d, want 9", got)
	}
}

func TestEncodeZeroCapacityExcluded(t *testing.T) {
	n := capNode()
	n.MaxTraffic = 0
	// Traffic dimension drops out entirely rather than counting as full.
	got := Encode(n, 80, 999999, 10, true)
	want := Encode(capNode(), 80, 0, 10, true)
	if got != want {
		t.Fatalf("zero-capacity Encode = %d, want %d", got, want)
	}
}

func TestEncodeRange(t *testing.T) {
	n := capNode()
	for bw := 0.0; bw <= 500; bw += 37 {
		for conns := 0; conns <= 200; conns += 13 {
			got := Encode(n, bw, bw*7, conns, true)
			if got < 2 || got > 9 {
				t.Fatalf("Encode(bw=%v conns=%d) = %d out of [2,9]", bw, conns, got)
			}
		}
	}
}

func TestAppendStatus(t *testing.T) {
	s := AppendStatus("", 4)
	if s != "4" {
		t.Fatalf("AppendStatus = %q, want %q", s, "4")
	}
	s = AppendStatus(s, 7)
	if s != "47" {
		t.Fatalf("AppendStatus = %q, want %q", s, "47")
	}
}

func TestAppendStatusTruncates(t *testing.T) {
	full := strings.Repeat("5", model.RecentStatusCap)
	s := AppendStatus(full, 9)
	if len(s) != model.RecentStatusCap {
		t.Fatalf("len = %d, want %d", len(s), model.RecentStatusCap)
	}
	if s[len(s)-1] != '9' {
		t.Fatalf("last digit = %c, want 9", s[len(s)-1])
	}
	if strings.ContainsRune(s[:len(s)-1], '9') {
		t.Fatal("expected exactly one new digit at the end")
	}
}
