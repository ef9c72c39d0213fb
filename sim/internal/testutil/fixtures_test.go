package testutil

import (
	"os"
	"testing"
)

func TestWriteFixture(t *testing.T) {
	path := WriteFixture(t, "a.yaml", "n: 3\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	if string(data) != "n: 3\n" {
		t.Errorf("fixture content = %q", data)
	}
}

func TestAssertFloat64Equal_WithinTolerance(t *testing.T) {
	AssertFloat64Equal(t, "close", 100, 100.5, 0.01)
	AssertFloat64Equal(t, "zero", 0, 0, 0)
}
