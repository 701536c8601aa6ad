package theme

import "testing"

func TestLoad(t *testing.T) {
	dark, err := Load("dark")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dark.Name != "dark" {
		t.Errorf("expected dark theme, got %s", dark.Name)
	}

	light, err := Load("LIGHT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if light.Name != "light" {
		t.Errorf("name lookup should be case-insensitive, got %s", light.Name)
	}
}

func TestLoadFallsBackToDark(t *testing.T) {
	got, err := Load("no-such-theme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "dark" {
		t.Errorf("expected fallback to dark, got %s", got.Name)
	}

	empty, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.Name != "dark" {
		t.Errorf("expected empty name to default to dark, got %s", empty.Name)
	}
}

func TestBlockColor(t *testing.T) {
	th, _ := Load("dark")
	if got := th.BlockColor("#123456", th.Project); string(got) != "#123456" {
		t.Errorf("record color should win, got %s", got)
	}
	if got := th.BlockColor("", th.Project); string(got) != th.Project {
		t.Errorf("fallback color expected, got %s", got)
	}
}
