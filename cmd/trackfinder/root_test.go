package main

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0")

	if cmd == nil {
		t.Fatal("NewRootCmd returned nil")
	}
	if cmd.Use != "trackfinder" {
		t.Errorf("expected Use='trackfinder', got %q", cmd.Use)
	}
	if cmd.Version != "1.0.0" {
		t.Errorf("expected Version='1.0.0', got %q", cmd.Version)
	}
}

func TestRootCmdHasFlags(t *testing.T) {
	cmd := NewRootCmd("1.0.0")

	for _, name := range []string{"config", "catalog", "store-dir", "json"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag %q to exist", name)
		}
	}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := NewRootCmd("dev")

	want := map[string]bool{"serve": false, "similar": false, "search": false, "playlists": false, "stats": false}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected subcommand %q", name)
		}
	}
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "Coldplay::Yellow", want: "Coldplay/Yellow"},
		{raw: "  Muse :: Time Is Running Out ", want: "Muse/Time Is Running Out"},
		{raw: "AC/DC::Back in Black::Live", want: "AC/DC/Back in Black::Live"},
		{raw: "Coldplay", wantErr: true},
		{raw: "::Yellow", wantErr: true},
		{raw: "Coldplay::", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			key, err := parseSeed(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSeed: %v", err)
			}
			if got := key.TrackArtist + "/" + key.TrackName; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
