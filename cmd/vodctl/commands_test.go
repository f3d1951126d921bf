package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
)

func TestWriteServers(t *testing.T) {
	checked := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := writeServers(&buf, []*servers.Server{
		{ID: "a", Name: "Main", Status: servers.StatusOnline, Active: true, LastChecked: &checked, URL: "http://main"},
		{ID: "b", Name: "Spare", Status: servers.StatusUnknown, URL: "http://spare"},
	})
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q", buf.String())
	}
	if !strings.Contains(lines[1], "online") || !strings.Contains(lines[2], " - ") {
		t.Errorf("rows = %q", lines[1:])
	}
}

func TestWriteMovies(t *testing.T) {
	var buf bytes.Buffer
	err := writeMovies(&buf, []xtream.Movie{
		{StreamID: 7, Name: "Alpha", CategoryID: "1", Added: "1700000000", Rating: "7.5", ContainerExtension: "mkv"},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "2023-11-14") || !strings.Contains(out, "1 movies") {
		t.Errorf("output = %q", out)
	}
}
