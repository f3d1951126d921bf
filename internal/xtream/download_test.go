package xtream

import (
	"strings"
	"testing"
)

func testClient() *Client {
	return New(Credentials{URL: "http://panel.example:8080", Username: "user", Password: "pass"})
}

func TestDownloadURL(t *testing.T) {
	c := testClient()
	m := Movie{StreamID: 4242, Name: "Alpha", ContainerExtension: "mkv"}

	want := "http://panel.example:8080/movie/user/pass/4242.mkv"
	got := c.DownloadURL(m)
	if got != want {
		t.Fatalf("DownloadURL() = %q, want %q", got, want)
	}
	if again := c.DownloadURL(m); again != got {
		t.Errorf("DownloadURL() not deterministic: %q vs %q", again, got)
	}
}

func TestAria2Command(t *testing.T) {
	c := testClient()
	m := Movie{StreamID: 7, Name: "Alpha", ContainerExtension: "mp4"}

	want := `aria2c --continue --max-connection-per-server=4 --split=4 --show-console-readout=true --user-agent="XCIPTV" -o "Alpha.mp4" "http://panel.example:8080/movie/user/pass/7.mp4"`
	if got := c.Aria2Command(m); got != want {
		t.Fatalf("Aria2Command() =\n%s\nwant\n%s", got, want)
	}
}

func TestAria2CommandSpecialCharacters(t *testing.T) {
	c := testClient()

	tests := []struct {
		name       string
		movie      string
		wantOutput string
	}{
		{name: "spaces", movie: "The Big Movie (2023)", wantOutput: `-o "The Big Movie (2023).mkv"`},
		{name: "double quotes", movie: `Say "Hello"`, wantOutput: `-o "Say \"Hello\".mkv"`},
		{name: "dollar and backtick", movie: "Cash $$ `now`", wantOutput: "-o \"Cash \\$\\$ \\`now\\`.mkv\""},
		{name: "backslash", movie: `AC\DC Live`, wantOutput: `-o "AC\\DC Live.mkv"`},
		{name: "newline", movie: "Two\nLines", wantOutput: `-o "Two Lines.mkv"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Movie{StreamID: 9, Name: tt.movie, ContainerExtension: "mkv"}
			cmd := c.Aria2Command(m)

			if n := strings.Count(cmd, "--split=4"); n != 1 {
				t.Errorf("--split=4 appears %d times", n)
			}
			if n := strings.Count(cmd, `"XCIPTV"`); n != 1 {
				t.Errorf("user agent appears %d times", n)
			}
			if n := strings.Count(cmd, c.DownloadURL(m)); n != 1 {
				t.Errorf("download URL appears %d times", n)
			}
			if !strings.Contains(cmd, tt.wantOutput) {
				t.Errorf("command %q does not contain %q", cmd, tt.wantOutput)
			}
			if strings.Contains(cmd, "\n") {
				t.Error("command spans multiple lines")
			}
		})
	}
}

func TestDownloadURLEscapesCredentials(t *testing.T) {
	c := New(Credentials{URL: "http://panel.example", Username: "me/you", Password: "p w"})
	got := c.DownloadURL(Movie{StreamID: 1, ContainerExtension: "ts"})
	want := "http://panel.example/movie/me%2Fyou/p%20w/1.ts"
	if got != want {
		t.Fatalf("DownloadURL() = %q, want %q", got, want)
	}
}
