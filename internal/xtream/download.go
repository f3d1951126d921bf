package xtream

import (
	"net/url"
	"strconv"
	"strings"
)

// Aria2UserAgent is the user agent aria2c presents to the panel. Many panels
// only serve direct downloads to known player agents.
const Aria2UserAgent = "XCIPTV"

// DownloadURL returns {url}/movie/{username}/{password}/{streamId}.{extension}.
// No network call is made.
func (c *Client) DownloadURL(m Movie) string {
	var b strings.Builder
	b.WriteString(c.creds.URL)
	b.WriteString("/movie/")
	b.WriteString(url.PathEscape(c.creds.Username))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(c.creds.Password))
	b.WriteByte('/')
	b.WriteString(strconv.FormatInt(int64(m.StreamID), 10))
	b.WriteByte('.')
	b.WriteString(m.ContainerExtension)
	return b.String()
}

// Aria2Command formats a single aria2c invocation downloading m.
// Every value sits in double quotes with shell metacharacters escaped.
func (c *Client) Aria2Command(m Movie) string {
	output := m.DisplayName() + "." + m.ContainerExtension

	var b strings.Builder
	b.WriteString("aria2c --continue --max-connection-per-server=4 --split=4 --show-console-readout=true")
	b.WriteString(" --user-agent=")
	b.WriteString(shellQuote(Aria2UserAgent))
	b.WriteString(" -o ")
	b.WriteString(shellQuote(output))
	b.WriteByte(' ')
	b.WriteString(shellQuote(c.DownloadURL(m)))
	return b.String()
}

var shellEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"$", `\$`,
	"`", "\\`",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// shellQuote wraps s in double quotes using POSIX double-quote escaping
func shellQuote(s string) string {
	return `"` + shellEscaper.Replace(s) + `"`
}
