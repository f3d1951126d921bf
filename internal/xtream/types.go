package xtream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Panels disagree on whether ids, ratings and timestamps are JSON strings or
// numbers, so those fields decode through FlexString and FlexInt.

// FlexString decodes a JSON string, number, bool or null into its string form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(strconv.FormatBool(v))
		return nil
	case '[', '{':
		return fmt.Errorf("xtream: cannot decode %s into string", data[:1])
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexInt decodes a JSON number or numeric string into an int64.
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		*n = 0
		return nil
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = FlexInt(v)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("xtream: %q is not an integer", raw)
	}
	*n = FlexInt(int64(f))
	return nil
}

// StringList decodes either a single string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []FlexString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				out = append(out, string(it))
			}
		}
		*l = out
		return nil
	}
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = StringList{string(s)}
	return nil
}

// Credentials identify one remote panel account
type Credentials struct {
	URL      string
	Username string
	Password string
}

// Category is a VOD category as returned by get_vod_categories
type Category struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     FlexInt    `json:"parent_id"`
}

// Movie is a VOD catalog item. Listing responses carry only a subset of the
// fields; detail lookups fill in the rest.
type Movie struct {
	StreamID           FlexInt    `json:"stream_id"`
	Name               string     `json:"name"`
	Title              string     `json:"title,omitempty"`
	StreamIcon         string     `json:"stream_icon,omitempty"`
	Added              FlexString `json:"added"`
	CategoryID         FlexString `json:"category_id"`
	ContainerExtension string     `json:"container_extension"`
	CustomSID          FlexString `json:"custom_sid,omitempty"`
	DirectSource       string     `json:"direct_source,omitempty"`
	Plot               string     `json:"plot,omitempty"`
	Rating             FlexString `json:"rating,omitempty"`
	ReleaseDate        string     `json:"releaseDate,omitempty"`
	Year               FlexString `json:"year,omitempty"`
	Duration           string     `json:"duration,omitempty"`
	Director           string     `json:"director,omitempty"`
	Actors             string     `json:"actors,omitempty"`
	Genre              string     `json:"genre,omitempty"`
	Cover              string     `json:"cover,omitempty"`
	Backdrop           string     `json:"backdrop,omitempty"`
}

// DisplayName prefers the listing name and falls back to the title
func (m Movie) DisplayName() string {
	if strings.TrimSpace(m.Name) != "" {
		return m.Name
	}
	return m.Title
}

// VODDetails is the "info" object of get_vod_info
type VODDetails struct {
	Name         string     `json:"name"`
	OriginalName string     `json:"o_name"`
	MovieImage   string     `json:"movie_image"`
	CoverBig     string     `json:"cover_big"`
	ReleaseDate  string     `json:"releasedate"`
	Year         FlexString `json:"year"`
	Duration     string     `json:"duration"`
	DurationSecs FlexInt    `json:"duration_secs"`
	Plot         string     `json:"plot"`
	Description  string     `json:"description"`
	Cast         string     `json:"cast"`
	Actors       string     `json:"actors"`
	Director     string     `json:"director"`
	Genre        string     `json:"genre"`
	Rating       FlexString `json:"rating"`
	BackdropPath StringList `json:"backdrop_path"`
	TMDBID       FlexString `json:"tmdb_id"`
	Trailer      string     `json:"youtube_trailer"`
}

// VODStream is the "movie_data" object of get_vod_info
type VODStream struct {
	StreamID           FlexInt    `json:"stream_id"`
	Name               string     `json:"name"`
	Added              FlexString `json:"added"`
	CategoryID         FlexString `json:"category_id"`
	ContainerExtension string     `json:"container_extension"`
	CustomSID          FlexString `json:"custom_sid"`
	DirectSource       string     `json:"direct_source"`
}

// VODInfo is the get_vod_info payload. Panels send [] instead of an object
// for unknown ids, so both halves are optional.
type VODInfo struct {
	Info      *VODDetails `json:"info,omitempty"`
	MovieData *VODStream  `json:"movie_data,omitempty"`
}

func (v *VODInfo) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.Join(bytes.Fields(data), nil), []byte("[]")) {
		*v = VODInfo{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*v = VODInfo{}
	if b, ok := raw["info"]; ok && isJSONObject(b) {
		var info VODDetails
		if err := json.Unmarshal(b, &info); err != nil {
			return fmt.Errorf("info: %w", err)
		}
		v.Info = &info
	}
	if b, ok := raw["movie_data"]; ok && isJSONObject(b) {
		var md VODStream
		if err := json.Unmarshal(b, &md); err != nil {
			return fmt.Errorf("movie_data: %w", err)
		}
		v.MovieData = &md
	}
	return nil
}

func isJSONObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// Movie flattens the detail payload into a catalog item
func (v *VODInfo) Movie() Movie {
	var m Movie
	if md := v.MovieData; md != nil {
		m.StreamID = md.StreamID
		m.Name = md.Name
		m.Added = md.Added
		m.CategoryID = md.CategoryID
		m.ContainerExtension = md.ContainerExtension
		m.CustomSID = md.CustomSID
		m.DirectSource = md.DirectSource
	}
	if in := v.Info; in != nil {
		if m.Name == "" {
			m.Name = in.Name
		}
		m.Title = in.OriginalName
		m.Plot = firstNonEmpty(in.Plot, in.Description)
		m.Rating = in.Rating
		m.ReleaseDate = in.ReleaseDate
		m.Year = in.Year
		if m.Year == "" && len(in.ReleaseDate) >= 4 {
			m.Year = FlexString(in.ReleaseDate[:4])
		}
		m.Duration = in.Duration
		m.Director = in.Director
		m.Actors = firstNonEmpty(in.Actors, in.Cast)
		m.Genre = in.Genre
		m.Cover = firstNonEmpty(in.CoverBig, in.MovieImage)
		m.StreamIcon = m.Cover
		if len(in.BackdropPath) > 0 {
			m.Backdrop = in.BackdropPath[0]
		}
	}
	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ServerInfo is the get_server_info payload, kept loose because panels vary
type ServerInfo struct {
	UserInfo   map[string]any `json:"user_info"`
	ServerInfo map[string]any `json:"server_info"`
}

// Authenticated reports whether the panel accepted the credentials
func (s *ServerInfo) Authenticated() bool {
	if s == nil || s.UserInfo == nil {
		return false
	}
	switch v := s.UserInfo["auth"].(type) {
	case float64:
		return v == 1
	case string:
		return v == "1"
	case bool:
		return v
	}
	return false
}

// Stats aggregates catalog counts for one server
type Stats struct {
	CategoriesCount int       `json:"categoriesCount"`
	MoviesCount     int       `json:"moviesCount"`
	LastUpdated     time.Time `json:"lastUpdated"`
}
