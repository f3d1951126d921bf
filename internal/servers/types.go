package servers

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blakestevenson/vodboard/internal/xtream"
)

// Status is the last observed reachability of a server
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusUnknown:
		return true
	}
	return false
}

// Server is a stored set of panel credentials
type Server struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Username    string     `json:"username"`
	Password    string     `json:"-"`
	Active      bool       `json:"active"`
	LastChecked *time.Time `json:"lastChecked,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Credentials returns the snapshot handed to the remote client
func (s *Server) Credentials() xtream.Credentials {
	return xtream.Credentials{
		URL:      s.URL,
		Username: s.Username,
		Password: s.Password,
	}
}

// CreateServerParams holds parameters for creating a server
type CreateServerParams struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Active   *bool  `json:"active,omitempty"`
}

// UpdateServerParams holds parameters for updating a server.
// Nil fields are left unchanged.
type UpdateServerParams struct {
	Name     *string `json:"name,omitempty"`
	URL      *string `json:"url,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// Validate validates create parameters
func (p *CreateServerParams) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.URL = strings.TrimSpace(p.URL)

	if err := validateName(p.Name); err != nil {
		return err
	}
	if err := validateURL(p.URL); err != nil {
		return err
	}
	if p.Username == "" {
		return ErrUsernameRequired
	}
	if p.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// Validate validates update parameters
func (p *UpdateServerParams) Validate() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
		if err := validateName(name); err != nil {
			return err
		}
	}
	if p.URL != nil {
		u := strings.TrimSpace(*p.URL)
		p.URL = &u
		if err := validateURL(u); err != nil {
			return err
		}
	}
	if p.Username != nil && *p.Username == "" {
		return ErrUsernameRequired
	}
	if p.Password != nil && *p.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

func (p *UpdateServerParams) apply(s *Server) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.URL != nil {
		s.URL = *p.URL
	}
	if p.Username != nil {
		s.Username = *p.Username
	}
	if p.Password != nil {
		s.Password = *p.Password
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) < 2 {
		return ErrNameTooShort
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}
