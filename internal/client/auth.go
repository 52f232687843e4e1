package client

import (
	"encoding/base64"
	"net/http"
)

// Auth applies cluster credentials to an outgoing request. The concrete
// variants are NoAuth, BasicAuth, APIKeyAuth and BearerAuth.
type Auth interface {
	Apply(req *http.Request)
	Kind() string
}

// NoAuth sends no Authorization header.
type NoAuth struct{}

func (NoAuth) Apply(*http.Request) {}
func (NoAuth) Kind() string        { return "none" }

// BasicAuth sends HTTP Basic credentials. Empty username and password send nothing.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) Apply(req *http.Request) {
	if a.Username != "" || a.Password != "" {
		req.SetBasicAuth(a.Username, a.Password)
	}
}

func (BasicAuth) Kind() string { return "basic" }

// APIKeyAuth sends "Authorization: ApiKey base64(id:key)".
type APIKeyAuth struct {
	ID  string
	Key string
}

func (a APIKeyAuth) Apply(req *http.Request) {
	if a.ID == "" || a.Key == "" {
		return
	}
	token := base64.StdEncoding.EncodeToString([]byte(a.ID + ":" + a.Key))
	req.Header.Set("Authorization", "ApiKey "+token)
}

func (APIKeyAuth) Kind() string { return "api_key" }

// BearerAuth sends "Authorization: Bearer <token>".
type BearerAuth struct {
	Token string
}

func (a BearerAuth) Apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
}

func (BearerAuth) Kind() string { return "bearer" }
