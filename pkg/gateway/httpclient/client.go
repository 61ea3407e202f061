package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Option customises the client returned by New.
type Option func(*options)

type options struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scopes       []string
}

// WithClientCredentials adds an OAuth2 client-credentials bearer token to every
// outbound request. It is a no-op when tokenURL is empty.
func WithClientCredentials(tokenURL, clientID, clientSecret string, scopes ...string) Option {
	return func(o *options) {
		o.tokenURL = tokenURL
		o.clientID = clientID
		o.clientSecret = clientSecret
		o.scopes = scopes
	}
}

// New creates an HTTP client tuned for calls to the remote patient API.
func New(timeout time.Duration, opts ...Option) *http.Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if o.tokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     o.clientID,
			ClientSecret: o.clientSecret,
			TokenURL:     o.tokenURL,
			Scopes:       o.scopes,
		}
		// Token requests go through the same tuned transport.
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
			Timeout:   timeout,
			Transport: transport,
		})
		transport = &oauth2.Transport{
			Source: cc.TokenSource(tokenCtx),
			Base:   transport,
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
