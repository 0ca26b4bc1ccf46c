package artisign

import (
	"errors"
	"log/slog"
	"net/http"
)

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithBasicAuth sets HTTP basic credentials for the signing service.
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) error {
		c.username = username
		c.password = password
		return nil
	}
}

// WithBearerToken sets a bearer token for the signing service.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithChecksumAlgorithm selects the digest used to compare artifacts:
// "sha256" (default), "sha512" or "blake3".
func WithChecksumAlgorithm(name string) ClientOption {
	return func(c *Client) error {
		c.algorithm = name
		return nil
	}
}

// WithEndpoint sets the signing service URL.
func WithEndpoint(url string) ClientOption {
	return func(c *Client) error {
		c.endpoint = url
		return nil
	}
}

// WithHTTPClient sets the HTTP client used to reach the signing service.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets a logger for the client. By default, logging is disabled.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithRemoteSigner replaces the HTTP signing client.
func WithRemoteSigner(signer RemoteSigner) ClientOption {
	return func(c *Client) error {
		c.signer = signer
		return nil
	}
}

// WithSkipSigning copies every input to the output directory unsigned.
func WithSkipSigning(skip bool) ClientOption {
	return func(c *Client) error {
		c.skipSigning = skip
		return nil
	}
}

// WithSuffixes sets the artifact suffixes recognized for reuse.
// Files matching none of them are always signed.
func WithSuffixes(suffixes ...Suffix) ClientOption {
	return func(c *Client) error {
		c.suffixes = append(c.suffixes, suffixes...)
		return nil
	}
}

// WithUserAgent sets a custom User-Agent header for signing requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}
