package file

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-getter"
	"github.com/wagoodman/go-progress"

	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/internal/retry"
)

// Getter downloads a single remote file (a feed document) to a local path.
type Getter interface {
	// GetFile downloads the given URL into the given path. The URL must reference a
	// single file.
	GetFile(dst, src string, monitors ...*progress.Manual) error
}

type hashiGoGetter struct {
	httpGetter getter.HttpGetter
	policy     retry.Policy
}

// NewGetter creates a Getter that retries failed downloads under the given policy.
// Providing an http.Client is optional; when nil, go-getter's defaults are used.
func NewGetter(httpClient *http.Client, policy retry.Policy) Getter {
	return &hashiGoGetter{
		httpGetter: getter.HttpGetter{
			Client: httpClient,
		},
		policy: policy,
	}
}

func NewDefaultGetter() Getter {
	return NewGetter(cleanhttp.DefaultClient(), retry.DefaultPolicy())
}

// HTTPClientWithCerts builds a client trusting the given CA bundle, for feed mirrors
// behind private certificate authorities.
func HTTPClientWithCerts(fileSystem fs.FS, caCertPath string) (*http.Client, error) {
	httpClient := cleanhttp.DefaultClient()
	if caCertPath != "" {
		rootCAs := x509.NewCertPool()

		pemBytes, err := fs.ReadFile(fileSystem, caCertPath)
		if err != nil {
			return nil, fmt.Errorf("unable to configure root CAs: %w", err)
		}
		rootCAs.AppendCertsFromPEM(pemBytes)

		httpClient.Transport.(*http.Transport).TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    rootCAs,
		}
	}
	return httpClient, nil
}

func (g hashiGoGetter) GetFile(dst, src string, monitors ...*progress.Manual) error {
	if len(monitors) > 1 {
		return fmt.Errorf("multiple monitors provided, which is not allowed")
	}

	client := g.client(dst, src, monitors)

	_, err := retry.Do(g.policy,
		func() (struct{}, error) {
			log.WithFields("url", src, "to", dst).Info("downloading file")
			return struct{}{}, client.Get()
		},
		// download failures are all treated as transient; the attempt budget bounds them
		retry.RetryOnError[struct{}](func(error) bool { return true }),
	)
	return err
}

func (g hashiGoGetter) client(dst, src string, monitors []*progress.Manual) *getter.Client {
	var options []getter.ClientOption
	for _, monitor := range monitors {
		options = append(options, getter.WithProgress(&progressAdapter{monitor: monitor}))
	}

	return &getter.Client{
		Src: src,
		Dst: dst,
		Getters: map[string]getter.Getter{
			"http":  &g.httpGetter,
			"https": &g.httpGetter,
			"file":  new(getter.FileGetter),
		},
		Options: options,
	}
}

type readCloser struct {
	progress.Reader
}

func (c *readCloser) Close() error { return nil }

type progressAdapter struct {
	monitor *progress.Manual
}

func (a *progressAdapter) TrackProgress(_ string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	a.monitor.Set(currentSize)
	a.monitor.SetTotal(totalSize)
	return &readCloser{
		Reader: *progress.NewProxyReader(stream, a.monitor),
	}
}
