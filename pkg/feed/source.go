package feed

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/wagoodman/go-progress"

	"github.com/bastionlabs/vulnsync/internal/file"
)

// Resolve turns a feed source into a local file path. Local paths are returned as-is;
// http(s) sources are downloaded into scratchDir under the retrying getter. A non-empty
// expectedDigest validates the downloaded document before it is handed to the parser.
func Resolve(src, scratchDir, expectedDigest string, monitors ...*progress.Manual) (string, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return src, nil
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid feed source %q: %w", src, err)
	}

	dst := filepath.Join(scratchDir, path.Base(u.Path))
	if err := file.NewDefaultGetter().GetFile(dst, src, monitors...); err != nil {
		return "", fmt.Errorf("unable to download feed from %q: %w", src, err)
	}

	if expectedDigest != "" {
		if err := file.ValidateDigest(afero.NewOsFs(), dst, expectedDigest); err != nil {
			return "", err
		}
	}
	return dst, nil
}
