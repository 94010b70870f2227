package download

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrBadDataURL is returned for bridge payloads that are not base64 data URLs.
var ErrBadDataURL = errors.New("malformed data URL")

// FetchBlobScript reads an object URL inside the page that created it and
// posts the bytes back through the bridge. Called with {url, filename}.
const FetchBlobScript = `async ({url, filename}) => {
  try {
    const response = await fetch(url);
    const blob = await response.blob();
    const reader = new FileReader();
    reader.onloadend = () => window.saveBlob(reader.result, filename || '');
    reader.onerror = () => window.saveBlobError(String(reader.error));
    reader.readAsDataURL(blob);
  } catch (err) {
    window.saveBlobError(String(err));
  }
}`

// ClickHookScript intercepts clicks on anchors pointing at object URLs so the
// bytes are read in-page instead of relying on the engine's default handling.
const ClickHookScript = `(() => {
  document.addEventListener('click', (event) => {
    const anchor = event.target instanceof Element ? event.target.closest('a[href^="blob:"]') : null;
    if (!anchor) return;
    event.preventDefault();
    event.stopPropagation();
    fetch(anchor.href)
      .then((response) => response.blob())
      .then((blob) => {
        const reader = new FileReader();
        reader.onloadend = () => window.saveBlob(reader.result, anchor.getAttribute('download') || '');
        reader.onerror = () => window.saveBlobError(String(reader.error));
        reader.readAsDataURL(blob);
      })
      .catch((err) => window.saveBlobError(String(err)));
  }, true);
})();`

// DecodeDataURL decodes a base64 data URL into its media type and bytes.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrBadDataURL)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrBadDataURL)
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: payload is not base64", ErrBadDataURL)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return mediaType, data, nil
}

// blobName picks a filename for an object URL when the page supplied none:
// the last path segment of the blob's inner URL, usually a UUID.
func blobName(blobURL string) string {
	inner := strings.TrimPrefix(blobURL, "blob:")
	if u, err := url.Parse(inner); err == nil {
		if i := strings.LastIndex(u.Path, "/"); i >= 0 && i < len(u.Path)-1 {
			return u.Path[i+1:]
		}
	}
	return fallbackName
}
