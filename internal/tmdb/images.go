package tmdb

import "strings"

// Poster sizes accepted by the image CDN.
const (
	SizeSmall    = "w185"
	SizeMedium   = "w342"
	SizeLarge    = "w780"
	SizeOriginal = "original"
)

// FallbackImage is returned for movies without a poster or backdrop.
const FallbackImage = "https://via.placeholder.com/180x270?text=No+Poster"

// SrcSet holds the responsive image variants of a path.
type SrcSet struct {
	WebP   string `json:"webp"`
	JPEG   string `json:"jpeg"`
	SrcSet string `json:"srcset"`
}

// ImageURL builds {base}{size}{path}. A nil or empty path yields FallbackImage;
// an empty size means SizeMedium.
func ImageURL(base string, path *string, size string) string {
	if path == nil || *path == "" {
		return FallbackImage
	}
	if size == "" {
		size = SizeMedium
	}
	return base + size + *path
}

// ImageSrcSet builds the w342/w500/w780 variants of path, or nil when path is empty.
func ImageSrcSet(base string, path *string) *SrcSet {
	if path == nil || *path == "" {
		return nil
	}
	p := *path
	return &SrcSet{
		WebP: base + "w500" + p,
		JPEG: base + "w500" + p,
		SrcSet: strings.Join([]string{
			base + "w342" + p + " 342w",
			base + "w500" + p + " 500w",
			base + "w780" + p + " 780w",
		}, ", "),
	}
}

// ImageURL builds an image URL against the client's configured image base.
func (c *Client) ImageURL(path *string, size string) string {
	return ImageURL(c.imageBaseURL, path, size)
}

// ImageSrcSet builds responsive variants against the client's configured image base.
func (c *Client) ImageSrcSet(path *string) *SrcSet {
	return ImageSrcSet(c.imageBaseURL, path)
}
