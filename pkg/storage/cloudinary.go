package storage

import (
	"fmt"
	"os"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
)

// ImageResolver maps a stored image reference to a delivery URL plus a
// responsive variant set for the catalog grid. An empty reference resolves
// to empty strings; the front end substitutes its own placeholder.
type ImageResolver interface {
	Resolve(publicID string) (src string, srcset string)
}

// Widths for the responsive variant set, matched to the grid breakpoints.
var srcsetWidths = []int{400, 768, 1024, 1536}

// gridWidth is the "main" delivery size used for the src attribute.
const gridWidth = 768

type cloudinaryResolver struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryResolver creates a Cloudinary-backed implementation of ImageResolver.
// It expects CLOUDINARY_URL or individual CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY /
// CLOUDINARY_API_SECRET to be configured in environment variables.
func NewCloudinaryResolver() (ImageResolver, error) {
	// cloudinary.New() automatically reads CLOUDINARY_URL from environment if present.
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	// Optional: allow overriding cloud name via env if needed.
	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryResolver{cld: cld}, nil
}

func (s *cloudinaryResolver) Resolve(publicID string) (string, string) {
	if s == nil || s.cld == nil || publicID == "" {
		return "", ""
	}

	src := s.urlFor(publicID, gridWidth)

	var parts []string
	for _, w := range srcsetWidths {
		if u := s.urlFor(publicID, w); u != "" {
			parts = append(parts, fmt.Sprintf("%s %dw", u, w))
		}
	}

	return src, strings.Join(parts, ", ")
}

func (s *cloudinaryResolver) urlFor(publicID string, width int) string {
	img, err := s.cld.Image(publicID)
	if err != nil {
		return ""
	}

	img.Transformation = fmt.Sprintf("c_limit,w_%d", width)

	url, err := img.String()
	if err != nil {
		return ""
	}
	return url
}

// PassthroughResolver serves deployments without a media CDN: the stored
// reference is assumed to already be a URL and no variant set is produced.
type PassthroughResolver struct{}

func (PassthroughResolver) Resolve(publicID string) (string, string) {
	return publicID, ""
}
