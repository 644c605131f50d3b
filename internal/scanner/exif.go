package scanner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// EXIFScanner checks images referenced by scanned pages for EXIF
// metadata. Published images with intact EXIF can leak GPS coordinates,
// device identifiers, and author information.
//
// Only same-origin images are fetched. Third-party images are not the
// target's responsibility and fetching them wastes scan budget.
type EXIFScanner struct {
	// client fetches images, sharing the recon scanner's configuration.
	client *http.Client

	// maxImageSize limits image downloads. Default 5MB.
	maxImageSize int64
}

// exifImagePattern matches image URLs in formats that carry EXIF.
var exifImagePattern = regexp.MustCompile(`(?i)\.(jpe?g|tiff?|heic)(?:\?[^"'\s]*)?$`)

// NewEXIFScanner creates a new EXIF metadata scanner.
func NewEXIFScanner(client *http.Client) *EXIFScanner {
	return &EXIFScanner{
		client:       client,
		maxImageSize: 5 * 1024 * 1024,
	}
}

// Name returns the scan mode name.
func (s *EXIFScanner) Name() string {
	return "exif"
}

// Scan inspects images from every page cached on the report.
// Images that cannot be fetched or carry no EXIF are skipped silently.
func (s *EXIFScanner) Scan(ctx context.Context, report *model.ScanReport) error {
	targetHost := hostOf(report.TargetURL)
	processed := make(map[string]bool)

	for _, page := range report.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, imgURL := range page.Images {
			if processed[imgURL] {
				continue
			}
			processed[imgURL] = true

			if !exifImagePattern.MatchString(imgURL) {
				continue
			}
			if hostOf(imgURL) != targetHost {
				continue
			}

			s.analyzeImage(ctx, report, imgURL, page.URL)
		}
	}

	return nil
}

// analyzeImage fetches one image and records findings for EXIF tags.
func (s *EXIFScanner) analyzeImage(ctx context.Context, report *model.ScanReport, imgURL, pageURL string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.ContentLength > s.maxImageSize {
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxImageSize))
	if err != nil {
		return
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return
	}

	location := pageURL + " -> " + imgURL

	for _, entry := range entries {
		switch entry.TagName {
		case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef":
			report.AddFinding(model.NewFinding(
				"exif_gps",
				"GPS Coordinates in Image EXIF",
				"A published image contains GPS coordinates in its EXIF metadata.",
				entry.TagName+": "+entry.Formatted,
				location,
			))
		case "Make", "Model", "Software", "Artist", "Author", "Copyright", "SerialNumber":
			report.AddFinding(model.NewFinding(
				"exif_metadata",
				fmt.Sprintf("%s Information in Image EXIF", entry.TagName),
				"A published image carries identifying EXIF metadata.",
				entry.TagName+": "+entry.Formatted,
				location,
			))
		}
	}
}

// hostOf returns the hostname of a URL, or empty string on parse failure.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
