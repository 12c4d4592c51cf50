package storage

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// BucketNamespace prefixes every derived bucket name so pipeline buckets
// are recognizable next to whatever else lives on the MinIO instance.
const BucketNamespace = "ragflow"

const maxBucketNameLength = 63

var (
	bucketIllegalChars = regexp.MustCompile(`[^a-z0-9.\-_]`)
	bucketDashRuns     = regexp.MustCompile(`-+`)
)

// DeriveBucketName maps a PDF filename to a valid S3 bucket name. Filenames
// with no ASCII-safe content (e.g. fully Chinese titles) fall back to an
// 8-hex-character hash of the base name so the mapping stays deterministic.
func DeriveBucketName(pdfFilename string) string {
	base := strings.TrimSuffix(filepath.Base(pdfFilename), filepath.Ext(pdfFilename))

	safe := strings.ToLower(base)
	safe = bucketIllegalChars.ReplaceAllString(safe, "-")

	var name string
	if !hasBucketContent(safe) {
		sum := md5.Sum([]byte(base))
		name = fmt.Sprintf("%s-%s", BucketNamespace, hex.EncodeToString(sum[:])[:8])
	} else {
		safe = strings.Trim(safe, ".-_")
		safe = bucketDashRuns.ReplaceAllString(safe, "-")
		name = fmt.Sprintf("%s-%s", BucketNamespace, safe)
	}

	if len(name) > maxBucketNameLength {
		name = name[:maxBucketNameLength]
	}

	return name
}

func hasBucketContent(name string) bool {
	stripped := strings.NewReplacer("-", "", "_", "", ".", "").Replace(name)
	return stripped != ""
}
