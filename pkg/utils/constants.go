package utils

const (
	// ManifestContentType is the content type written on stored manifests.
	ManifestContentType = "text/csv"
	// DefaultDigestAlgorithm names the digest reported by GCS and S3 listings.
	DefaultDigestAlgorithm = "md5"
	// MD5Size is the byte length of an md5 digest.
	MD5Size = 16
)
