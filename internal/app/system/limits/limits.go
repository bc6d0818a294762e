// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON and upload endpoints.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxDocumentBody bounds JSON bodies that carry accounts, content or
	// events.
	MaxDocumentBody = 1 << 20 // 1 MB

	// MaxSmallBody bounds short JSON bodies such as login, messages and
	// notifications.
	MaxSmallBody = 64 << 10 // 64 KB

	// MaxPictureSize is the largest accepted profile picture.
	MaxPictureSize = 5 << 20 // 5 MB

	// MaxOfferSize is the largest accepted partnership offer file.
	MaxOfferSize = 10 << 20 // 10 MB

	// MultipartOverhead is added to upload limits for headers and form
	// fields around the file.
	MultipartOverhead = 64 << 10

	// MaxMessageLength is the longest message content accepted, in bytes.
	MaxMessageLength = 4000
)
