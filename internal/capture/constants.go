// Package capture implements the capture request protocol: parsing inbound
// commands, driving one capture session at a time, and delivering the image.
package capture

// Protocol constants
const (
	// Action tag that triggers a capture
	ActionCapture = "capture"

	// Header carrying the caller's upload token
	TokenHeader = "X-ScreenCapture-Token"

	// Multipart field used when a request names none
	DefaultFormField = "file"

	// Filename of the multipart part, as a browser names an unnamed blob
	BlobFilename = "blob"

	// Default content type of a string body
	TextContentType = "text/plain;charset=UTF-8"
)

// Receiver-side hints for the JSON body; written through, never inspected.
const (
	DataTypeBlob   = "blob"
	DataTypeBase64 = "base64"
)

// Payload representations a request may ask for.
const (
	PayloadBinary = "binary"
	PayloadText   = "text"
)

// BusyPolicy decides what happens to a capture command while another runs.
type BusyPolicy string

const (
	RejectWhenBusy BusyPolicy = "reject"
	QueueWhenBusy  BusyPolicy = "queue"
)
