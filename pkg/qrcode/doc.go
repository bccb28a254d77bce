// Package qrcode generates QR codes as PNG images or as terminal-friendly
// text art.
//
// Gemini clients render preformatted text in a monospace font, so Text
// output can be embedded directly in a gemtext page:
//
//	art, err := qrcode.Text("gemini://example.com/")
//	if err != nil {
//		return err
//	}
//	page := "```qr code\n" + art + "```\n"
//
// Generate returns PNG bytes suitable for an image/png response, and
// GenerateBase64Image wraps them in a data URI:
//
//	png, err := qrcode.Generate("gemini://example.com/", 256)
//
// All functions use Medium error correction. A non-positive size falls back
// to 256 pixels. Empty content is rejected with ErrEmptyContent.
package qrcode
