package fluffer

import (
	"context"
	"errors"

	"github.com/catb00mer/fluffer/core/static"
	"github.com/catb00mer/fluffer/pkg/qrcode"
)

type fileResponse struct {
	name string
}

// File serves name from the app's static source. The name is sanitized to
// a single path element, so traversal outside the source is impossible.
func File(name string) Response {
	return fileResponse{name: name}
}

// Render implements Response.
func (f fileResponse) Render(ctx context.Context) []byte {
	asset, err := static.FromContext(ctx).Open(ctx, f.name)
	switch {
	case err == nil:
		return Document(asset.MIME, asset.Body).Render(ctx)
	case errors.Is(err, static.ErrNotFound):
		return header(StatusNotFound, "File not found.")
	case errors.Is(err, static.ErrUnknownMIME):
		return header(StatusNotFound, "File mimetype could not be guessed.")
	default:
		return header(StatusNotFound, "File read error.")
	}
}

type qrResponse struct {
	content string
	size    int
}

// QRCode is a gemtext document showing content as a QR code in a
// preformatted block.
func QRCode(content string) Response {
	return qrResponse{content: content}
}

// QRCodePNG is content as a QR code PNG of the given size in pixels.
func QRCodePNG(content string, size int) Response {
	return qrResponse{content: content, size: max(size, 1)}
}

// Render implements Response.
func (q qrResponse) Render(ctx context.Context) []byte {
	if q.size > 0 {
		png, err := qrcode.Generate(q.content, q.size)
		if err != nil {
			return header(StatusTemporaryFailure, "QR code could not be generated.")
		}
		return Document("image/png", png).Render(ctx)
	}

	art, err := qrcode.Text(q.content)
	if err != nil {
		return header(StatusTemporaryFailure, "QR code could not be generated.")
	}
	return Text("```qr code\n" + art + "```\n").Render(ctx)
}
