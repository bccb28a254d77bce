// Package fluffer is a framework for Gemini capsules.
//
// A capsule is an App with routes. Each route maps a path pattern to a
// handler that receives a Context and returns any value; the value is
// encoded into a Gemini response by Encode.
//
//	app := fluffer.Default()
//	app.Route("/", fluffer.Static[fluffer.Stateless]("# Welcome\n=> /hello/world Say hi"))
//	app.Route("/hello/:name", func(c *fluffer.Context[fluffer.Stateless]) any {
//		return "# Hello, " + c.Parameter("name")
//	})
//	if err := app.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Responses
//
// Handlers may return:
//
//   - string: a gemtext document
//   - []byte: a response already in wire form, sent as is
//   - nil or struct{}: 40 "This route returns nothing yet."
//   - bool: true is the document "True.", false is 40 "False."
//   - integers and floats: a gemtext document holding the number
//   - error: 40 with the error message
//   - *http.Response: proxied, see Proxy
//   - any Response, including Reply, Header, Optional, Result and File
//
// Error messages are sent to the client verbatim. Define an error type
// implementing Response to choose the status and hide internals.
//
// # Identity
//
// Client certificates are requested but never verified by TLS. Context
// exposes the peer certificate so handlers decide who to trust, see
// Context.Verify and Context.Trust.
package fluffer

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// Response is a value that knows its own wire form.
type Response interface {
	Render(ctx context.Context) []byte
}

// HandlerFunc handles a request routed to it. The returned value is encoded
// with Encode.
type HandlerFunc[S any] func(c *Context[S]) any

// Stateless is the state type of apps without shared state.
type Stateless = struct{}

// Encode converts a handler result into wire bytes. A nil pointer encodes
// like nil.
func Encode(ctx context.Context, v any) []byte {
	if isNilPointer(v) {
		v = nil
	}
	switch v := v.(type) {
	case nil, struct{}:
		return header(StatusTemporaryFailure, "This route returns nothing yet.")
	case Response:
		return v.Render(ctx)
	case []byte:
		return v
	case string:
		return Text(v).Render(ctx)
	case bool:
		if v {
			return Text("True.").Render(ctx)
		}
		return header(StatusTemporaryFailure, "False.")
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Text(fmt.Sprint(v)).Render(ctx)
	case float32:
		return Text(strconv.FormatFloat(float64(v), 'g', -1, 32)).Render(ctx)
	case float64:
		return Text(strconv.FormatFloat(v, 'g', -1, 64)).Render(ctx)
	case *http.Response:
		return Proxy(v, nil).Render(ctx)
	case error:
		return header(StatusTemporaryFailure, v.Error())
	default:
		return header(StatusTemporaryFailure, "Unsupported response.")
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

var metaReplacer = strings.NewReplacer("\r", " ", "\n", " ")

// header renders a status line. Line breaks in meta become spaces so the
// line stays a single line.
func header(status int, meta string) []byte {
	b := make([]byte, 0, len(meta)+5)
	b = strconv.AppendInt(b, int64(status), 10)
	b = append(b, ' ')
	b = append(b, metaReplacer.Replace(meta)...)
	return append(b, '\r', '\n')
}
