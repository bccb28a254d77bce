package fluffer

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequest(t *testing.T) {
	t.Parallel()

	prefix := "gemini://h/"
	exact := prefix + strings.Repeat("a", MaxRequestLength-len(prefix))

	tests := []struct {
		name    string
		in      io.Reader
		want    string
		wantErr error
	}{
		{name: "simple", in: strings.NewReader("gemini://localhost/\r\n"), want: "gemini://localhost/"},
		{name: "trailing bytes ignored", in: strings.NewReader("gemini://localhost/\r\nextra"), want: "gemini://localhost/"},
		{name: "split reads", in: iotest.OneByteReader(strings.NewReader("gemini://localhost/x\r\n")), want: "gemini://localhost/x"},
		{name: "exactly max length", in: strings.NewReader(exact + "\r\n"), want: exact},
		{name: "one byte too long", in: strings.NewReader(exact + "a\r\n"), wantErr: ErrRequestTooLong},
		{name: "no crlf", in: strings.NewReader("gemini://localhost/"), wantErr: ErrMalformedRequest},
		{name: "bare lf", in: strings.NewReader("gemini://localhost/\n"), wantErr: ErrMalformedRequest},
		{name: "empty", in: strings.NewReader(""), wantErr: ErrMalformedRequest},
		{name: "invalid utf8", in: strings.NewReader("gemini://localhost/\xff\r\n"), wantErr: ErrInvalidUTF8},
		{name: "read error", in: iotest.ErrReader(errors.New("reset")), wantErr: ErrRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := readRequest(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrStream)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		wantPath string
		wantErr  error
	}{
		{name: "root", line: "gemini://localhost/", wantPath: "/"},
		{name: "empty path", line: "gemini://localhost", wantPath: "/"},
		{name: "decoded", line: "gemini://localhost/hello%20world", wantPath: "/hello world"},
		{name: "query kept out of path", line: "gemini://localhost/search?q", wantPath: "/search"},
		{name: "relative", line: "/just/a/path", wantErr: ErrURLParse},
		{name: "no host", line: "gemini:///path", wantErr: ErrURLParse},
		{name: "bad escape", line: "gemini://localhost/%zz", wantErr: ErrURLParse},
		{name: "non utf8 escape", line: "gemini://localhost/%ff", wantErr: ErrPathDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, path, err := parseRequest(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.NotNil(t, u)
		})
	}
}

func TestResponseStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, responseStatus([]byte("20 text/gemini\r\nbody")))
	assert.Equal(t, 51, responseStatus([]byte("51 Page not found.\r\n")))
	assert.Equal(t, 0, responseStatus([]byte("garbage")))
	assert.Equal(t, 0, responseStatus(nil))
}

func TestStreamKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "too_long", streamKind(ErrRequestTooLong))
	assert.Equal(t, "panic", streamKind(&PanicError{Value: "boom"}))
	assert.Equal(t, "other", streamKind(errors.New("x")))
}

func TestRetrySeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, retrySeconds(0))
	assert.Equal(t, 1, retrySeconds(300*time.Millisecond))
	assert.Equal(t, 1, retrySeconds(time.Second))
	assert.Equal(t, 2, retrySeconds(1001*time.Millisecond))
	assert.Equal(t, 30, retrySeconds(30*time.Second))
}
