package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/resp"
)

// Default protocol limits.
const (
	// MaxArrayLen limits the number of elements in a request array.
	MaxArrayLen = 1024

	// MaxBulkLen limits a single bulk string, and so a stored value.
	MaxBulkLen = 512 * 1024

	// MaxInlineLen limits an inline command line.
	MaxInlineLen = 4 * 1024

	// maxHeaderLen bounds "*<n>" and "$<n>" header lines.
	maxHeaderLen = 64
)

var (
	// ErrProtocol reports malformed framing.
	ErrProtocol = errors.New("resp: protocol error")
	// ErrLimitExceeded reports a request over one of the Limits.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Limits bounds what a Reader accepts.
type Limits struct {
	MaxArrayLen  int
	MaxBulkLen   int
	MaxInlineLen int
}

// DefaultLimits returns the package default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxArrayLen:  MaxArrayLen,
		MaxBulkLen:   MaxBulkLen,
		MaxInlineLen: MaxInlineLen,
	}
}

// Reader decodes client requests.
type Reader struct {
	br     *bufio.Reader
	limits Limits
}

// NewReader returns a Reader over br. Zero limit fields take defaults.
func NewReader(br *bufio.Reader, limits Limits) *Reader {
	def := DefaultLimits()
	if limits.MaxArrayLen <= 0 {
		limits.MaxArrayLen = def.MaxArrayLen
	}
	if limits.MaxBulkLen <= 0 {
		limits.MaxBulkLen = def.MaxBulkLen
	}
	if limits.MaxInlineLen <= 0 {
		limits.MaxInlineLen = def.MaxInlineLen
	}
	return &Reader{br: br, limits: limits}
}

// ReadCommand reads one request and returns its arguments.
//
// An empty array or blank inline line yields (nil, nil). Errors wrapping
// ErrProtocol or ErrLimitExceeded leave the stream at an unknown
// position; the connection cannot be reused.
func (r *Reader) ReadCommand() ([][]byte, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return nil, err
	}
	if b[0] == '*' {
		return r.readArray()
	}
	return r.readInline()
}

func (r *Reader) readInline() ([][]byte, error) {
	line, err := r.readLine(r.limits.MaxInlineLen, false)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([][]byte, len(fields))
	for i, f := range fields {
		out[i] = []byte(f)
	}
	return out, nil
}

func (r *Reader) readArray() ([][]byte, error) {
	line, err := r.readLine(maxHeaderLen, true)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[1:]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid multibulk length", ErrProtocol)
	}
	if n <= 0 {
		return nil, nil
	}
	if n > r.limits.MaxArrayLen {
		return nil, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, r.limits.MaxArrayLen)
	}

	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		arg, err := r.readBulk()
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
	}
	return out, nil
}

// readBulk reads one array element. A null bulk ("$-1") yields nil.
func (r *Reader) readBulk() ([]byte, error) {
	line, err := r.readLine(maxHeaderLen, true)
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[0] != '$' {
		return nil, fmt.Errorf("%w: expected '$', got %q", ErrProtocol, firstByte(line))
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < -1 {
		return nil, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
	}
	if n == -1 {
		return nil, nil
	}
	if n > r.limits.MaxBulkLen {
		return nil, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, r.limits.MaxBulkLen)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return nil, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	return buf[:n], nil
}

// readLine reads a line of at most maxLen bytes and returns it without
// the terminator. Inline commands may end in a bare LF (strictCRLF false).
func (r *Reader) readLine(maxLen int, strictCRLF bool) (string, error) {
	var buf []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		buf = append(buf, frag...)
		if len(buf) > maxLen {
			return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(buf) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}

	if bytes.HasSuffix(buf, []byte("\r\n")) {
		return string(buf[:len(buf)-2]), nil
	}
	if strictCRLF {
		return "", fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return string(buf[:len(buf)-1]), nil
}

func firstByte(s string) string {
	if s == "" {
		return ""
	}
	return s[:1]
}

// isFramingError reports whether err means the stream can no longer be
// parsed, as opposed to a closed or timed out connection.
func isFramingError(err error) bool {
	return errors.Is(err, ErrProtocol) || errors.Is(err, ErrLimitExceeded)
}

// replyError writes "-<msg>". msg should start with an error prefix
// such as "ERR".
func replyError(w *resp.Writer, msg string) error {
	return w.WriteError(errors.New(msg))
}

// replyBulk writes b as a bulk string, or a null bulk when b is nil.
func replyBulk(w *resp.Writer, b []byte) error {
	if b == nil {
		return w.WriteNull()
	}
	return w.WriteBytes(b)
}

// normalizeCommandName upper-cases ASCII without allocating for
// already upper-case names.
func normalizeCommandName(b []byte) string {
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}
