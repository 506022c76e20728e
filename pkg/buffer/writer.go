package buffer

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/pgwireclient/pgwire/pkg/types"
)

// Writer provides a convenient way to build framed frontend messages.
type Writer struct {
	io.Writer
	logger   *slog.Logger
	frame    bytes.Buffer
	putbuf   [64]byte
	err      error
	lastType types.FrontendMessage
}

// NewWriter constructs a new Postgres buffered message writer for the given io.Writer.
func NewWriter(logger *slog.Logger, writer io.Writer) *Writer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		logger: logger,
		Writer: writer,
	}
}

// Start resets the buffer writer and starts a new message with the given
// message type. The message type (byte) and a reserved message length (int32)
// are written to the underlying frame buffer.
func (writer *Writer) Start(t types.FrontendMessage) {
	writer.Reset()
	writer.lastType = t
	writer.putbuf[0] = byte(t)
	writer.frame.Write(writer.putbuf[:5]) // message type + message length
}

// LastType returns the message type passed to the most recent Start call.
func (writer *Writer) LastType() types.FrontendMessage {
	return writer.lastType
}

// AddByte writes the given byte to the writer frame.
func (writer *Writer) AddByte(b byte) {
	if writer.err != nil {
		return
	}

	writer.err = writer.frame.WriteByte(b)
}

// AddInt16 writes the given int16 to the writer frame, big-endian.
func (writer *Writer) AddInt16(i int16) (size int) {
	if writer.err != nil {
		return size
	}

	x := make([]byte, 2)
	binary.BigEndian.PutUint16(x, uint16(i))
	size, writer.err = writer.frame.Write(x)
	return size
}

// AddInt32 writes the given int32 to the writer frame, big-endian.
func (writer *Writer) AddInt32(i int32) (size int) {
	if writer.err != nil {
		return size
	}

	x := make([]byte, 4)
	binary.BigEndian.PutUint32(x, uint32(i))
	size, writer.err = writer.frame.Write(x)
	return size
}

// AddBytes writes the given bytes to the writer frame verbatim.
func (writer *Writer) AddBytes(b []byte) (size int) {
	if writer.err != nil {
		return size
	}

	size, writer.err = writer.frame.Write(b)
	return size
}

// AddString writes the given string to the writer frame verbatim.
func (writer *Writer) AddString(s string) (size int) {
	if writer.err != nil {
		return size
	}

	size, writer.err = writer.frame.WriteString(s)
	return size
}

// AddNullTerminate writes a NUL terminator to the end of the data frame.
func (writer *Writer) AddNullTerminate() {
	if writer.err != nil {
		return
	}

	writer.err = writer.frame.WriteByte(0)
}

// Error returns the first error, if any, encountered while building the
// current frame.
func (writer *Writer) Error() error {
	return writer.err
}

// Bytes returns the bytes written to the active frame so far.
func (writer *Writer) Bytes() []byte {
	return writer.frame.Bytes()
}

// Reset clears the frame buffer, ready for a new message.
func (writer *Writer) Reset() {
	writer.frame.Reset()
	writer.err = nil
}

// End patches in the message length and flushes the prepared message to the
// underlying io.Writer, then resets the buffer.
func (writer *Writer) End() error {
	defer writer.Reset()
	if writer.Error() != nil {
		return writer.Error()
	}

	frame := writer.frame.Bytes()
	length := uint32(writer.frame.Len() - 1) // total length minus the message type byte
	binary.BigEndian.PutUint32(frame[1:5], length)
	_, err := writer.Write(frame)

	writer.logger.Debug("-> writing message", slog.String("type", types.FrontendMessage(frame[0]).String()))
	return err
}

// EncodeBoolean returns a string value ("on"/"off") representing the given boolean value.
func EncodeBoolean(value bool) string {
	if value {
		return "on"
	}

	return "off"
}
