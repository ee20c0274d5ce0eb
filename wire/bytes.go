package wire

import (
	"fmt"
)

// Source supplies raw bytes to a Reader. All protocol logic lives in
// Reader; a Source only decides where bytes come from.
type Source interface {
	// ReadByte returns the next byte.
	ReadByte() (byte, error)
	// ReadBytes returns the next n bytes. The slice may alias internal
	// storage and is only valid until the next call.
	ReadBytes(n int) ([]byte, error)
	// SkipBytes discards the next n bytes.
	SkipBytes(n int) error
}

// ===== FIXED BUFFER SOURCE =====

// BufferSource reads from a fixed in-memory buffer. Reading past the end is
// not an error: ReadByte returns 0 and ReadBytes returns what is left, so
// callers that need to detect truncation must check Pos against Len.
type BufferSource struct {
	buf []byte
	pos int
}

// NewBufferSource creates a source over buf starting at offset 0.
func NewBufferSource(buf []byte) *BufferSource {
	return &BufferSource{buf: buf}
}

// ReadByte implements Source.
func (s *BufferSource) ReadByte() (byte, error) {
	var b byte
	if s.pos < len(s.buf) {
		b = s.buf[s.pos]
	}
	s.pos++
	return b, nil
}

// ReadBytes implements Source.
func (s *BufferSource) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &FormatError{Type: TypeBinary, Detail: fmt.Sprintf("negative size %d", n)}
	}
	start := min(s.pos, len(s.buf))
	end := min(s.pos+n, len(s.buf))
	s.pos += n
	return s.buf[start:end], nil
}

// SkipBytes implements Source.
func (s *BufferSource) SkipBytes(n int) error {
	if n < 0 {
		return &FormatError{Type: TypeBinary, Detail: fmt.Sprintf("cannot skip %d bytes", n)}
	}
	s.pos += n
	return nil
}

// Pos returns the current read offset. It may exceed Len after reading past
// the end.
func (s *BufferSource) Pos() int {
	return s.pos
}

// Len returns the size of the underlying buffer.
func (s *BufferSource) Len() int {
	return len(s.buf)
}

// ===== POLL SOURCE =====

// MoreFunc is asked for at least min more bytes. Returning fewer makes the
// reader fail with ErrOutOfData.
type MoreFunc func(min int) []byte

// PollSource reads from a supplier that can be polled for more bytes. It
// never blocks or suspends: when the supplier comes up short the read fails
// with ErrOutOfData and the caller may start over with more input.
type PollSource struct {
	more     MoreFunc
	pending  []byte
	at       int
	consumed int
}

// NewPollSource creates a source pulling from more.
func NewPollSource(more MoreFunc) *PollSource {
	return &PollSource{more: more}
}

// NewPollSourceBytes creates a source over a fixed slice that reports
// ErrOutOfData, rather than zeros, once the slice is exhausted.
func NewPollSourceBytes(data []byte) *PollSource {
	return &PollSource{
		pending: data,
		more:    func(int) []byte { return nil },
	}
}

// Consumed returns how many bytes have been read or skipped so far.
func (s *PollSource) Consumed() int {
	return s.consumed
}

func (s *PollSource) ensure(n int) error {
	if s.at+n <= len(s.pending) {
		return nil
	}

	suffix := s.pending[s.at:]
	need := n - len(suffix)

	update := s.more(need)
	if len(update) < need {
		return ErrOutOfData
	}

	if len(suffix) > 0 {
		joined := make([]byte, len(suffix)+len(update))
		copy(joined, suffix)
		copy(joined[len(suffix):], update)
		s.pending = joined
	} else {
		s.pending = update
	}
	s.at = 0
	return nil
}

// ReadByte implements Source.
func (s *PollSource) ReadByte() (byte, error) {
	if err := s.ensure(1); err != nil {
		return 0, err
	}
	b := s.pending[s.at]
	s.at++
	s.consumed++
	return b, nil
}

// ReadBytes implements Source.
func (s *PollSource) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if n < 0 {
		return nil, &FormatError{Type: TypeBinary, Detail: fmt.Sprintf("negative size %d", n)}
	}
	if err := s.ensure(n); err != nil {
		return nil, err
	}
	out := s.pending[s.at : s.at+n]
	s.at += n
	s.consumed += n
	return out, nil
}

// SkipBytes implements Source.
func (s *PollSource) SkipBytes(n int) error {
	if n < 0 {
		return &FormatError{Type: TypeBinary, Detail: fmt.Sprintf("cannot skip %d bytes", n)}
	}
	if err := s.ensure(n); err != nil {
		return err
	}
	s.at += n
	s.consumed += n
	return nil
}
