package storage

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrBodyTooLarge is returned when a source holds more bytes than allowed
	ErrBodyTooLarge = errors.New("image exceeds size limit")
	// ErrSourceNotFound is returned when the remote object does not exist
	ErrSourceNotFound = errors.New("image source not found")
)

// readLimited reads at most maxBytes from r and fails if more remain
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, maxBytes)
	}
	return data, nil
}

func isTooLarge(err error) bool {
	return errors.Is(err, ErrBodyTooLarge)
}
