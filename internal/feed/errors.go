package feed

import "fmt"

// FetchFailure is returned when a feed could not be downloaded: the origin
// was unreachable, timed out or answered with a non-2xx status.
type FetchFailure struct {
	URL    string
	Status int // 0 when no response was received
	Cause  error
}

func (e *FetchFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchFailure) Unwrap() error { return e.Cause }

// ParseFailure is returned when a downloaded feed is not a well-formed
// document of the expected shape.
type ParseFailure struct {
	URL   string
	Cause error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Cause)
}

func (e *ParseFailure) Unwrap() error { return e.Cause }
