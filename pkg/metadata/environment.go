package metadata

import "time"

// Environment abstracts ambient access to the clock so metadata timestamps
// and the fetcher's cache bucket are testable with a fixed provider.
type Environment interface {
	Now() time.Time
}

// SystemEnvironment reads the real clock.
type SystemEnvironment struct{}

func (SystemEnvironment) Now() time.Time { return time.Now() }

// FixedEnvironment always reports the same instant. Test helper.
type FixedEnvironment struct {
	Instant time.Time
}

func (f FixedEnvironment) Now() time.Time { return f.Instant }
