package config

import "time"

// NewCatalogForTest creates a Catalog config reading env values from lookup
func NewCatalogForTest(path string, lookup func(string) (string, bool)) *Catalog {
	return &Catalog{
		path:      path,
		lookupEnv: lookup,
	}
}

// NewSourceForTest creates a Source config for the http store
func NewSourceForTest(kind, backend, bucketURL, cdnURL string) *Source {
	return &Source{
		kind:      kind,
		backend:   backend,
		bucketURL: bucketURL,
		cdnURL:    cdnURL,
	}
}

// SetRetryForTest overrides the retry settings of a Source config
func (x *Source) SetRetryForTest(attempts int, delay time.Duration) {
	x.retryAttempts = attempts
	x.retryDelay = delay
}

// NewLoggerForTest creates a Logger config
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
