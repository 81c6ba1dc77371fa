package diag

// FakeWriter records diagnostic writes for test assertions.
type FakeWriter struct {
	// Records contains every record that was written.
	Records []Record

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeWriter creates a FakeWriter for testing.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Write records the record.
func (f *FakeWriter) Write(rec Record) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Records = append(f.Records, rec)
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded state.
func (f *FakeWriter) Reset() {
	f.Records = nil
	f.WriteError = nil
	f.Closed = false
}
