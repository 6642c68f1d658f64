package csniff

// Option configures a Session at construction time. The device name and
// host HCI transport are supplied separately to NewSession; config-file
// and flag parsing are non-goals of this module, so Option stays small
// compared to the teacher's DeviceOption surface.
type Option func(*Session)

// WithLogger overrides the session's logger; defaults to GetLogger().
func WithLogger(l Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithIgnoreTypes seeds the fixed-capacity frontline type ignore-list.
// Entries beyond MaxIgnoreTypes are dropped; see the FrontlineFrame
// invariant on ignore-list capacity.
func WithIgnoreTypes(types ...uint8) Option {
	return func(s *Session) {
		for _, t := range types {
			s.ignore.Add(t)
		}
	}
}

// WithIgnoreZeroLength enables dropping zero-length frontline payloads.
func WithIgnoreZeroLength(ignore bool) Option {
	return func(s *Session) { s.ignoreZero = ignore }
}

// WithDumpWriter attaches an HCI-dump sink; nil (the default) means
// captures are not persisted.
func WithDumpWriter(w DumpSink) Option {
	return func(s *Session) { s.dump = w }
}

// WithPcapSink attaches an optional Wireshark-compatible sidecar sink.
func WithPcapSink(w PcapSink) Option {
	return func(s *Session) { s.pcap = w }
}

// WithTranscriptExporter attaches an optional JSON transcript exporter,
// invoked every time the pairing observer completes a transcript.
func WithTranscriptExporter(e TranscriptExporter) Option {
	return func(s *Session) { s.exporter = e }
}
