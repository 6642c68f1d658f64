package pairing

import (
	"encoding/hex"
	"io/ioutil"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

// Exporter is the sidecar a Sink hands completed transcripts to,
// supplementing the unconditional btpincrack log line with a
// re-parseable JSON artifact.
type Exporter interface {
	Export(Transcript) error
}

// transcriptDoc is the on-disk JSON shape: seven lowercase hex strings
// plus which side sent the first IN_RAND.
type transcriptDoc struct {
	Master     string   `json:"master"`
	Slave      string   `json:"slave"`
	PinMaster  bool     `json:"pin_master"`
	Slots      []string `json:"slots"`
}

// FileExporter appends each transcript as one JSON line to filename,
// serialized the same way the teacher's gatt cache serializes its
// profile map: jsoniter marshal under a lock, then a whole-file write.
type FileExporter struct {
	filename string
	lock     sync.Mutex
}

// NewFileExporter returns an Exporter that appends to filename.
func NewFileExporter(filename string) *FileExporter {
	return &FileExporter{filename: filename}
}

// Export appends one JSON-encoded transcript line to the sidecar file.
func (e *FileExporter) Export(t Transcript) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	doc := transcriptDoc{
		Master:    macString(t.Master),
		Slave:     macString(t.Slave),
		PinMaster: t.PMIsMaster,
		Slots:     make([]string, len(t.Slots)),
	}
	for i, s := range t.Slots {
		doc.Slots[i] = hex.EncodeToString(s)
	}

	out, err := jsoniter.Marshal(doc)
	if err != nil {
		return err
	}
	out = append(out, '\n')

	existing, err := ioutil.ReadFile(e.filename)
	if err != nil {
		existing = nil
	}
	return ioutil.WriteFile(e.filename, append(existing, out...), 0644)
}
