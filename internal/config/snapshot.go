package config

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is an immutable copy of the published namespace taken at the end
// of a successful build. Restore rolls the live namespace back to it.
type Snapshot struct {
	ns          Namespace
	fingerprint uint64
}

func newSnapshot(ns Namespace) *Snapshot {
	cp := ns.Clone()
	return &Snapshot{ns: cp, fingerprint: fingerprint(cp)}
}

// Namespace returns a copy of the stored namespace.
func (s *Snapshot) Namespace() Namespace {
	return s.ns.Clone()
}

// Fingerprint identifies the snapshot's contents. Equal namespaces have
// equal fingerprints.
func (s *Snapshot) Fingerprint() uint64 {
	return s.fingerprint
}

// fingerprint hashes every name and its value in lexical name order.
func fingerprint(ns Namespace) uint64 {
	d := xxhash.New()
	for _, name := range ns.Names() {
		_, _ = d.WriteString(name)
		_, _ = d.WriteString("=")
		_, _ = fmt.Fprintf(d, "%#v", ns[name])
		_, _ = d.WriteString("\n")
	}
	return d.Sum64()
}
