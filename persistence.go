package kardex

import (
	"github.com/kardexlabs/kardex/pkg/snapshot"
)

// Checkpoint writes the session snapshot now.
//
// Two conditions suppress the write without error: a read-only session,
// where the state on disk is already final, and a bulk operation in
// flight, where the store is mid-mutation and the operation will
// checkpoint when it completes. The acknowledgement carries the reason.
func (s *session) Checkpoint() (snapshot.Ack, error) {
	if s.store.ReadOnly() {
		return snapshot.Ack{Written: false, Reason: "read-only"}, nil
	}
	if s.bulkInFlight() {
		return snapshot.Ack{Written: false, Reason: "bulk operation in progress"}, nil
	}

	doc, err := snapshot.Save(s.config.snapshotPath, s.store)
	if err != nil {
		return snapshot.Ack{}, err
	}
	return snapshot.Ack{Written: true, SavedAt: doc.SavedAt}, nil
}
