package plugin

import "github.com/containifyci/foundry/pkg/ferr"

// kindOf/newFerr round-trip a ferr.Kind across the RPC boundary as a
// plain int, since gob doesn't need to know about ferr.Error's shape —
// only the reply's ErrKind/ErrMessage fields do.
func kindOf(err error) ferr.Kind {
	return ferr.Of(err)
}

func newFerr(kind int, message string) error {
	return ferr.New(ferr.Kind(kind), message)
}
