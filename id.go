package accessledger

import "github.com/xraph/accessledger/id"

// ID is the correlation identifier type used for operation and audit
// records.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
