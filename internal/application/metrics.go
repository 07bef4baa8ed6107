package application

import "expvar"

var placeStats = expvar.NewMap("places")

const (
	statCreated   = "created"
	statUpdated   = "updated"
	statDeleted   = "deleted"
	statTxAborted = "tx_aborted"
)
