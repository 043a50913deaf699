package state

import "shopkeeper/internal/model"

// phase is one leg of the operation protocol. Every operation applies a
// pending event, then exactly one terminal event.
type phase int

const (
	phasePending phase = iota
	phaseFulfilled
	phaseRejected
)

// colOp tags which collection operation an event belongs to.
type colOp int

const (
	opFetchAll colOp = iota
	opFetchOne
	opCreate
	opUpdate
	opDelete
)

// colEvent is the tagged variant delivered to a Collection. The payload
// field that is meaningful is selected by op, and only on phaseFulfilled:
// list for fetch-all, entity for fetch-one/create/update, id for delete.
// reason is set only on phaseRejected.
type colEvent[E model.Entity] struct {
	op     colOp
	phase  phase
	list   []E
	entity *E
	id     int64
	reason string
}

// sessOp tags which session operation an event belongs to.
type sessOp int

const (
	opLogin sessOp = iota
	opLogout
	opRestore
)

// sessEvent is the tagged variant delivered to the Session store. An empty
// token on a fulfilled login or restore leaves the session unauthenticated.
type sessEvent struct {
	op       sessOp
	phase    phase
	token    string
	username string
	reason   string
}
