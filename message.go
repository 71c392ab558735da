package cellgraph

// message is the closed, tagged variant the cell handler accepts. Five
// protocol tags plus three administrative ones, each carrying a typed
// payload. No dynamic reflection is used to dispatch them, only a type
// switch in handler.go.
type message interface {
	isMessage()
}

// msgUpdateRequest asks the cell to become UpToDate.
type msgUpdateRequest struct{}

// msgParentComputed reports that handle-parent `from` produced a new value.
type msgParentComputed struct {
	from  CellID
	value any
}

// msgParentNeedsUpdate reports that handle-parent `from` lost its value.
type msgParentNeedsUpdate struct {
	from CellID
}

// msgParentError reports that handle-parent `from` entered the error state.
type msgParentError struct {
	from CellID
	err  error
}

// msgParentRecovered reports that handle-parent `from` left the error state.
type msgParentRecovered struct {
	from CellID
}

// msgSetValue is an external write, valid only on a leaf cell (no handle
// parents); set() checks that precondition synchronously before this is ever
// enqueued (E3), so the handler applies it unconditionally.
type msgSetValue struct {
	value any
}

// msgForceNeedsUpdate is the administrative reset.
type msgForceNeedsUpdate struct{}

// msgForceError injects a synthetic :self error.
type msgForceError struct {
	err error
}

func (msgUpdateRequest) isMessage()     {}
func (msgParentComputed) isMessage()    {}
func (msgParentNeedsUpdate) isMessage() {}
func (msgParentError) isMessage()       {}
func (msgParentRecovered) isMessage()   {}
func (msgSetValue) isMessage()          {}
func (msgForceNeedsUpdate) isMessage()  {}
func (msgForceError) isMessage()        {}
