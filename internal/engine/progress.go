package engine

// Progress observes a running copy. Calls happen synchronously on the copy
// loop: Start once with the resolved count, Add after every chunk, Finish
// once with the bytes actually copied (also on failure).
type Progress interface {
	Start(total int64)
	Add(n int64)
	Finish(total int64)
}

// NopProgress discards all updates. It is used when no sink is supplied.
type NopProgress struct{}

func (NopProgress) Start(int64)  {}
func (NopProgress) Add(int64)    {}
func (NopProgress) Finish(int64) {}
