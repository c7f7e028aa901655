package renderer

// Scheduler coalesces paint requests: any number of Request calls between
// two refreshes result in a single paint of the latest index.
type Scheduler struct {
	pending bool
	index   int
}

func (s *Scheduler) Request(index int) {
	s.index = index
	s.pending = true
}

func (s *Scheduler) Pending() bool { return s.pending }

// Flush runs paint for the latest request, if any, and reports whether it did.
func (s *Scheduler) Flush(paint func(index int)) bool {
	if !s.pending {
		return false
	}
	s.pending = false
	paint(s.index)
	return true
}
