package input

import "context"

// forward moves events from in to out through an unbounded FIFO buffer so
// senders on in never wait for the receiver on out. out is closed once in is
// closed and drained, or when ctx ends.
func forward(ctx context.Context, in <-chan Event, out chan<- Event) {
	defer close(out)
	var pending []Event
	for {
		if len(pending) == 0 {
			select {
			case ev, ok := <-in:
				if !ok {
					return
				}
				pending = append(pending, ev)
			case <-ctx.Done():
				return
			}
			continue
		}
		select {
		case ev, ok := <-in:
			if !ok {
				for _, rest := range pending {
					select {
					case out <- rest:
					case <-ctx.Done():
						return
					}
				}
				return
			}
			pending = append(pending, ev)
		case out <- pending[0]:
			pending[0] = Event{}
			pending = pending[1:]
		case <-ctx.Done():
			return
		}
	}
}
