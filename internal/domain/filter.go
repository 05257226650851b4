package domain

// DefaultBlockedEvents are noisy, non-billable events that are never forwarded.
var DefaultBlockedEvents = []string{"VideoProgress", "VideoSummary"}

// BlockSet is an immutable set of event names.
type BlockSet struct {
	names map[string]struct{}
}

func NewBlockSet(names ...string) BlockSet {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return BlockSet{names: set}
}

func (b BlockSet) Blocks(name string) bool {
	_, ok := b.names[name]
	return ok
}

func (b BlockSet) Len() int {
	return len(b.names)
}

// Filter drops blocked events, keeping the order of the rest.
func Filter(events []Event, blocked BlockSet) ([]Event, int) {
	kept := make([]Event, 0, len(events))
	for _, ev := range events {
		if blocked.Blocks(ev.Name()) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept, len(events) - len(kept)
}
