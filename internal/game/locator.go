package game

import "fmt"

// Locate resolves addr against the sequence.
func (s *Sequence) Locate(addr Address) (Ply, error) {
	idx, err := addr.Index()
	if err != nil {
		return Ply{}, err
	}
	if s.Len() == 0 {
		return Ply{}, &AddressError{Input: addr.String(), Reason: "game has no moves"}
	}
	if idx < 0 || idx >= s.Len() {
		last := AddressOf(s.Len() - 1)
		return Ply{}, &AddressError{
			Input:  addr.String(),
			Reason: fmt.Sprintf("game ends at %s", last),
		}
	}
	return s.plies[idx], nil
}

// LocateString parses a "<turn>-<Color>" position and resolves it.
func (s *Sequence) LocateString(position string) (Ply, error) {
	addr, err := ParseAddress(position)
	if err != nil {
		return Ply{}, err
	}
	return s.Locate(addr)
}

// LocateAll returns every ply in index order. The slice is a copy.
func (s *Sequence) LocateAll() []Ply {
	if s == nil {
		return nil
	}
	out := make([]Ply, len(s.plies))
	copy(out, s.plies)
	return out
}
