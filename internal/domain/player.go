package domain

// PlayerKind tags the two closed variants of Player.
type PlayerKind string

const (
	KindHuman PlayerKind = "human"
	KindCPU   PlayerKind = "cpu"
)

// Player is either a connected human, carrying a stable identity, or the CPU
// opponent. Identities are resolved by the host before they reach this layer.
type Player struct {
	Kind PlayerKind `json:"kind"`
	ID   string     `json:"id,omitempty"`
	Name string     `json:"name,omitempty"`
}

func HumanPlayer(id, name string) Player {
	return Player{Kind: KindHuman, ID: id, Name: name}
}

func CPUPlayer() Player {
	return Player{Kind: KindCPU}
}

func (p Player) IsCPU() bool   { return p.Kind == KindCPU }
func (p Player) IsHuman() bool { return p.Kind == KindHuman }

// Is reports whether p is the human with the given identity. The CPU never
// matches an identity.
func (p Player) Is(id string) bool {
	return p.Kind == KindHuman && id != "" && p.ID == id
}

// Equal compares by kind and identity; display names do not participate.
func (p Player) Equal(o Player) bool {
	if p.Kind != o.Kind {
		return false
	}
	if p.Kind == KindCPU {
		return true
	}
	return p.ID == o.ID
}

func (p Player) DisplayName() string {
	if p.IsCPU() {
		return "CPU"
	}
	return p.Name
}
