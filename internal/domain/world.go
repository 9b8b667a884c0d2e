package domain

// Vec3 is a block position inside a world.
type Vec3 struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// CheckerboardMaterials is the presentation config for a physical board.
// Border is optional; empty means no border is placed.
type CheckerboardMaterials struct {
	Black  string `json:"black" yaml:"black"`
	White  string `json:"white" yaml:"white"`
	Border string `json:"border,omitempty" yaml:"border,omitempty"`
}

func DefaultMaterials() CheckerboardMaterials {
	return CheckerboardMaterials{Black: "black_concrete", White: "white_concrete"}
}

// BoardDefinition is the persisted shape of a board: everything needed to
// recreate it across restarts and reloads.
type BoardDefinition struct {
	Name      string                `json:"name" yaml:"name"`
	World     string                `json:"world" yaml:"world"`
	Anchor    Vec3                  `json:"anchor" yaml:"anchor"`
	Materials CheckerboardMaterials `json:"materials" yaml:"materials"`
}

// SameIdentity reports whether two definitions describe the same physical
// board: same name in the same world at the same anchor. Materials are
// presentation only and do not participate.
func (d BoardDefinition) SameIdentity(o BoardDefinition) bool {
	return d.Name == o.Name && d.World == o.World && d.Anchor == o.Anchor
}
