package courtdto

// Player mirrors the court's player identity on the wire. Kind is "human" or
// "cpu"; the CPU carries no id.
type Player struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type Materials struct {
	Black  string `json:"black"`
	White  string `json:"white"`
	Border string `json:"border,omitempty"`
}

type BoardSummary struct {
	Name       string    `json:"name"`
	World      string    `json:"world"`
	Anchor     Vec3      `json:"anchor"`
	Materials  Materials `json:"materials"`
	InPlay     bool      `json:"in_play"`
	Challenged bool      `json:"challenged"`
}
