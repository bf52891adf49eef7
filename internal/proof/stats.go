package proof

// Stats summarizes the size of a derivation.
type Stats struct {
	Nodes    int `json:"nodes"`
	Steps    int `json:"steps"`
	Height   int `json:"height"`
	Branches int `json:"branches"`
}

// Stats walks the tree once.
func (p *Proof) Stats() Stats {
	st := Stats{Nodes: 1, Steps: len(p.steps)}
	if len(p.children) > 0 {
		st.Branches = 1
	}
	for _, c := range p.children {
		cs := c.Stats()
		st.Nodes += cs.Nodes
		st.Steps += cs.Steps
		st.Branches += cs.Branches
		st.Height = max(st.Height, cs.Height+1)
	}
	return st
}
