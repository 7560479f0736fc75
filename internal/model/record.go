package model

// VarValue is one serialized variable captured by a probe.
type VarValue struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Record is a raw trace entry as written by the recording probes.
type Record struct {
	Kind  string     `yaml:"kind"`
	Type  string     `yaml:"type"`
	Tag   string     `yaml:"tag"`
	Depth *int       `yaml:"depth,omitempty"`
	Vars  []VarValue `yaml:"vars,omitempty"`
}

// Trace is the recorded execution of one test under one variant, split by thread.
type Trace struct {
	Test    string              `yaml:"test"`
	Variant string              `yaml:"variant"`
	Threads map[string][]Record `yaml:"threads"`
}

// Pair names the two recordings compared for one test.
type Pair struct {
	Test      string `yaml:"test"`
	Reference Path   `yaml:"reference"`
	Candidate Path   `yaml:"candidate"`
}

// Manifest lists the comparisons of a campaign.
type Manifest struct {
	Pairs []Pair `yaml:"pairs"`
}
