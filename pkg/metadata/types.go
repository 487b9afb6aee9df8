package metadata

// Collection is the document written by the extraction tool.
type Collection struct {
	Objects []Object     `json:"objects"`
	Scripts []LinkScript `json:"scripts"`
	Compile []string     `json:"compile"`
}

// Object is a compiled translation unit, a leaf of the link graph.
type Object struct {
	AbsPath          string   `json:"abs_path"`
	Name             string   `json:"name"`
	DefinedSymbols   []Symbol `json:"defined_symbols"`
	UndefinedSymbols []Symbol `json:"undefined_symbols"`
}

// Symbol is carried through from the extractor; the scheduler ignores it.
type Symbol struct {
	Name string `json:"name"`
}

// LinkScript wraps one link target.
type LinkScript struct {
	AbsPath string `json:"abs_path"`
	Target  Target `json:"target"`
}

// Target is a link product and the identifiers it is built from. Each
// dependency names another target, a leaf object, or something external.
type Target struct {
	Name         string   `json:"name"`
	AbsPath      string   `json:"abs_path"`
	Dependencies []string `json:"dependencies"`
	TargetType   uint8    `json:"target_type"`
}
