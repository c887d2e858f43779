package pagination

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Params is a plain limit/offset page window.
type Params struct {
	Limit  int
	Offset int
}

// Normalize clamps the window into the supported range.
func (p Params) Normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
